package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Root is the top level directory every stored file lives under. Stored
// references are relative paths such as "uploads/csr/<name>.png".
const Root = "uploads"

const (
	FeatureCSR          = "csr"
	FeatureApplications = "job_applications"
	FeatureOnboarding   = "onboarding"
)

var (
	ErrNotImage    = errors.New("file is not an image")
	ErrOutsideRoot = errors.New("path is outside the upload root")
)

type Store struct {
	fs     afero.Fs
	logger *slog.Logger
}

func New(fs afero.Fs, logger *slog.Logger) *Store {
	return &Store{fs: fs, logger: logger}
}

// NewOS roots the store at baseDir on the local filesystem.
func NewOS(baseDir string, logger *slog.Logger) (*Store, error) {
	base := afero.NewBasePathFs(afero.NewOsFs(), baseDir)
	if err := base.MkdirAll(Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	logger.Info("upload storage initialized", "base_dir", baseDir)
	return New(base, logger), nil
}

// Save writes the uploaded file as uploads/<feature>/<uuid>_<basename>.
func (s *Store) Save(feature string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	name := uuid.NewString() + "_" + BaseName(fh.Filename)
	return s.write(feature, name, src)
}

// SaveImage accepts the file only when its content sniffs as image/* and
// stores it as uploads/<feature>/<uuid-hex><ext>.
func (s *Store) SaveImage(feature string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to sniff %q: %w", fh.Filename, err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, fh.Filename)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind %q: %w", fh.Filename, err)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + mtype.Extension()
	return s.write(feature, name, src)
}

func (s *Store) write(feature, name string, src io.Reader) (string, error) {
	rel := path.Join(Root, feature, name)
	if err := afero.WriteReader(s.fs, rel, src); err != nil {
		_ = s.fs.Remove(rel)
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return rel, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Store) Remove(ref string) error {
	rel, err := clean(ref)
	if err != nil {
		return err
	}
	err = s.fs.Remove(rel)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveAll removes every non-empty reference, logging failures and moving
// on. It returns how many files were actually removed.
func (s *Store) RemoveAll(ctx context.Context, refs ...string) int {
	removed := 0
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		existed := s.Exists(ref)
		if err := s.Remove(ref); err != nil {
			s.logger.WarnContext(ctx, "failed to remove stored file", "path", ref, "error", err)
			continue
		}
		if existed {
			removed++
		}
	}
	return removed
}

func (s *Store) Exists(ref string) bool {
	rel, err := clean(ref)
	if err != nil {
		return false
	}
	ok, err := afero.Exists(s.fs, rel)
	return err == nil && ok
}

// FileSystem exposes the upload root for the /uploads static mount.
func (s *Store) FileSystem() http.FileSystem {
	return afero.NewHttpFs(afero.NewBasePathFs(s.fs, Root))
}

func clean(ref string) (string, error) {
	rel := path.Clean(strings.TrimPrefix(strings.ReplaceAll(ref, "\\", "/"), "/"))
	if !strings.HasPrefix(rel, Root+"/") || slices.Contains(strings.Split(rel, "/"), "..") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, ref)
	}
	return rel, nil
}

// Owns reports whether ref is a stored file under uploads/<feature>/.
func Owns(feature, ref string) bool {
	rel, err := clean(ref)
	if err != nil {
		return false
	}
	return strings.HasPrefix(rel, Root+"/"+feature+"/")
}

// BaseName strips directories from a client supplied file name.
func BaseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
