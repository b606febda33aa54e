package csr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/kishorebabuysk/VF-Backend/internal/storage"
	"github.com/kishorebabuysk/VF-Backend/internal/validation"
)

var (
	ErrSectionNotFound = errors.New("activity not found")
	ErrNoneOnDate      = errors.New("no activities found for this date")
	ErrInvalidInput    = validation.ErrInvalidInput
)

// ImageStore saves sniffed images and removes files referenced by deleted rows.
type ImageStore interface {
	SaveImage(feature string, fh *multipart.FileHeader) (string, error)
	RemoveAll(ctx context.Context, refs ...string) int
}

type Service interface {
	UploadImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
	CreateSections(ctx context.Context, req CreateRequest) ([]Section, error)
	List(ctx context.Context) ([]Section, error)
	Get(ctx context.Context, id int) (*Section, error)
	ByDate(ctx context.Context, day string) ([]Section, error)
	Update(ctx context.Context, id int, req UpdateRequest) (*Section, error)
	Delete(ctx context.Context, id int) error
	DeleteByDate(ctx context.Context, day string) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

type service struct {
	repo   Repository
	images ImageStore
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, images ImageStore, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		images: images,
		logger: logger,
		now:    time.Now,
	}
}

// UploadImages stores every file or none: a non-image aborts the batch and
// removes what was already written.
func (s *service) UploadImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, validation.Invalid("files", "no files uploaded")
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := s.images.SaveImage(storage.FeatureCSR, fh)
		if err != nil {
			s.images.RemoveAll(ctx, paths...)
			if errors.Is(err, storage.ErrNotImage) {
				return nil, validation.Invalid("files", fmt.Sprintf("%s is not an image", fh.Filename))
			}
			return nil, err
		}
		paths = append(paths, ref)
	}
	return paths, nil
}

// CreateSections inserts every section with one shared posted_at.
func (s *service) CreateSections(ctx context.Context, req CreateRequest) ([]Section, error) {
	postedAt := s.now().UTC().Truncate(time.Microsecond)
	sections := make([]Section, 0, len(req.Sections))
	for _, in := range req.Sections {
		sections = append(sections, Section{
			PostedAt: postedAt,
			Title:    strings.TrimSpace(in.Title),
			Image1:   in.Image1,
			Image2:   in.Image2,
			Image3:   in.Image3,
			Image4:   in.Image4,
			IsActive: true,
		})
	}

	if err := s.repo.CreateMany(ctx, sections); err != nil {
		return nil, err
	}
	return sections, nil
}

func (s *service) List(ctx context.Context) ([]Section, error) {
	sections, err := s.repo.List(ctx)
	if sections == nil && err == nil {
		sections = []Section{}
	}
	return sections, err
}

func (s *service) Get(ctx context.Context, id int) (*Section, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ByDate(ctx context.Context, day string) ([]Section, error) {
	from, to, err := ParseDay(day)
	if err != nil {
		return nil, err
	}
	sections, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, ErrNoneOnDate
	}
	return sections, nil
}

func (s *service) Update(ctx context.Context, id int, req UpdateRequest) (*Section, error) {
	section, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, section, req.Apply(section)...); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	section, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	s.images.RemoveAll(ctx, section.Images()...)
	return nil
}

func (s *service) DeleteByDate(ctx context.Context, day string) (int, error) {
	from, to, err := ParseDay(day)
	if err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if len(deleted) == 0 {
		return 0, ErrNoneOnDate
	}
	s.removeImages(ctx, deleted)
	return len(deleted), nil
}

func (s *service) DeleteAll(ctx context.Context) (int, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.removeImages(ctx, deleted)
	return len(deleted), nil
}

func (s *service) removeImages(ctx context.Context, sections []Section) {
	for i := range sections {
		s.images.RemoveAll(ctx, sections[i].Images()...)
	}
}
