package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"

	"github.com/kishorebabuysk/VF-Backend/internal/events"
	"github.com/kishorebabuysk/VF-Backend/internal/storage"
	"github.com/kishorebabuysk/VF-Backend/internal/validation"
)

var (
	ErrOnboardingNotFound = errors.New("onboarding not found")
	ErrOnboardingExists   = errors.New("onboarding already submitted for this email or aadhar number")
	ErrExperienceRequired = errors.New("experience details are required for experienced candidates")
	ErrDocumentMismatch   = errors.New("number of document_types must match number of files")
	ErrInvalidInput       = validation.ErrInvalidInput
)

// FileStore persists uploaded onboarding documents.
type FileStore interface {
	Save(feature string, fh *multipart.FileHeader) (string, error)
	RemoveAll(ctx context.Context, refs ...string) int
}

type Service interface {
	Create(ctx context.Context, req Request) (*Onboarding, error)
	Update(ctx context.Context, id int, req Request) (*Onboarding, error)
	Get(ctx context.Context, id int) (*Onboarding, error)
	List(ctx context.Context) ([]Onboarding, error)
	Delete(ctx context.Context, id int) error
	DeleteMany(ctx context.Context, ids []int) (int, error)
	UploadDocuments(ctx context.Context, id int, docTypes []string, files []*multipart.FileHeader) ([]Document, error)
	Documents(ctx context.Context, id int) (*DocumentsResponse, error)
}

type service struct {
	repo      Repository
	files     FileStore
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, files FileStore, publisher events.Publisher, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		files:     files,
		publisher: publisher,
		logger:    logger,
	}
}

func checkExperience(req Request) error {
	if IsExperienced(req.ExperienceType) && req.ExperienceDetails == nil {
		return ErrExperienceRequired
	}
	return nil
}

// checkDocuments only accepts references under uploads/onboarding/.
func checkDocuments(req Request) error {
	for i, d := range req.Documents {
		if !storage.Owns(storage.FeatureOnboarding, d.FilePath) {
			return validation.Invalid(fmt.Sprintf("documents[%d].file_path", i), "must reference an onboarding upload")
		}
	}
	return nil
}

// Create writes the whole composite in one transaction. Email and national id
// must both be unused.
func (s *service) Create(ctx context.Context, req Request) (*Onboarding, error) {
	if err := checkDocuments(req); err != nil {
		return nil, err
	}
	if err := checkExperience(req); err != nil {
		return nil, err
	}

	o := req.toOnboarding()
	taken, err := s.repo.IdentityTaken(ctx, o.Email, o.AadharNumber, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check identity: %w", err)
	}
	if taken {
		return nil, ErrOnboardingExists
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	o.ensureChildren()

	events.Notify(ctx, s.publisher, s.logger, events.OnboardingSubmitted, fmt.Sprint(o.ID), SubmittedEvent{
		OnboardingID: o.ID,
		Email:        o.Email,
		AppliedRole:  o.AppliedRole,
	})
	return o, nil
}

// Update replaces personal fields and every section; documents are kept.
func (s *service) Update(ctx context.Context, id int, req Request) (*Onboarding, error) {
	if err := checkExperience(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.applyPersonal(existing)
	req.applySections(existing)

	taken, err := s.repo.IdentityTaken(ctx, existing.Email, existing.AadharNumber, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check identity: %w", err)
	}
	if taken {
		return nil, ErrOnboardingExists
	}

	if err := s.repo.Replace(ctx, existing); err != nil {
		return nil, err
	}
	existing.ensureChildren()
	return existing, nil
}

func (s *service) Get(ctx context.Context, id int) (*Onboarding, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.ensureChildren()
	return o, nil
}

func (s *service) List(ctx context.Context) ([]Onboarding, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].ensureChildren()
	}
	if list == nil {
		list = []Onboarding{}
	}
	return list, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	deleted, err := s.deleteWithFiles(ctx, []int{id})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrOnboardingNotFound
	}
	return nil
}

// DeleteMany fails with not found only when none of the ids exist.
func (s *service) DeleteMany(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, validation.Invalid("onboarding_ids", "at least one id is required")
	}
	deleted, err := s.deleteWithFiles(ctx, ids)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, ErrOnboardingNotFound
	}
	return deleted, nil
}

func (s *service) deleteWithFiles(ctx context.Context, ids []int) (int, error) {
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(found) == 0 {
		return 0, nil
	}

	existing := make([]int, 0, len(found))
	for _, o := range found {
		for _, doc := range o.Documents {
			if !storage.Owns(storage.FeatureOnboarding, doc.FilePath) {
				s.logger.WarnContext(ctx, "skipping document outside onboarding uploads", "onboarding_id", o.ID, "path", doc.FilePath)
				continue
			}
			s.files.RemoveAll(ctx, doc.FilePath)
		}
		existing = append(existing, o.ID)
	}
	return s.repo.DeleteMany(ctx, existing)
}

// UploadDocuments saves files[i] labelled types[i]. Nothing is persisted when
// the lists differ in length; saved files are removed if the insert fails.
func (s *service) UploadDocuments(ctx context.Context, id int, docTypes []string, files []*multipart.FileHeader) ([]Document, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrOnboardingNotFound
	}
	if len(files) == 0 {
		return []Document{}, nil
	}
	if len(docTypes) != len(files) {
		return nil, fmt.Errorf("%w: got %d document_types and %d files", ErrDocumentMismatch, len(docTypes), len(files))
	}

	docs := make([]Document, 0, len(files))
	saved := make([]string, 0, len(files))
	for i, fh := range files {
		if fh.Filename == "" {
			continue
		}
		ref, err := s.files.Save(storage.FeatureOnboarding, fh)
		if err != nil {
			s.files.RemoveAll(ctx, saved...)
			return nil, fmt.Errorf("failed to save %s: %w", fh.Filename, err)
		}
		saved = append(saved, ref)

		name := storage.BaseName(fh.Filename)
		docs = append(docs, Document{
			OnboardingID: id,
			DocumentType: docTypes[i],
			FilePath:     ref,
			FileName:     &name,
		})
	}

	if err := s.repo.AddDocuments(ctx, docs); err != nil {
		removed := s.files.RemoveAll(ctx, saved...)
		s.logger.WarnContext(ctx, "document insert failed, uploads discarded", "onboarding_id", id, "removed", removed, "error", err)
		return nil, err
	}
	return docs, nil
}

func (s *service) Documents(ctx context.Context, id int) (*DocumentsResponse, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrOnboardingNotFound
	}

	docs, err := s.repo.ListDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []Document{}
	}
	return &DocumentsResponse{OnboardingID: id, Count: len(docs), Documents: docs}, nil
}
