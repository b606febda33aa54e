package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/kishorebabuysk/VF-Backend/internal/events"
	"github.com/kishorebabuysk/VF-Backend/internal/storage"
	"github.com/kishorebabuysk/VF-Backend/internal/validation"
)

const MaxPageSize = 100

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrJobNotFound         = errors.New("job not found")
	ErrExperienceRequired  = errors.New("experience required for experienced candidate")
	ErrInvalidInput        = validation.ErrInvalidInput
)

// JobChecker answers whether a job posting exists.
type JobChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// FileStore persists intake documents.
type FileStore interface {
	Save(feature string, fh *multipart.FileHeader) (string, error)
	RemoveAll(ctx context.Context, refs ...string) int
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest, uploads Uploads) (*Application, error)
	List(ctx context.Context, filter Filter) (*ListResult, error)
	ListAll(ctx context.Context, skip, limit int) ([]Application, error)
	Get(ctx context.Context, id int) (*Application, error)
	UpdateStatus(ctx context.Context, id int, status string) (*StatusChange, error)
	Delete(ctx context.Context, id int) error
	DeleteMany(ctx context.Context, ids []int) (int, error)
}

type service struct {
	repo      Repository
	jobs      JobChecker
	files     FileStore
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, jobs JobChecker, files FileStore, publisher events.Publisher, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		jobs:      jobs,
		files:     files,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit runs the intake: rules first, then the job lookup, then files, then
// one transaction. Saved files are removed again when the transaction fails.
func (s *service) Submit(ctx context.Context, req SubmitRequest, uploads Uploads) (*Application, error) {
	app, err := buildApplication(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.jobs.Exists(ctx, req.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to check job: %w", err)
	}
	if !exists {
		return nil, ErrJobNotFound
	}

	saved, err := s.saveUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}
	app.PanCardFile, app.ResumeFile, app.PhotoFile = saved[0], saved[1], saved[2]

	if err := s.repo.Create(ctx, app); err != nil {
		removed := s.files.RemoveAll(ctx, saved...)
		s.logger.WarnContext(ctx, "application insert failed, uploads discarded", "removed", removed, "error", err)
		return nil, err
	}
	app.ensureChildren()

	events.Notify(ctx, s.publisher, s.logger, events.ApplicationSubmitted, fmt.Sprint(app.ID), SubmittedEvent{
		ApplicationID:   app.ID,
		JobID:           app.JobID,
		Email:           app.Email,
		FullName:        app.FullName,
		ExperienceLevel: app.ExperienceLevel,
	})
	return app, nil
}

// buildApplication applies the dedup and experience rules to a validated request.
func buildApplication(req SubmitRequest) (*Application, error) {
	if len(req.Educations) == 0 {
		return nil, validation.Invalid("educations", "at least one education required")
	}
	educations := DedupEducations(req.Educations)
	experiences := DedupExperiences(req.Experience)
	if IsExperienced(req.ExperienceLevel) && len(experiences) == 0 {
		return nil, ErrExperienceRequired
	}

	salary := 0
	if req.ExpectedSalary != nil {
		salary = *req.ExpectedSalary
	}
	return &Application{
		JobID:             req.JobID,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		FullName:          strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName),
		Phone:             req.Phone,
		Email:             req.Email,
		DateOfBirth:       req.DateOfBirth,
		Gender:            req.Gender,
		Location:          req.Location,
		PanNumber:         req.PanNumber,
		LinkedinURL:       req.LinkedinURL,
		PositionApplied:   req.PositionApplied,
		PreferredWorkMode: req.PreferredWorkMode,
		KeySkills:         req.KeySkills,
		ExpectedSalary:    salary,
		WhyHireMe:         req.WhyHireMe,
		ExperienceLevel:   req.ExperienceLevel,
		Status:            StatusPending,
		Educations:        educations,
		Experiences:       experiences,
	}, nil
}

func (s *service) saveUploads(ctx context.Context, uploads Uploads) ([]string, error) {
	headers := []*multipart.FileHeader{uploads.PanCard, uploads.Resume, uploads.Photo}
	saved := make([]string, 0, len(headers))
	for _, fh := range headers {
		if fh == nil {
			s.files.RemoveAll(ctx, saved...)
			return nil, validation.Invalid("files", "pan_card, resume and photo are required")
		}
		ref, err := s.files.Save(storage.FeatureApplications, fh)
		if err != nil {
			s.files.RemoveAll(ctx, saved...)
			return nil, fmt.Errorf("failed to save upload: %w", err)
		}
		saved = append(saved, ref)
	}
	return saved, nil
}

func (s *service) List(ctx context.Context, filter Filter) (*ListResult, error) {
	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx, filter.JobID)
	if err != nil {
		return nil, err
	}

	for i := range apps {
		apps[i].ensureChildren()
	}
	if apps == nil {
		apps = []Application{}
	}

	return &ListResult{
		Applications: apps,
		Stats: Stats{
			Total:       len(apps),
			Pending:     counts[StatusPending],
			Shortlisted: counts[StatusShortlisted],
			Maybe:       counts[StatusMaybe],
			Rejected:    counts[StatusRejected],
			ByStatus:    counts,
		},
	}, nil
}

func (s *service) ListAll(ctx context.Context, skip, limit int) ([]Application, error) {
	if skip < 0 {
		return nil, validation.Invalid("skip", "must be greater than or equal to 0")
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, validation.Invalid("limit", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	}

	apps, err := s.repo.ListAll(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	for i := range apps {
		apps[i].ensureChildren()
	}
	if apps == nil {
		apps = []Application{}
	}
	return apps, nil
}

func (s *service) Get(ctx context.Context, id int) (*Application, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	app.ensureChildren()
	return app, nil
}

// UpdateStatus overwrites the status unconditionally; any transition is allowed.
func (s *service) UpdateStatus(ctx context.Context, id int, status string) (*StatusChange, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, validation.Invalid("status", "is required")
	}

	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	events.Notify(ctx, s.publisher, s.logger, events.ApplicationStatusChanged, fmt.Sprint(id), StatusChangedEvent{
		ApplicationID: id,
		OldStatus:     app.Status,
		NewStatus:     status,
	})

	return &StatusChange{
		ID:        id,
		OldStatus: app.Status,
		NewStatus: status,
		Message:   "Status updated successfully",
	}, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.files.RemoveAll(ctx, app.Files()...)
	deleted, err := s.repo.DeleteMany(ctx, []int{id})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// DeleteMany skips unknown ids and returns how many applications were removed.
func (s *service) DeleteMany(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, validation.Invalid("application_ids", "at least one id is required")
	}

	apps, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(apps) == 0 {
		return 0, nil
	}

	found := make([]int, 0, len(apps))
	for _, app := range apps {
		s.files.RemoveAll(ctx, app.Files()...)
		found = append(found, app.ID)
	}
	return s.repo.DeleteMany(ctx, found)
}
