package job

import (
	"context"
	"errors"
	"strings"

	"github.com/kishorebabuysk/VF-Backend/internal/validation"
)

const MaxPageSize = 100

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrInvalidInput = validation.ErrInvalidInput
)

type Service interface {
	CreateJob(ctx context.Context, req CreateRequest) (*Job, error)
	UpdateJob(ctx context.Context, id int, req UpdateRequest) (*Job, error)
	GetJob(ctx context.Context, id int) (*Job, error)
	GetPublicJob(ctx context.Context, id int) (*Job, error)
	ListJobs(ctx context.Context, skip, limit int) ([]Job, error)
	SearchJobs(ctx context.Context, q string, page, limit int) (*Page, error)
	DeleteJob(ctx context.Context, id int) error
	DeleteJobs(ctx context.Context, ids []int) (int, error)
	DeleteAllJobs(ctx context.Context) (int, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) CreateJob(ctx context.Context, req CreateRequest) (*Job, error) {
	job := req.ToJob()
	if err := checkRanges(job); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, job)
}

func (s *service) UpdateJob(ctx context.Context, id int, req UpdateRequest) (*Job, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := req.Apply(job)
	if len(columns) == 0 {
		return job, nil
	}
	if err := checkRanges(job); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, job, columns...); err != nil {
		return nil, err
	}
	return job, nil
}

func checkRanges(job *Job) error {
	if job.ExperienceMax < job.ExperienceMin {
		return validation.Invalid("experience_max", "must be greater than or equal to experience_min")
	}
	if job.SalaryMax < job.SalaryMin {
		return validation.Invalid("salary_max", "must be greater than or equal to salary_min")
	}
	return nil
}

func (s *service) GetJob(ctx context.Context, id int) (*Job, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetPublicJob(ctx context.Context, id int) (*Job, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetActiveByID(ctx, id)
}

func (s *service) ListJobs(ctx context.Context, skip, limit int) ([]Job, error) {
	if skip < 0 {
		return nil, validation.Invalid("skip", "must be greater than or equal to 0")
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, validation.Invalid("limit", "must be between 1 and 100")
	}
	return s.repo.List(ctx, skip, limit)
}

func (s *service) SearchJobs(ctx context.Context, q string, page, limit int) (*Page, error) {
	if page < 1 {
		return nil, validation.Invalid("page", "must be at least 1")
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, validation.Invalid("limit", "must be between 1 and 100")
	}

	jobs, total, err := s.repo.SearchActive(ctx, strings.TrimSpace(q), (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &Page{Total: total, Page: page, Limit: limit, Data: jobs}, nil
}

func (s *service) DeleteJob(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) DeleteJobs(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, validation.Invalid("ids", "is required")
	}
	deleted, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, ErrJobNotFound
	}
	return deleted, nil
}

func (s *service) DeleteAllJobs(ctx context.Context) (int, error) {
	return s.repo.DeleteAll(ctx)
}
