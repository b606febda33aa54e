package job

import (
	"context"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	GetByID(ctx context.Context, id int) (*Job, error)
	GetActiveByID(ctx context.Context, id int) (*Job, error)
	Exists(ctx context.Context, id int) (bool, error)
	List(ctx context.Context, offset, limit int) ([]Job, error)
	SearchActive(ctx context.Context, q string, offset, limit int) ([]Job, int, error)
	Update(ctx context.Context, job *Job, columns ...string) error
	Delete(ctx context.Context, id int) error
	DeleteMany(ctx context.Context, ids []int) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, job *Job) (*Job, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(job).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "jobs", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Job, error) {
	return r.getOne(ctx, r.db.NewSelect().Where("id = ?", id))
}

func (r *repository) GetActiveByID(ctx context.Context, id int) (*Job, error) {
	return r.getOne(ctx, r.db.NewSelect().Where("id = ?", id).Where("is_active = TRUE"))
}

func (r *repository) getOne(ctx context.Context, q *bun.SelectQuery) (*Job, error) {
	start := time.Now()
	job := new(Job)
	err := q.Model(job).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "jobs", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

func (r *repository) Exists(ctx context.Context, id int) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().Model((*Job)(nil)).Where("id = ?", id).Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "jobs", time.Since(start), err)

	return exists, err
}

func (r *repository) List(ctx context.Context, offset, limit int) ([]Job, error) {
	start := time.Now()
	jobs := []Job{}
	err := r.db.NewSelect().
		Model(&jobs).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "jobs", time.Since(start), err)

	return jobs, err
}

// SearchActive matches q against title or department, case-insensitively.
func (r *repository) SearchActive(ctx context.Context, q string, offset, limit int) ([]Job, int, error) {
	start := time.Now()
	jobs := []Job{}
	query := r.db.NewSelect().
		Model(&jobs).
		Where("is_active = TRUE")

	if q != "" {
		pattern := "%" + q + "%"
		query = query.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("title ILIKE ?", pattern).WhereOr("department ILIKE ?", pattern)
		})
	}

	total, err := query.
		Order("created_at DESC", "id DESC").
		Offset(offset).
		Limit(limit).
		ScanAndCount(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "jobs", time.Since(start), err)

	return jobs, total, err
}

func (r *repository) Update(ctx context.Context, job *Job, columns ...string) error {
	start := time.Now()
	result, err := r.db.NewUpdate().Model(job).Column(columns...).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "jobs", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	n, err := r.DeleteMany(ctx, []int{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *repository) DeleteMany(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Job)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "jobs", time.Since(start), err)

	return rows(result, err)
}

func (r *repository) DeleteAll(ctx context.Context) (int, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Job)(nil)).
		Where("TRUE").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "jobs", time.Since(start), err)

	return rows(result, err)
}

func rows(result interface{ RowsAffected() (int64, error) }, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
