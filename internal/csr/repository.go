package csr

import (
	"context"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	CreateMany(ctx context.Context, sections []Section) error
	List(ctx context.Context) ([]Section, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]Section, error)
	GetByID(ctx context.Context, id int) (*Section, error)
	Update(ctx context.Context, section *Section, columns ...string) error
	DeleteByID(ctx context.Context, id int) (*Section, error)
	DeleteBetween(ctx context.Context, start, end time.Time) ([]Section, error)
	DeleteAll(ctx context.Context) ([]Section, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) CreateMany(ctx context.Context, sections []Section) error {
	return db.RunInTx(ctx, r.db, r.metrics, "create_csr_sections", func(ctx context.Context, tx bun.Tx) error {
		start := time.Now()
		_, err := tx.NewInsert().Model(&sections).Returning("*").Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "insert", "csr_sections", time.Since(start), err)
		return err
	})
}

func (r *repository) List(ctx context.Context) ([]Section, error) {
	return r.list(ctx, nil)
}

func (r *repository) ListBetween(ctx context.Context, from, to time.Time) ([]Section, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("posted_at >= ?", from).Where("posted_at < ?", to)
	})
}

func (r *repository) list(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]Section, error) {
	start := time.Now()
	var sections []Section
	q := r.db.NewSelect().Model(&sections)
	if filter != nil {
		q = filter(q)
	}
	err := q.Order("posted_at DESC", "id ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "csr_sections", time.Since(start), err)

	return sections, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Section, error) {
	start := time.Now()
	section := new(Section)
	err := r.db.NewSelect().Model(section).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "csr_sections", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	return section, nil
}

func (r *repository) Update(ctx context.Context, section *Section, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	start := time.Now()
	_, err := r.db.NewUpdate().Model(section).Column(columns...).WherePK().Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "csr_sections", time.Since(start), err)

	if db.IsNoRows(err) {
		return ErrSectionNotFound
	}
	return err
}

func (r *repository) DeleteByID(ctx context.Context, id int) (*Section, error) {
	deleted, err := r.deleteReturning(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, ErrSectionNotFound
	}
	return &deleted[0], nil
}

func (r *repository) DeleteBetween(ctx context.Context, from, to time.Time) ([]Section, error) {
	return r.deleteReturning(ctx, "posted_at >= ? AND posted_at < ?", from, to)
}

func (r *repository) DeleteAll(ctx context.Context) ([]Section, error) {
	return r.deleteReturning(ctx, "TRUE")
}

// deleteReturning deletes matching rows and hands them back so their image
// files can be cleaned up.
func (r *repository) deleteReturning(ctx context.Context, where string, args ...interface{}) ([]Section, error) {
	start := time.Now()
	var deleted []Section
	_, err := r.db.NewDelete().
		Model((*Section)(nil)).
		Where(where, args...).
		Returning("*").
		Exec(ctx, &deleted)

	r.metrics.Database.RecordQuery(ctx, "delete", "csr_sections", time.Since(start), err)

	return deleted, err
}
