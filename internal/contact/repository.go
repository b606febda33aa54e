package contact

import (
	"context"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, contact *Contact) error
	List(ctx context.Context) ([]Contact, error)
	Delete(ctx context.Context, id int) (bool, error)
	DeleteMany(ctx context.Context, ids []int) (int, error)
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

func (r *repository) Create(ctx context.Context, contact *Contact) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(contact).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "contacts", time.Since(start), err)
	return err
}

func (r *repository) List(ctx context.Context) ([]Contact, error) {
	start := time.Now()
	contacts := []Contact{}
	err := r.db.NewSelect().Model(&contacts).Order("created_at DESC", "id DESC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "contacts", time.Since(start), err)
	return contacts, err
}

func (r *repository) Delete(ctx context.Context, id int) (bool, error) {
	n, err := r.delete(ctx, "id = ?", id)
	return n > 0, err
}

func (r *repository) DeleteMany(ctx context.Context, ids []int) (int, error) {
	return r.delete(ctx, "id IN (?)", bun.In(ids))
}

func (r *repository) delete(ctx context.Context, where string, args ...interface{}) (int, error) {
	start := time.Now()
	res, err := r.db.NewDelete().Model((*Contact)(nil)).Where(where, args...).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "contacts", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
