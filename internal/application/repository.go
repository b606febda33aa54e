package application

import (
	"context"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int) (*Application, error)
	List(ctx context.Context, filter Filter) ([]Application, error)
	ListAll(ctx context.Context, offset, limit int) ([]Application, error)
	CountByStatus(ctx context.Context, jobID int) (map[string]int, error)
	UpdateStatus(ctx context.Context, id int, status string) error
	FindByIDs(ctx context.Context, ids []int) ([]Application, error)
	DeleteMany(ctx context.Context, ids []int) (int, error)
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

// Create inserts the application and its children in one transaction.
func (r *repository) Create(ctx context.Context, app *Application) error {
	return db.RunInTx(ctx, r.db, r.metrics, "create_application", func(ctx context.Context, tx bun.Tx) error {
		start := time.Now()
		_, err := tx.NewInsert().Model(app).Returning("*").Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "insert", "applications", time.Since(start), err)
		if err != nil {
			return err
		}

		if len(app.Educations) > 0 {
			for i := range app.Educations {
				app.Educations[i].ApplicationID = app.ID
			}
			start = time.Now()
			_, err = tx.NewInsert().Model(&app.Educations).Returning("*").Exec(ctx)
			r.metrics.Database.RecordQuery(ctx, "insert", "application_education", time.Since(start), err)
			if err != nil {
				return err
			}
		}

		if len(app.Experiences) > 0 {
			for i := range app.Experiences {
				app.Experiences[i].ApplicationID = app.ID
			}
			start = time.Now()
			_, err = tx.NewInsert().Model(&app.Experiences).Returning("*").Exec(ctx)
			r.metrics.Database.RecordQuery(ctx, "insert", "application_experience", time.Since(start), err)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) withChildren(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Educations", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("ae.id ASC")
		}).
		Relation("Experiences", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("ax.id ASC")
		})
}

func (r *repository) GetByID(ctx context.Context, id int) (*Application, error) {
	start := time.Now()
	app := new(Application)
	err := r.withChildren(r.db.NewSelect().Model(app)).Where("a.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "applications", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Application, error) {
	start := time.Now()
	var apps []Application
	q := r.withChildren(r.db.NewSelect().Model(&apps))
	if filter.JobID > 0 {
		q = q.Where("a.job_id = ?", filter.JobID)
	}
	if filter.Status != "" {
		q = q.Where("a.status = ?", filter.Status)
	}
	err := q.Order("a.created_at DESC", "a.id DESC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "applications", time.Since(start), err)

	return apps, err
}

func (r *repository) ListAll(ctx context.Context, offset, limit int) ([]Application, error) {
	start := time.Now()
	var apps []Application
	err := r.withChildren(r.db.NewSelect().Model(&apps)).
		Order("a.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "applications", time.Since(start), err)

	return apps, err
}

// CountByStatus groups applications by status, narrowed to one job when jobID > 0.
func (r *repository) CountByStatus(ctx context.Context, jobID int) (map[string]int, error) {
	start := time.Now()
	var rows []struct {
		Status string `bun:"status"`
		Count  int    `bun:"count"`
	}
	q := r.db.NewSelect().
		Model((*Application)(nil)).
		Column("status").
		ColumnExpr("COUNT(*) AS count").
		Group("status")
	if jobID > 0 {
		q = q.Where("job_id = ?", jobID)
	}
	err := q.Scan(ctx, &rows)

	r.metrics.Database.RecordQuery(ctx, "select", "applications", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status string) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Application)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "applications", time.Since(start), err)

	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// FindByIDs loads the rows that exist among ids, without children.
func (r *repository) FindByIDs(ctx context.Context, ids []int) ([]Application, error) {
	start := time.Now()
	var apps []Application
	err := r.db.NewSelect().Model(&apps).Where("a.id IN (?)", bun.In(ids)).Order("a.id ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "applications", time.Since(start), err)

	return apps, err
}

// DeleteMany removes children then parents in one transaction and returns
// the number of applications deleted.
func (r *repository) DeleteMany(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int
	err := db.RunInTx(ctx, r.db, r.metrics, "delete_applications", func(ctx context.Context, tx bun.Tx) error {
		children := []struct {
			model interface{}
			table string
		}{
			{(*Education)(nil), "application_education"},
			{(*Experience)(nil), "application_experience"},
		}
		for _, child := range children {
			start := time.Now()
			_, err := tx.NewDelete().Model(child.model).Where("application_id IN (?)", bun.In(ids)).Exec(ctx)
			r.metrics.Database.RecordQuery(ctx, "delete", child.table, time.Since(start), err)
			if err != nil {
				return err
			}
		}

		start := time.Now()
		result, err := tx.NewDelete().Model((*Application)(nil)).Where("id IN (?)", bun.In(ids)).Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "delete", "applications", time.Since(start), err)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		deleted = int(n)
		return nil
	})
	return deleted, err
}
