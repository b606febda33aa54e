package auth

import (
	"context"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, admin *Admin) (*Admin, error)
	List(ctx context.Context) ([]Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	GetActiveByEmail(ctx context.Context, email string) (*Admin, error)
	GetByResetToken(ctx context.Context, token string) (*Admin, error)
	UpdatePassword(ctx context.Context, id int, hash string) error
	SetOTP(ctx context.Context, id int, otp string, expiry time.Time) error
	SetResetToken(ctx context.Context, id int, token string, expiry time.Time) error
	SetActive(ctx context.Context, email string, active bool) error
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

func (r *repository) Create(ctx context.Context, admin *Admin) (*Admin, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(admin).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "admins", time.Since(start), err)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return admin, nil
}

func (r *repository) List(ctx context.Context) ([]Admin, error) {
	start := time.Now()
	var admins []Admin
	err := r.db.NewSelect().Model(&admins).Order("id ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "admins", time.Since(start), err)

	return admins, err
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *repository) GetActiveByEmail(ctx context.Context, email string) (*Admin, error) {
	return r.getOne(ctx, "email = ? AND is_active = TRUE", email)
}

func (r *repository) GetByResetToken(ctx context.Context, token string) (*Admin, error) {
	return r.getOne(ctx, "reset_token = ?", token)
}

func (r *repository) getOne(ctx context.Context, where string, args ...interface{}) (*Admin, error) {
	start := time.Now()
	admin := new(Admin)
	err := r.db.NewSelect().Model(admin).Where(where, args...).Limit(1).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "admins", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// UpdatePassword sets a new hash and clears any pending otp or reset token.
func (r *repository) UpdatePassword(ctx context.Context, id int, hash string) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_hash":      hash,
		"otp":                nil,
		"otp_expiry":         nil,
		"reset_token":        nil,
		"reset_token_expiry": nil,
	})
}

func (r *repository) SetOTP(ctx context.Context, id int, otp string, expiry time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"otp":        otp,
		"otp_expiry": expiry,
	})
}

// SetResetToken stores the reset token and consumes the otp.
func (r *repository) SetResetToken(ctx context.Context, id int, token string, expiry time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"otp":                nil,
		"otp_expiry":         nil,
		"reset_token":        token,
		"reset_token_expiry": expiry,
	})
}

func (r *repository) SetActive(ctx context.Context, email string, active bool) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model((*Admin)(nil)).
		Set("is_active = ?", active).
		Where("email = ?", email).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "admins", time.Since(start), err)

	return affected(result, err)
}

func (r *repository) update(ctx context.Context, id int, values map[string]interface{}) error {
	start := time.Now()
	q := r.db.NewUpdate().Model((*Admin)(nil)).Where("id = ?", id)
	for column, value := range values {
		q = q.Set("? = ?", bun.Ident(column), value)
	}
	result, err := q.Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "admins", time.Since(start), err)

	return affected(result, err)
}

func affected(result interface{ RowsAffected() (int64, error) }, err error) error {
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}
