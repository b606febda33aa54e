package onboarding

import (
	"context"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, o *Onboarding) error
	Replace(ctx context.Context, o *Onboarding) error
	GetByID(ctx context.Context, id int) (*Onboarding, error)
	List(ctx context.Context) ([]Onboarding, error)
	Exists(ctx context.Context, id int) (bool, error)
	IdentityTaken(ctx context.Context, email, aadhar string, excludeID int) (bool, error)
	FindByIDs(ctx context.Context, ids []int) ([]Onboarding, error)
	DeleteMany(ctx context.Context, ids []int) (int, error)
	AddDocuments(ctx context.Context, docs []Document) error
	ListDocuments(ctx context.Context, onboardingID int) ([]Document, error)
}

type childTable struct {
	model interface{}
	table string
}

// sections are the child tables a replace rewrites; documents survive it.
var sections = []childTable{
	{(*Nominee)(nil), "onboarding_nominees"},
	{(*FamilyMember)(nil), "onboarding_family"},
	{(*Reference)(nil), "onboarding_references"},
	{(*Bank)(nil), "onboarding_bank"},
	{(*Checklist)(nil), "onboarding_checklist"},
	{(*ExperienceDetails)(nil), "onboarding_experience_details"},
}

var personalColumns = []string{
	"name", "dob", "marital_status", "gender", "aadhar_number", "father_name",
	"mother_name", "spouse_name", "communication_address", "permanent_address",
	"landline_number", "mobile_number", "email", "blood_group", "emergency_contact1",
	"emergency_contact2", "education_qualification", "driving_license", "vehicle_number",
	"applied_role", "experience_type",
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

func (r *repository) Create(ctx context.Context, o *Onboarding) error {
	err := db.RunInTx(ctx, r.db, r.metrics, "create_onboarding", func(ctx context.Context, tx bun.Tx) error {
		start := time.Now()
		_, err := tx.NewInsert().Model(o).Returning("*").Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "insert", "onboarding", time.Since(start), err)
		if err != nil {
			return err
		}

		o.setOwner()
		if len(o.Documents) > 0 {
			if err := r.insert(ctx, tx, "onboarding_documents", &o.Documents); err != nil {
				return err
			}
		}
		return r.insertSections(ctx, tx, o)
	})
	if db.IsUniqueViolation(err) {
		return ErrOnboardingExists
	}
	return err
}

// Replace rewrites the personal columns and every section except documents.
func (r *repository) Replace(ctx context.Context, o *Onboarding) error {
	err := db.RunInTx(ctx, r.db, r.metrics, "replace_onboarding", func(ctx context.Context, tx bun.Tx) error {
		start := time.Now()
		result, err := tx.NewUpdate().Model(o).Column(personalColumns...).WherePK().Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "update", "onboarding", time.Since(start), err)
		if err != nil {
			return err
		}
		if n, err := result.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrOnboardingNotFound
		}

		if err := r.deleteChildren(ctx, tx, sections, []int{o.ID}); err != nil {
			return err
		}
		o.setOwner()
		return r.insertSections(ctx, tx, o)
	})
	if db.IsUniqueViolation(err) {
		return ErrOnboardingExists
	}
	return err
}

func (r *repository) insertSections(ctx context.Context, tx bun.Tx, o *Onboarding) error {
	if len(o.Nominees) > 0 {
		if err := r.insert(ctx, tx, "onboarding_nominees", &o.Nominees); err != nil {
			return err
		}
	}
	if len(o.Family) > 0 {
		if err := r.insert(ctx, tx, "onboarding_family", &o.Family); err != nil {
			return err
		}
	}
	if len(o.References) > 0 {
		if err := r.insert(ctx, tx, "onboarding_references", &o.References); err != nil {
			return err
		}
	}
	if o.Bank != nil {
		if err := r.insert(ctx, tx, "onboarding_bank", o.Bank); err != nil {
			return err
		}
	}
	if o.Checklist != nil {
		if err := r.insert(ctx, tx, "onboarding_checklist", o.Checklist); err != nil {
			return err
		}
	}
	if o.ExperienceDetails != nil {
		if err := r.insert(ctx, tx, "onboarding_experience_details", o.ExperienceDetails); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) insert(ctx context.Context, idb bun.IDB, table string, model interface{}) error {
	start := time.Now()
	_, err := idb.NewInsert().Model(model).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", table, time.Since(start), err)
	return err
}

func (r *repository) deleteChildren(ctx context.Context, tx bun.Tx, tables []childTable, ids []int) error {
	for _, child := range tables {
		start := time.Now()
		_, err := tx.NewDelete().Model(child.model).Where("onboarding_id IN (?)", bun.In(ids)).Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "delete", child.table, time.Since(start), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func withSections(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Documents", func(sq *bun.SelectQuery) *bun.SelectQuery { return sq.Order("od.id ASC") }).
		Relation("Nominees", func(sq *bun.SelectQuery) *bun.SelectQuery { return sq.Order("onm.id ASC") }).
		Relation("Family", func(sq *bun.SelectQuery) *bun.SelectQuery { return sq.Order("ofm.id ASC") }).
		Relation("References", func(sq *bun.SelectQuery) *bun.SelectQuery { return sq.Order("orf.id ASC") }).
		Relation("Bank").
		Relation("Checklist").
		Relation("ExperienceDetails")
}

func (r *repository) GetByID(ctx context.Context, id int) (*Onboarding, error) {
	start := time.Now()
	o := new(Onboarding)
	err := withSections(r.db.NewSelect().Model(o)).Where("o.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "onboarding", time.Since(start), err)

	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrOnboardingNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context) ([]Onboarding, error) {
	start := time.Now()
	var list []Onboarding
	err := withSections(r.db.NewSelect().Model(&list)).Order("o.id ASC").Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "onboarding", time.Since(start), err)

	return list, err
}

func (r *repository) Exists(ctx context.Context, id int) (bool, error) {
	start := time.Now()
	ok, err := r.db.NewSelect().Model((*Onboarding)(nil)).Where("id = ?", id).Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "onboarding", time.Since(start), err)

	return ok, err
}

// IdentityTaken reports whether another record already uses the email or
// national id. excludeID skips the record being replaced.
func (r *repository) IdentityTaken(ctx context.Context, email, aadhar string, excludeID int) (bool, error) {
	start := time.Now()
	q := r.db.NewSelect().
		Model((*Onboarding)(nil)).
		WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("email = ?", email).WhereOr("aadhar_number = ?", aadhar)
		})
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	ok, err := q.Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "onboarding", time.Since(start), err)

	return ok, err
}

// FindByIDs loads existing records among ids together with their documents.
func (r *repository) FindByIDs(ctx context.Context, ids []int) ([]Onboarding, error) {
	start := time.Now()
	var list []Onboarding
	err := r.db.NewSelect().
		Model(&list).
		Relation("Documents").
		Where("o.id IN (?)", bun.In(ids)).
		Order("o.id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "onboarding", time.Since(start), err)

	return list, err
}

func (r *repository) DeleteMany(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int
	err := db.RunInTx(ctx, r.db, r.metrics, "delete_onboarding", func(ctx context.Context, tx bun.Tx) error {
		children := append([]childTable{{(*Document)(nil), "onboarding_documents"}}, sections...)
		if err := r.deleteChildren(ctx, tx, children, ids); err != nil {
			return err
		}

		start := time.Now()
		result, err := tx.NewDelete().Model((*Onboarding)(nil)).Where("id IN (?)", bun.In(ids)).Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "delete", "onboarding", time.Since(start), err)
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

func (r *repository) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	return db.RunInTx(ctx, r.db, r.metrics, "add_onboarding_documents", func(ctx context.Context, tx bun.Tx) error {
		return r.insert(ctx, tx, "onboarding_documents", &docs)
	})
}

func (r *repository) ListDocuments(ctx context.Context, onboardingID int) ([]Document, error) {
	start := time.Now()
	var docs []Document
	err := r.db.NewSelect().
		Model(&docs).
		Where("onboarding_id = ?", onboardingID).
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "onboarding_documents", time.Since(start), err)

	return docs, err
}
