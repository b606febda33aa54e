package job

import (
	"time"

	"github.com/kishorebabuysk/VF-Backend/internal/types"

	"github.com/uptrace/bun"
)

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID                    int        `bun:"id,pk,autoincrement" json:"id"`
	Title                 string     `bun:"title,notnull" json:"title"`
	Department            string     `bun:"department,notnull" json:"department"`
	WorkMode              string     `bun:"work_mode" json:"work_mode"`
	RolesResponsibilities string     `bun:"roles_responsibilities,type:text" json:"roles_responsibilities"`
	RequiredSkills        *string    `bun:"required_skills,type:text" json:"required_skills"`
	SelectedSkills        []string   `bun:"selected_skills,type:jsonb,notnull" json:"selected_skills"`
	ExperienceMin         int        `bun:"experience_min" json:"experience_min"`
	ExperienceMax         int        `bun:"experience_max" json:"experience_max"`
	QualificationRequired string     `bun:"qualification_required" json:"qualification_required"`
	SalaryMin             int        `bun:"salary_min" json:"salary_min"`
	SalaryMax             int        `bun:"salary_max" json:"salary_max"`
	PerksBenefits         *string    `bun:"perks_benefits,type:text" json:"perks_benefits"`
	JobLocation           string     `bun:"job_location" json:"job_location"`
	JobLocality           *string    `bun:"job_locality" json:"job_locality"`
	Openings              int        `bun:"openings" json:"openings"`
	ApplicationDeadline   types.Date `bun:"application_deadline,type:date" json:"application_deadline"`
	IsActive              bool       `bun:"is_active,notnull" json:"is_active"`
	CreatedAt             time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type CreateRequest struct {
	Title                 string     `json:"title" validate:"required"`
	Department            string     `json:"department" validate:"required"`
	WorkMode              string     `json:"work_mode" validate:"required"`
	RolesResponsibilities string     `json:"roles_responsibilities" validate:"required"`
	RequiredSkills        *string    `json:"required_skills"`
	SelectedSkills        []string   `json:"selected_skills"`
	ExperienceMin         *int       `json:"experience_min" validate:"required,gte=0"`
	ExperienceMax         *int       `json:"experience_max" validate:"required,gte=0"`
	QualificationRequired string     `json:"qualification_required" validate:"required"`
	SalaryMin             *int       `json:"salary_min" validate:"required,gte=0"`
	SalaryMax             *int       `json:"salary_max" validate:"required,gte=0"`
	PerksBenefits         *string    `json:"perks_benefits"`
	JobLocation           string     `json:"job_location" validate:"required"`
	JobLocality           *string    `json:"job_locality"`
	Openings              *int       `json:"openings" validate:"required,gte=1"`
	ApplicationDeadline   types.Date `json:"application_deadline" validate:"required"`
	IsActive              *bool      `json:"is_active"`
}

// UpdateRequest carries only the fields the caller wants to change.
type UpdateRequest struct {
	Title                 *string     `json:"title" validate:"omitempty,min=1"`
	Department            *string     `json:"department" validate:"omitempty,min=1"`
	WorkMode              *string     `json:"work_mode"`
	RolesResponsibilities *string     `json:"roles_responsibilities"`
	RequiredSkills        *string     `json:"required_skills"`
	SelectedSkills        *[]string   `json:"selected_skills"`
	ExperienceMin         *int        `json:"experience_min" validate:"omitempty,gte=0"`
	ExperienceMax         *int        `json:"experience_max" validate:"omitempty,gte=0"`
	QualificationRequired *string     `json:"qualification_required"`
	SalaryMin             *int        `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax             *int        `json:"salary_max" validate:"omitempty,gte=0"`
	PerksBenefits         *string     `json:"perks_benefits"`
	JobLocation           *string     `json:"job_location"`
	JobLocality           *string     `json:"job_locality"`
	Openings              *int        `json:"openings" validate:"omitempty,gte=1"`
	ApplicationDeadline   *types.Date `json:"application_deadline"`
	IsActive              *bool       `json:"is_active"`
}

type Page struct {
	Total int   `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Data  []Job `json:"data"`
}

// ToJob builds a new posting; postings are active unless stated otherwise.
func (r CreateRequest) ToJob() *Job {
	skills := r.SelectedSkills
	if skills == nil {
		skills = []string{}
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &Job{
		Title:                 r.Title,
		Department:            r.Department,
		WorkMode:              r.WorkMode,
		RolesResponsibilities: r.RolesResponsibilities,
		RequiredSkills:        r.RequiredSkills,
		SelectedSkills:        skills,
		ExperienceMin:         *r.ExperienceMin,
		ExperienceMax:         *r.ExperienceMax,
		QualificationRequired: r.QualificationRequired,
		SalaryMin:             *r.SalaryMin,
		SalaryMax:             *r.SalaryMax,
		PerksBenefits:         r.PerksBenefits,
		JobLocation:           r.JobLocation,
		JobLocality:           r.JobLocality,
		Openings:              *r.Openings,
		ApplicationDeadline:   r.ApplicationDeadline,
		IsActive:              active,
	}
}

// Apply merges the set fields of r onto job and returns the changed columns.
func (r UpdateRequest) Apply(job *Job) []string {
	var cols []string
	if r.Title != nil {
		job.Title = *r.Title
		cols = append(cols, "title")
	}
	if r.Department != nil {
		job.Department = *r.Department
		cols = append(cols, "department")
	}
	if r.WorkMode != nil {
		job.WorkMode = *r.WorkMode
		cols = append(cols, "work_mode")
	}
	if r.RolesResponsibilities != nil {
		job.RolesResponsibilities = *r.RolesResponsibilities
		cols = append(cols, "roles_responsibilities")
	}
	if r.RequiredSkills != nil {
		job.RequiredSkills = r.RequiredSkills
		cols = append(cols, "required_skills")
	}
	if r.SelectedSkills != nil {
		job.SelectedSkills = *r.SelectedSkills
		if job.SelectedSkills == nil {
			job.SelectedSkills = []string{}
		}
		cols = append(cols, "selected_skills")
	}
	if r.ExperienceMin != nil {
		job.ExperienceMin = *r.ExperienceMin
		cols = append(cols, "experience_min")
	}
	if r.ExperienceMax != nil {
		job.ExperienceMax = *r.ExperienceMax
		cols = append(cols, "experience_max")
	}
	if r.QualificationRequired != nil {
		job.QualificationRequired = *r.QualificationRequired
		cols = append(cols, "qualification_required")
	}
	if r.SalaryMin != nil {
		job.SalaryMin = *r.SalaryMin
		cols = append(cols, "salary_min")
	}
	if r.SalaryMax != nil {
		job.SalaryMax = *r.SalaryMax
		cols = append(cols, "salary_max")
	}
	if r.PerksBenefits != nil {
		job.PerksBenefits = r.PerksBenefits
		cols = append(cols, "perks_benefits")
	}
	if r.JobLocation != nil {
		job.JobLocation = *r.JobLocation
		cols = append(cols, "job_location")
	}
	if r.JobLocality != nil {
		job.JobLocality = r.JobLocality
		cols = append(cols, "job_locality")
	}
	if r.Openings != nil {
		job.Openings = *r.Openings
		cols = append(cols, "openings")
	}
	if r.ApplicationDeadline != nil {
		job.ApplicationDeadline = *r.ApplicationDeadline
		cols = append(cols, "application_deadline")
	}
	if r.IsActive != nil {
		job.IsActive = *r.IsActive
		cols = append(cols, "is_active")
	}
	return cols
}
