package application

import (
	"mime/multipart"
	"time"

	"github.com/kishorebabuysk/VF-Backend/internal/types"

	"github.com/uptrace/bun"
)

const (
	StatusPending     = "Pending"
	StatusShortlisted = "Shortlisted"
	StatusMaybe       = "Maybe"
	StatusRejected    = "Rejected"
)

type Application struct {
	bun.BaseModel `bun:"table:applications,alias:a"`

	ID                int        `bun:"id,pk,autoincrement" json:"id"`
	JobID             int        `bun:"job_id,notnull" json:"job_id"`
	FirstName         string     `bun:"first_name,notnull" json:"first_name"`
	LastName          string     `bun:"last_name,notnull" json:"last_name"`
	FullName          string     `bun:"full_name,notnull" json:"full_name"`
	Phone             string     `bun:"phone" json:"phone"`
	Email             string     `bun:"email" json:"email"`
	DateOfBirth       types.Date `bun:"date_of_birth,type:date" json:"date_of_birth"`
	Gender            string     `bun:"gender" json:"gender"`
	Location          string     `bun:"location" json:"location"`
	PanNumber         string     `bun:"pan_number" json:"pan_number"`
	LinkedinURL       *string    `bun:"linkedin_url" json:"linkedin_url"`
	PositionApplied   string     `bun:"position_applied" json:"position_applied"`
	PreferredWorkMode string     `bun:"preferred_work_mode" json:"preferred_work_mode"`
	KeySkills         string     `bun:"key_skills,type:text" json:"key_skills"`
	ExpectedSalary    int        `bun:"expected_salary" json:"expected_salary"`
	WhyHireMe         string     `bun:"why_hire_me,type:text" json:"why_hire_me"`
	ExperienceLevel   string     `bun:"experience_level" json:"experience_level"`
	PanCardFile       string     `bun:"pan_card_file" json:"pan_card_file"`
	ResumeFile        string     `bun:"resume_file" json:"resume_file"`
	PhotoFile         string     `bun:"photo_file" json:"photo_file"`
	Status            string     `bun:"status,notnull" json:"status"`
	CreatedAt         time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Educations  []Education  `bun:"rel:has-many,join:id=application_id" json:"educations"`
	Experiences []Experience `bun:"rel:has-many,join:id=application_id" json:"experiences"`
}

// Files returns the stored-file references owned by the application.
func (a *Application) Files() []string {
	return []string{a.PanCardFile, a.ResumeFile, a.PhotoFile}
}

// ensureChildren makes empty child lists encode as [] rather than null.
func (a *Application) ensureChildren() {
	if a.Educations == nil {
		a.Educations = []Education{}
	}
	if a.Experiences == nil {
		a.Experiences = []Experience{}
	}
}

type Education struct {
	bun.BaseModel `bun:"table:application_education,alias:ae"`

	ID                   int    `bun:"id,pk,autoincrement" json:"id"`
	ApplicationID        int    `bun:"application_id,notnull" json:"application_id"`
	HighestQualification string `bun:"highest_qualification" json:"highest_qualification"`
	Specialization       string `bun:"specialization" json:"specialization"`
	University           string `bun:"university" json:"university"`
	College              string `bun:"college" json:"college"`
	YearOfPassing        int    `bun:"year_of_passing" json:"year_of_passing"`
}

type Experience struct {
	bun.BaseModel `bun:"table:application_experience,alias:ax"`

	ID              int        `bun:"id,pk,autoincrement" json:"id"`
	ApplicationID   int        `bun:"application_id,notnull" json:"application_id"`
	PreviousCompany string     `bun:"previous_company" json:"previous_company"`
	PreviousRole    string     `bun:"previous_role" json:"previous_role"`
	DateOfJoining   types.Date `bun:"date_of_joining,type:date" json:"date_of_joining"`
	RelievingDate   types.Date `bun:"relieving_date,type:date" json:"relieving_date"`
}

type EducationInput struct {
	HighestQualification string `json:"highest_qualification" validate:"required"`
	Specialization       string `json:"specialization" validate:"required"`
	University           string `json:"university" validate:"required"`
	College              string `json:"college" validate:"required"`
	YearOfPassing        *int   `json:"year_of_passing" validate:"required,gte=1900"`
}

type ExperienceInput struct {
	PreviousCompany string     `json:"previous_company" validate:"required"`
	PreviousRole    string     `json:"previous_role" validate:"required"`
	DateOfJoining   types.Date `json:"date_of_joining" validate:"required"`
	RelievingDate   types.Date `json:"relieving_date" validate:"required"`
}

// SubmitRequest is the decoded multipart intake form. Field names match the
// form keys so validation messages point at what the client sent.
type SubmitRequest struct {
	JobID             int               `json:"job_id" validate:"required,gt=0"`
	FirstName         string            `json:"first_name" validate:"required"`
	LastName          string            `json:"last_name" validate:"required"`
	Phone             string            `json:"phone" validate:"required"`
	Email             string            `json:"email" validate:"required,email"`
	DateOfBirth       types.Date        `json:"date_of_birth" validate:"required"`
	Gender            string            `json:"gender" validate:"required"`
	Location          string            `json:"location" validate:"required"`
	PanNumber         string            `json:"pan_number" validate:"required"`
	LinkedinURL       *string           `json:"linkedin_url"`
	PositionApplied   string            `json:"position_applied" validate:"required"`
	PreferredWorkMode string            `json:"preferred_work_mode" validate:"required"`
	KeySkills         string            `json:"key_skills" validate:"required"`
	ExpectedSalary    *int              `json:"expected_salary" validate:"required,gte=0"`
	WhyHireMe         string            `json:"why_hire_me" validate:"required"`
	ExperienceLevel   string            `json:"experience_level" validate:"required"`
	Educations        []EducationInput  `json:"educations" validate:"required,min=1,dive"`
	Experience        []ExperienceInput `json:"experience" validate:"omitempty,dive"`
}

// Uploads holds the three documents attached to an intake form.
type Uploads struct {
	PanCard *multipart.FileHeader
	Resume  *multipart.FileHeader
	Photo   *multipart.FileHeader
}

type Filter struct {
	JobID  int
	Status string
}

type Stats struct {
	Total       int            `json:"total"`
	Pending     int            `json:"pending"`
	Shortlisted int            `json:"shortlisted"`
	Maybe       int            `json:"maybe"`
	Rejected    int            `json:"rejected"`
	ByStatus    map[string]int `json:"by_status"`
}

type ListResult struct {
	Applications []Application `json:"applications"`
	Stats        Stats         `json:"stats"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type StatusChange struct {
	ID        int    `json:"id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Message   string `json:"message"`
}

type BulkDeleteRequest struct {
	ApplicationIDs []int `json:"application_ids"`
}

type SubmittedEvent struct {
	ApplicationID   int    `json:"application_id"`
	JobID           int    `json:"job_id"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	ExperienceLevel string `json:"experience_level"`
}

type StatusChangedEvent struct {
	ApplicationID int    `json:"application_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
}
