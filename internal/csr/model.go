package csr

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Section struct {
	bun.BaseModel `bun:"table:csr_sections,alias:cs"`

	ID        int       `bun:"id,pk,autoincrement" json:"id"`
	PostedAt  time.Time `bun:"posted_at,notnull" json:"posted_at"`
	Title     string    `bun:"title,notnull" json:"title"`
	Image1    string    `bun:"image1,notnull" json:"image1"`
	Image2    string    `bun:"image2,notnull" json:"image2"`
	Image3    string    `bun:"image3,notnull" json:"image3"`
	Image4    string    `bun:"image4,notnull" json:"image4"`
	IsActive  bool      `bun:"is_active,notnull" json:"is_active"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (s *Section) Images() []string {
	return []string{s.Image1, s.Image2, s.Image3, s.Image4}
}

type SectionInput struct {
	Title  string `json:"title" validate:"required,max=200"`
	Image1 string `json:"image1" validate:"required"`
	Image2 string `json:"image2" validate:"required"`
	Image3 string `json:"image3" validate:"required"`
	Image4 string `json:"image4" validate:"required"`
}

type CreateRequest struct {
	Sections []SectionInput `json:"sections" validate:"required,min=1,dive"`
}

type UpdateRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Image1   *string `json:"image1" validate:"omitempty,min=1"`
	Image2   *string `json:"image2" validate:"omitempty,min=1"`
	Image3   *string `json:"image3" validate:"omitempty,min=1"`
	Image4   *string `json:"image4" validate:"omitempty,min=1"`
	IsActive *bool   `json:"is_active"`
}

// Apply merges the set fields onto s and returns the changed columns.
func (r UpdateRequest) Apply(s *Section) []string {
	var cols []string
	set := func(dst *string, src *string, col string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
			cols = append(cols, col)
		}
	}
	set(&s.Title, r.Title, "title")
	set(&s.Image1, r.Image1, "image1")
	set(&s.Image2, r.Image2, "image2")
	set(&s.Image3, r.Image3, "image3")
	set(&s.Image4, r.Image4, "image4")
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
		cols = append(cols, "is_active")
	}
	return cols
}

type UploadResponse struct {
	Count int      `json:"count"`
	Paths []string `json:"paths"`
}
