package application

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/kishorebabuysk/VF-Backend/internal/types"
	"github.com/kishorebabuysk/VF-Backend/internal/validation"
)

type educationKey struct {
	qualification  string
	specialization string
	university     string
	college        string
	year           int
}

type experienceKey struct {
	company string
	role    string
	joined  types.Date
	left    types.Date
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DedupEducations drops entries whose normalized key was already seen.
// The first occurrence wins and keeps its original spelling.
func DedupEducations(in []EducationInput) []Education {
	seen := make(map[educationKey]struct{}, len(in))
	out := make([]Education, 0, len(in))
	for _, e := range in {
		year := 0
		if e.YearOfPassing != nil {
			year = *e.YearOfPassing
		}
		key := educationKey{
			qualification:  norm(e.HighestQualification),
			specialization: norm(e.Specialization),
			university:     norm(e.University),
			college:        norm(e.College),
			year:           year,
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Education{
			HighestQualification: e.HighestQualification,
			Specialization:       e.Specialization,
			University:           e.University,
			College:              e.College,
			YearOfPassing:        year,
		})
	}
	return out
}

// DedupExperiences is DedupEducations for experience entries; dates compare exactly.
func DedupExperiences(in []ExperienceInput) []Experience {
	seen := make(map[experienceKey]struct{}, len(in))
	out := make([]Experience, 0, len(in))
	for _, e := range in {
		key := experienceKey{
			company: norm(e.PreviousCompany),
			role:    norm(e.PreviousRole),
			joined:  e.DateOfJoining,
			left:    e.RelievingDate,
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Experience{
			PreviousCompany: e.PreviousCompany,
			PreviousRole:    e.PreviousRole,
			DateOfJoining:   e.DateOfJoining,
			RelievingDate:   e.RelievingDate,
		})
	}
	return out
}

// IsExperienced reports whether the declared level requires experience entries.
func IsExperienced(level string) bool {
	return norm(level) == "experienced"
}

// parseSubmitForm reads an already parsed multipart form into a SubmitRequest.
// Nested lists arrive as JSON array strings.
func parseSubmitForm(r *http.Request) (SubmitRequest, Uploads, error) {
	var req SubmitRequest
	form := r.MultipartForm
	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	if raw := strings.TrimSpace(value("job_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return req, Uploads{}, validation.Invalid("job_id", "must be an integer")
		}
		req.JobID = id
	}
	if raw := strings.TrimSpace(value("expected_salary")); raw != "" {
		salary, err := strconv.Atoi(raw)
		if err != nil {
			return req, Uploads{}, validation.Invalid("expected_salary", "must be an integer")
		}
		req.ExpectedSalary = &salary
	}
	if raw := strings.TrimSpace(value("date_of_birth")); raw != "" {
		dob, err := types.ParseDate(raw)
		if err != nil {
			return req, Uploads{}, validation.Invalid("date_of_birth", err.Error())
		}
		req.DateOfBirth = dob
	}

	req.FirstName = value("first_name")
	req.LastName = value("last_name")
	req.Phone = value("phone")
	req.Email = strings.TrimSpace(value("email"))
	req.Gender = value("gender")
	req.Location = value("location")
	req.PanNumber = value("pan_number")
	if linkedin := strings.TrimSpace(value("linkedin_url")); linkedin != "" {
		req.LinkedinURL = &linkedin
	}
	req.PositionApplied = value("position_applied")
	req.PreferredWorkMode = value("preferred_work_mode")
	req.KeySkills = value("key_skills")
	req.WhyHireMe = value("why_hire_me")
	req.ExperienceLevel = value("experience_level")

	if raw := strings.TrimSpace(value("educations")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Educations); err != nil {
			return req, Uploads{}, validation.Invalid("educations", "invalid education format: "+err.Error())
		}
	}
	if raw := strings.TrimSpace(value("experience")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Experience); err != nil {
			return req, Uploads{}, validation.Invalid("experience", "invalid experience format: "+err.Error())
		}
	}

	var uploads Uploads
	missing := &validation.Error{Fields: map[string]string{}}
	for key, dst := range map[string]**multipart.FileHeader{
		"pan_card": &uploads.PanCard,
		"resume":   &uploads.Resume,
		"photo":    &uploads.Photo,
	} {
		files := form.File[key]
		if len(files) == 0 {
			missing.Fields[key] = "is required"
			continue
		}
		*dst = files[0]
	}
	if len(missing.Fields) > 0 {
		return req, Uploads{}, missing
	}

	return req, uploads, nil
}
