package application

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kishorebabuysk/VF-Backend/internal/types"
	"github.com/kishorebabuysk/VF-Backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func year(y int) *int { return &y }

func TestDedupEducations_FirstOccurrenceWins(t *testing.T) {
	in := []EducationInput{
		{HighestQualification: "B.E", Specialization: "CSE", University: "Anna", College: "CEG", YearOfPassing: year(2020)},
		{HighestQualification: " b.e ", Specialization: "cse", University: "ANNA", College: "ceg ", YearOfPassing: year(2020)},
		{HighestQualification: "B.E", Specialization: "CSE", University: "Anna", College: "CEG", YearOfPassing: year(2021)},
	}

	out := DedupEducations(in)

	require.Len(t, out, 2)
	assert.Equal(t, "B.E", out[0].HighestQualification)
	assert.Equal(t, "CEG", out[0].College)
	assert.Equal(t, 2021, out[1].YearOfPassing)
}

func TestDedupExperiences(t *testing.T) {
	joined := types.NewDate(2019, time.January, 1)
	left := types.NewDate(2021, time.June, 30)

	in := []ExperienceInput{
		{PreviousCompany: "Acme", PreviousRole: "Engineer", DateOfJoining: joined, RelievingDate: left},
		{PreviousCompany: "ACME ", PreviousRole: "engineer", DateOfJoining: joined, RelievingDate: left},
		{PreviousCompany: "Acme", PreviousRole: "Engineer", DateOfJoining: joined, RelievingDate: types.NewDate(2022, time.June, 30)},
	}

	out := DedupExperiences(in)

	require.Len(t, out, 2)
	assert.Equal(t, "Acme", out[0].PreviousCompany)
	assert.Empty(t, DedupExperiences(nil))
}

func TestBuildApplication(t *testing.T) {
	base := func() SubmitRequest {
		salary := 500000
		return SubmitRequest{
			JobID:           1,
			FirstName:       "  Asha ",
			LastName:        " Rao",
			ExpectedSalary:  &salary,
			ExperienceLevel: "fresher",
			Educations: []EducationInput{
				{HighestQualification: "B.Sc", Specialization: "Maths", University: "MU", College: "MCC", YearOfPassing: year(2023)},
			},
		}
	}

	t.Run("fresher without experience", func(t *testing.T) {
		app, err := buildApplication(base())
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", app.FullName)
		assert.Equal(t, StatusPending, app.Status)
		assert.Len(t, app.Educations, 1)
		assert.Empty(t, app.Experiences)
	})

	t.Run("experienced without experience", func(t *testing.T) {
		req := base()
		req.ExperienceLevel = "Experienced"
		_, err := buildApplication(req)
		assert.ErrorIs(t, err, ErrExperienceRequired)
	})

	t.Run("empty educations", func(t *testing.T) {
		req := base()
		req.Educations = nil
		_, err := buildApplication(req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestParseSubmitForm(t *testing.T) {
	newRequest := func(t *testing.T, fields map[string]string, files ...string) *multipart.Form {
		t.Helper()
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		for k, v := range fields {
			require.NoError(t, mw.WriteField(k, v))
		}
		for _, name := range files {
			fw, err := mw.CreateFormFile(name, name+".pdf")
			require.NoError(t, err)
			fw.Write([]byte("%PDF-1.4"))
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest("POST", "/admin/applications", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		require.NoError(t, req.ParseMultipartForm(1<<20))
		return req.MultipartForm
	}

	t.Run("full form", func(t *testing.T) {
		form := newRequest(t, map[string]string{
			"job_id":           "7",
			"expected_salary":  "42000",
			"date_of_birth":    "1999-04-12",
			"first_name":       "Asha",
			"experience_level": "experienced",
			"educations":       `[{"highest_qualification":"B.E","specialization":"ECE","university":"AU","college":"PSG","year_of_passing":2020}]`,
			"experience":       `[{"previous_company":"Acme","previous_role":"Dev","date_of_joining":"2020-07-01","relieving_date":"2023-01-31"}]`,
		}, "pan_card", "resume", "photo")

		req := httptest.NewRequest("POST", "/", nil)
		req.MultipartForm = form
		got, uploads, err := parseSubmitForm(req)
		require.NoError(t, err)

		assert.Equal(t, 7, got.JobID)
		assert.Equal(t, 42000, *got.ExpectedSalary)
		assert.Equal(t, "1999-04-12", got.DateOfBirth.String())
		require.Len(t, got.Educations, 1)
		require.Len(t, got.Experience, 1)
		assert.Equal(t, "2023-01-31", got.Experience[0].RelievingDate.String())
		assert.Nil(t, got.LinkedinURL)
		assert.Equal(t, "resume.pdf", uploads.Resume.Filename)
	})

	t.Run("malformed educations", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		req.MultipartForm = newRequest(t, map[string]string{"educations": `[{"college":`}, "pan_card", "resume", "photo")

		_, _, err := parseSubmitForm(req)
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "educations")
	})

	t.Run("missing files", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		req.MultipartForm = newRequest(t, map[string]string{"job_id": "1"}, "resume")

		_, _, err := parseSubmitForm(req)
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "pan_card")
		assert.Contains(t, verr.Fields, "photo")
		assert.NotContains(t, verr.Fields, "resume")
	})

	t.Run("non numeric job id", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		req.MultipartForm = newRequest(t, map[string]string{"job_id": "abc"})

		_, _, err := parseSubmitForm(req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
