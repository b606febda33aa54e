package application_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kishorebabuysk/VF-Backend/common/logger"
	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/application"
	"github.com/kishorebabuysk/VF-Backend/internal/db"
	"github.com/kishorebabuysk/VF-Backend/internal/events"
	appmetrics "github.com/kishorebabuysk/VF-Backend/internal/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/storage"
	"github.com/kishorebabuysk/VF-Backend/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func passthrough(next http.Handler) http.Handler { return next }

type knownJobs map[int]bool

func (k knownJobs) Exists(_ context.Context, id int) (bool, error) {
	return k[id], nil
}

type testEnv struct {
	router    chi.Router
	store     *storage.Store
	publisher *events.Recorder
}

func setupTest(database *bun.DB) *testEnv {
	log := logger.Discard()
	store := storage.New(afero.NewMemMapFs(), log)
	publisher := &events.Recorder{}

	repo := application.NewRepository(database, metrics.NewMock())
	service := application.NewService(repo, knownJobs{1: true, 2: true}, store, publisher, log)
	handler := application.NewHandler(service, log, appmetrics.NewMock(), 0)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, passthrough, passthrough)
	return &testEnv{router: router, store: store, publisher: publisher}
}

const education = `{"highest_qualification":"B.E","specialization":"CSE","university":"Anna","college":"CEG","year_of_passing":2020}`

func formFields(jobID int, level string) map[string]string {
	return map[string]string{
		"job_id":              fmt.Sprint(jobID),
		"first_name":          "Asha",
		"last_name":           "Rao",
		"phone":               "9876543210",
		"email":               "asha@example.com",
		"date_of_birth":       "1998-02-14",
		"gender":              "Female",
		"location":            "Chennai",
		"pan_number":          "ABCDE1234F",
		"position_applied":    "Backend Engineer",
		"preferred_work_mode": "Remote",
		"key_skills":          "Go, SQL",
		"expected_salary":     "600000",
		"why_hire_me":         "I ship",
		"experience_level":    level,
		"educations":          "[" + education + "]",
	}
}

func (env *testEnv) submit(t *testing.T, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range []string{"pan_card", "resume", "photo"} {
		fw, err := mw.CreateFormFile(name, name+".pdf")
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/applications/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeApplication(t *testing.T, w *httptest.ResponseRecorder) application.Application {
	t.Helper()
	var app application.Application
	require.NoError(t, json.NewDecoder(w.Body).Decode(&app))
	return app
}

func TestApplicationHandler(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t,
		[]interface{}{(*application.Application)(nil), (*application.Education)(nil), (*application.Experience)(nil)},
		db.Index{Table: "application_education", Column: "application_id"},
		db.Index{Table: "application_experience", Column: "application_id"},
	)
	tables := []string{"applications", "application_education", "application_experience"}

	t.Run("Submit_FresherWithoutExperience", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		w := env.submit(t, formFields(1, "fresher"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		app := decodeApplication(t, w)
		assert.NotZero(t, app.ID)
		assert.Equal(t, "Asha Rao", app.FullName)
		assert.Equal(t, application.StatusPending, app.Status)
		assert.Len(t, app.Educations, 1)
		assert.NotNil(t, app.Experiences)
		assert.Empty(t, app.Experiences)
		assert.True(t, strings.HasPrefix(app.ResumeFile, "uploads/job_applications/"))
		assert.True(t, env.store.Exists(app.ResumeFile))
		assert.Equal(t, []string{events.ApplicationSubmitted}, env.publisher.Types())
	})

	t.Run("Submit_ExperiencedWithoutExperience", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		w := env.submit(t, formFields(1, "experienced"))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		fields := formFields(1, "experienced")
		fields["experience"] = "[]"
		w = env.submit(t, fields)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		assert.Equal(t, 0, testdb.CountRows(t, pgContainer.DB, "applications"))
		assert.Empty(t, env.publisher.Events)
	})

	t.Run("Submit_CollapsesDuplicateChildren", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		fields := formFields(1, "experienced")
		fields["educations"] = `[` + education + `,{"highest_qualification":" b.e ","specialization":"cse","university":"ANNA","college":"ceg","year_of_passing":2020}]`
		fields["experience"] = `[
			{"previous_company":"Acme","previous_role":"Engineer","date_of_joining":"2020-01-01","relieving_date":"2022-12-31"},
			{"previous_company":"ACME","previous_role":"engineer","date_of_joining":"2020-01-01","relieving_date":"2022-12-31"}
		]`

		w := env.submit(t, fields)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		app := decodeApplication(t, w)
		require.Len(t, app.Experiences, 1)
		assert.Equal(t, "Acme", app.Experiences[0].PreviousCompany)
		assert.Len(t, app.Educations, 1)
		assert.Equal(t, 1, testdb.CountRows(t, pgContainer.DB, "application_education"))
		assert.Equal(t, 1, testdb.CountRows(t, pgContainer.DB, "application_experience"))
	})

	t.Run("Submit_RejectsBadInput", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		fields := formFields(1, "fresher")
		fields["educations"] = `[{"college":"CEG"}]`
		assert.Equal(t, http.StatusBadRequest, env.submit(t, fields).Code)

		fields = formFields(1, "fresher")
		fields["educations"] = `not json`
		assert.Equal(t, http.StatusBadRequest, env.submit(t, fields).Code)

		fields = formFields(1, "fresher")
		fields["educations"] = `[]`
		assert.Equal(t, http.StatusBadRequest, env.submit(t, fields).Code)

		w := env.submit(t, formFields(99, "fresher"))
		assert.Equal(t, http.StatusNotFound, w.Code)

		assert.Equal(t, 0, testdb.CountRows(t, pgContainer.DB, "applications"))
	})

	t.Run("List_StatsIgnoreStatusFilter", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		var ids []int
		for i := 0; i < 3; i++ {
			w := env.submit(t, formFields(1, "fresher"))
			require.Equal(t, http.StatusCreated, w.Code)
			ids = append(ids, decodeApplication(t, w).ID)
		}
		require.Equal(t, http.StatusCreated, env.submit(t, formFields(2, "fresher")).Code)

		w := env.do(t, http.MethodPatch, fmt.Sprintf("/admin/applications/%d/status", ids[0]), `{"status":"Shortlisted"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/admin/applications/?job_id=1&status=Pending", "")
		require.Equal(t, http.StatusOK, w.Code)

		var result application.ListResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Len(t, result.Applications, 2)
		for _, app := range result.Applications {
			assert.Equal(t, application.StatusPending, app.Status)
			assert.Equal(t, 1, app.JobID)
		}
		assert.Equal(t, 2, result.Stats.Total)
		assert.Equal(t, 2, result.Stats.Pending)
		assert.Equal(t, 1, result.Stats.Shortlisted)

		sum := 0
		for _, n := range result.Stats.ByStatus {
			sum += n
		}
		assert.Equal(t, 3, sum)
	})

	t.Run("UpdateStatus_AnyTransition", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		w := env.submit(t, formFields(1, "fresher"))
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeApplication(t, w).ID

		w = env.do(t, http.MethodPatch, fmt.Sprintf("/admin/applications/%d/status?status=Rejected", id), "")
		require.Equal(t, http.StatusOK, w.Code)
		var change application.StatusChange
		require.NoError(t, json.NewDecoder(w.Body).Decode(&change))
		assert.Equal(t, "Pending", change.OldStatus)
		assert.Equal(t, "Rejected", change.NewStatus)

		w = env.do(t, http.MethodPatch, fmt.Sprintf("/admin/applications/%d/status", id), `{"status":"Pending"}`)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&change))
		assert.Equal(t, "Rejected", change.OldStatus)
		assert.Equal(t, "Pending", change.NewStatus)

		w = env.do(t, http.MethodPatch, fmt.Sprintf("/admin/applications/%d/status", id), "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, http.MethodPatch, "/admin/applications/99999/status?status=Maybe", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete_RemovesFilesAndChildren", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		w := env.submit(t, formFields(1, "fresher"))
		require.Equal(t, http.StatusCreated, w.Code)
		app := decodeApplication(t, w)

		require.NoError(t, env.store.Remove(app.PhotoFile))

		w = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/applications/%d", app.ID), "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, env.store.Exists(app.PanCardFile))
		assert.False(t, env.store.Exists(app.ResumeFile))
		assert.Equal(t, 0, testdb.CountRows(t, pgContainer.DB, "applications"))
		assert.Equal(t, 0, testdb.CountRows(t, pgContainer.DB, "application_education"))

		w = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/applications/%d", app.ID), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeleteMany_SkipsUnknownIDs", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		var apps []application.Application
		for i := 0; i < 3; i++ {
			w := env.submit(t, formFields(1, "fresher"))
			require.Equal(t, http.StatusCreated, w.Code)
			apps = append(apps, decodeApplication(t, w))
		}

		w := env.do(t, http.MethodDelete, "/admin/applications/bulk", fmt.Sprintf("[%d, %d, 99999]", apps[0].ID, apps[1].ID))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"deleted":2`)
		assert.False(t, env.store.Exists(apps[0].ResumeFile))

		w = env.do(t, http.MethodDelete, "/admin/applications/bulk", fmt.Sprintf(`{"application_ids":[%d]}`, apps[2].ID))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"deleted":1`)

		assert.Equal(t, 0, testdb.CountRows(t, pgContainer.DB, "applications"))
	})

	t.Run("GetAndListAll", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		w := env.submit(t, formFields(1, "fresher"))
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeApplication(t, w).ID

		w = env.do(t, http.MethodGet, fmt.Sprintf("/admin/applications/%d", id), "")
		require.Equal(t, http.StatusOK, w.Code)
		got := decodeApplication(t, w)
		assert.Len(t, got.Educations, 1)
		assert.Equal(t, "1998-02-14", got.DateOfBirth.String())

		w = env.do(t, http.MethodGet, "/admin/applications/all?limit=10", "")
		require.Equal(t, http.StatusOK, w.Code)
		var all []application.Application
		require.NoError(t, json.NewDecoder(w.Body).Decode(&all))
		assert.Len(t, all, 1)

		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/admin/applications/all?limit=101", "").Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/admin/applications/99999", "").Code)
	})
}
