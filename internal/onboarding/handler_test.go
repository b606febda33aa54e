package onboarding_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kishorebabuysk/VF-Backend/common/logger"
	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/db"
	"github.com/kishorebabuysk/VF-Backend/internal/events"
	appmetrics "github.com/kishorebabuysk/VF-Backend/internal/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/onboarding"
	"github.com/kishorebabuysk/VF-Backend/internal/storage"
	"github.com/kishorebabuysk/VF-Backend/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func passthrough(next http.Handler) http.Handler { return next }

type testEnv struct {
	router    chi.Router
	store     *storage.Store
	publisher *events.Recorder
}

func setupTest(database *bun.DB) *testEnv {
	log := logger.Discard()
	store := storage.New(afero.NewMemMapFs(), log)
	publisher := &events.Recorder{}

	repo := onboarding.NewRepository(database, metrics.NewMock())
	service := onboarding.NewService(repo, store, publisher, log)
	handler := onboarding.NewHandler(service, log, appmetrics.NewMock(), 0)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, passthrough, passthrough)
	return &testEnv{router: router, store: store, publisher: publisher}
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) upload(t *testing.T, id int, docTypes []string, files []string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, dt := range docTypes {
		require.NoError(t, mw.WriteField("document_types", dt))
	}
	for _, name := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/admin/onboarding/%d/upload-documents", id), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func payload(email, aadhar, experienceType string) map[string]interface{} {
	return map[string]interface{}{
		"name":                  "Ravi Kumar",
		"dob":                   "1996-08-20",
		"gender":                "Male",
		"aadhar_number":         aadhar,
		"communication_address": "12 Anna Salai, Chennai",
		"permanent_address":     "12 Anna Salai, Chennai",
		"mobile_number":         "9876543210",
		"email":                 email,
		"emergency_contact1":    "9123456780",
		"applied_role":          "Support Engineer",
		"experience_type":       experienceType,
		"nominees": []map[string]interface{}{
			{"nominee_type": "PF", "name": "Lakshmi", "dob": "1970-03-03", "relationship_type": "Mother"},
		},
		"family": []map[string]interface{}{
			{"name": "Lakshmi", "dob": "1970-03-03", "relationship_type": "Mother"},
			{"name": "Raman", "dob": "1965-01-10", "relationship_type": "Father"},
		},
		"bank": map[string]interface{}{
			"account_name": "Ravi Kumar", "account_number": "0012345", "ifsc_code": "SBIN0000123", "branch_name": "Adyar",
		},
		"references": []map[string]interface{}{
			{"name": "Priya", "designation": "Lead", "phone": "9000000000", "last_employer": "Acme", "relationship_with_candidate": "Manager"},
		},
		"checklist": map[string]interface{}{
			"experience_type": experienceType, "aadhar_card": true, "pan_card": true,
		},
	}
}

var tables = []string{
	"onboarding", "onboarding_documents", "onboarding_nominees", "onboarding_family",
	"onboarding_bank", "onboarding_references", "onboarding_checklist", "onboarding_experience_details",
}

func createOnboarding(t *testing.T, env *testEnv, email, aadhar string) onboarding.Onboarding {
	t.Helper()
	w := env.do(t, http.MethodPost, "/admin/onboarding/", payload(email, aadhar, "fresher"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var o onboarding.Onboarding
	require.NoError(t, json.NewDecoder(w.Body).Decode(&o))
	return o
}

func TestOnboardingHandler(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t,
		[]interface{}{
			(*onboarding.Onboarding)(nil),
			(*onboarding.Document)(nil),
			(*onboarding.Nominee)(nil),
			(*onboarding.FamilyMember)(nil),
			(*onboarding.Bank)(nil),
			(*onboarding.Reference)(nil),
			(*onboarding.Checklist)(nil),
			(*onboarding.ExperienceDetails)(nil),
		},
		db.Index{Table: "onboarding_documents", Column: "onboarding_id"},
		db.Index{Table: "onboarding_nominees", Column: "onboarding_id"},
	)

	t.Run("Create_FullComposite", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		o := createOnboarding(t, env, "ravi@example.com", "123412341234")

		assert.NotZero(t, o.ID)
		assert.Equal(t, onboarding.StatusPending, o.Status)
		assert.Len(t, o.Nominees, 1)
		assert.Len(t, o.Family, 2)
		require.NotNil(t, o.Bank)
		assert.Equal(t, "SBIN0000123", o.Bank.IFSCCode)
		require.NotNil(t, o.Checklist)
		assert.True(t, o.Checklist.AadharCard)
		assert.Nil(t, o.ExperienceDetails)
		assert.Equal(t, []string{events.OnboardingSubmitted}, env.publisher.Types())

		w := env.do(t, http.MethodGet, fmt.Sprintf("/admin/onboarding/%d", o.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got onboarding.Onboarding
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Len(t, got.Family, 2)
		assert.Len(t, got.References, 1)
		require.NotNil(t, got.Bank)
		assert.Nil(t, got.ExperienceDetails)
	})

	t.Run("Create_DuplicateIdentityConflicts", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		createOnboarding(t, env, "ravi@example.com", "123412341234")

		w := env.do(t, http.MethodPost, "/admin/onboarding/", payload("RAVI@example.com", "999999999999", "fresher"))
		assert.Equal(t, http.StatusConflict, w.Code)

		w = env.do(t, http.MethodPost, "/admin/onboarding/", payload("other@example.com", "123412341234", "fresher"))
		assert.Equal(t, http.StatusConflict, w.Code)

		for _, table := range tables {
			expected := map[string]int{
				"onboarding": 1, "onboarding_nominees": 1, "onboarding_family": 2,
				"onboarding_bank": 1, "onboarding_references": 1, "onboarding_checklist": 1,
			}[table]
			assert.Equal(t, expected, testdb.CountRows(t, pgContainer.DB, table), table)
		}
	})

	t.Run("Create_ExperiencedNeedsDetails", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		body := payload("exp@example.com", "555555555555", "experienced")
		w := env.do(t, http.MethodPost, "/admin/onboarding/", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, 0, testdb.CountRows(t, pgContainer.DB, "onboarding"))

		body["experience_details"] = map[string]interface{}{
			"company_name": "Acme", "job_role": "Dev", "date_of_joining": "2019-01-01",
			"date_of_exit": "2023-03-31", "total_experience": "4 years", "uan_number": "UAN1",
		}
		w = env.do(t, http.MethodPost, "/admin/onboarding/", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, 1, testdb.CountRows(t, pgContainer.DB, "onboarding_experience_details"))
	})

	t.Run("Create_Invalid", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		body := payload("not-an-email", "1", "fresher")
		delete(body, "name")
		w := env.do(t, http.MethodPost, "/admin/onboarding/", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "email")
		assert.Contains(t, w.Body.String(), "name")
	})

	t.Run("Create_ForeignDocumentPathRejected", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		body := payload("ravi@example.com", "123412341234", "fresher")
		body["documents"] = []map[string]interface{}{
			{"document_type": "pan", "file_path": "uploads/csr/abc.png"},
		}
		w := env.do(t, http.MethodPost, "/admin/onboarding/", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "file_path")
		assert.Equal(t, 0, testdb.CountRows(t, pgContainer.DB, "onboarding"))
		assert.Empty(t, env.publisher.Types())
	})

	t.Run("Update_ReplacesSectionsKeepsDocuments", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		o := createOnboarding(t, env, "ravi@example.com", "123412341234")
		other := createOnboarding(t, env, "asha@example.com", "432143214321")
		require.Equal(t, http.StatusOK, env.upload(t, o.ID, []string{"aadhar"}, []string{"aadhar.pdf"}).Code)

		body := payload("ravi@example.com", "123412341234", "experienced")
		body["family"] = []map[string]interface{}{}
		body["experience_details"] = map[string]interface{}{
			"company_name": "Acme", "job_role": "Dev", "date_of_joining": "2019-01-01",
			"date_of_exit": "2023-03-31", "total_experience": "4 years",
		}
		w := env.do(t, http.MethodPut, fmt.Sprintf("/admin/onboarding/%d", o.ID), body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var updated onboarding.Onboarding
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, "experienced", updated.ExperienceType)
		assert.Empty(t, updated.Family)
		require.NotNil(t, updated.ExperienceDetails)
		assert.Len(t, updated.Documents, 1)
		assert.Equal(t, 1, testdb.CountRows(t, pgContainer.DB, "onboarding_documents"))
		assert.Equal(t, 2, testdb.CountRows(t, pgContainer.DB, "onboarding_family"))

		w = env.do(t, http.MethodPut, fmt.Sprintf("/admin/onboarding/%d", other.ID), payload("ravi@example.com", "432143214321", "fresher"))
		assert.Equal(t, http.StatusConflict, w.Code)

		w = env.do(t, http.MethodPut, "/admin/onboarding/99999", payload("x@example.com", "000000000000", "fresher"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UploadDocuments", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		o := createOnboarding(t, env, "ravi@example.com", "123412341234")

		w := env.upload(t, o.ID, []string{"aadhar", "pan", "photo"}, []string{"a.pdf", "p.pdf"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, testdb.CountRows(t, pgContainer.DB, "onboarding_documents"))

		w = env.upload(t, o.ID, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":0`)

		w = env.upload(t, 99999, []string{"aadhar"}, []string{"a.pdf"})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.upload(t, o.ID, []string{"aadhar", "pan"}, []string{"a.pdf", "p.pdf"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var uploaded onboarding.UploadResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&uploaded))
		require.Equal(t, 2, uploaded.Count)
		assert.Equal(t, "pan", uploaded.Documents[1].DocumentType)
		assert.Equal(t, "p.pdf", *uploaded.Documents[1].FileName)
		assert.True(t, env.store.Exists(uploaded.Documents[0].FilePath))

		w = env.do(t, http.MethodGet, fmt.Sprintf("/admin/onboarding/%d/documents", o.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var docs onboarding.DocumentsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&docs))
		assert.Equal(t, 2, docs.Count)
	})

	t.Run("Delete_RemovesDocumentsAndSections", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		o := createOnboarding(t, env, "ravi@example.com", "123412341234")
		w := env.upload(t, o.ID, []string{"aadhar"}, []string{"a.pdf"})
		require.Equal(t, http.StatusOK, w.Code)
		var uploaded onboarding.UploadResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&uploaded))

		w = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/onboarding/%d", o.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, env.store.Exists(uploaded.Documents[0].FilePath))
		for _, table := range tables {
			assert.Equal(t, 0, testdb.CountRows(t, pgContainer.DB, table), table)
		}

		w = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/onboarding/%d", o.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("BulkDelete", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, tables...)
		env := setupTest(pgContainer.DB)

		a := createOnboarding(t, env, "a@example.com", "111111111111")
		b := createOnboarding(t, env, "b@example.com", "222222222222")
		createOnboarding(t, env, "c@example.com", "333333333333")

		w := env.do(t, http.MethodDelete, "/admin/onboarding/bulk-delete?onboarding_ids=99998&onboarding_ids=99999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/onboarding/bulk-delete?onboarding_ids=%d&onboarding_ids=%d&onboarding_ids=99999", a.ID, b.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"deleted":2`)

		w = env.do(t, http.MethodGet, "/admin/onboarding/", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list []onboarding.Onboarding
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		require.Len(t, list, 1)
		assert.Equal(t, "c@example.com", list[0].Email)
	})
}
