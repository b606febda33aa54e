package contact_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/logger"
	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/contact"
	"github.com/kishorebabuysk/VF-Backend/internal/events"
	appmetrics "github.com/kishorebabuysk/VF-Backend/internal/metrics"
	"github.com/kishorebabuysk/VF-Backend/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func passthrough(next http.Handler) http.Handler { return next }

func setupRouter(database *bun.DB, publisher events.Publisher) chi.Router {
	log := logger.Discard()
	repo := contact.NewRepository(database, metrics.NewMock())
	handler := contact.NewHandler(contact.NewService(repo, publisher, log), log, appmetrics.NewMock())

	router := chi.NewRouter()
	handler.RegisterRoutes(router, passthrough, passthrough)
	return router
}

func do(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedContact(t *testing.T, database *bun.DB, name string, createdAt time.Time) *contact.Contact {
	t.Helper()
	c := &contact.Contact{Name: name, Email: name + "@example.com", Mobile: "9876543210", Message: "hi", CreatedAt: createdAt}
	_, err := database.NewInsert().Model(c).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return c
}

func TestContactHandler(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, []interface{}{(*contact.Contact)(nil)})
	publisher := &events.Recorder{}
	router := setupRouter(pgContainer.DB, publisher)

	t.Run("Create_Success", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "contacts")

		w := do(router, http.MethodPost, "/contact/", map[string]string{
			"name":    "Ravi",
			"email":   "Ravi@Example.com",
			"mobile":  "9876543210",
			"message": "Interested in partnering",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created contact.Contact
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, "ravi@example.com", created.Email)
		assert.Contains(t, publisher.Types(), events.ContactReceived)
	})

	t.Run("Create_Invalid", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "contacts")

		w := do(router, http.MethodPost, "/contact/", map[string]string{"name": "Ravi", "email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "email")
		assert.Equal(t, 0, testdb.CountRows(t, pgContainer.DB, "contacts"))
	})

	t.Run("List_NewestFirst", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "contacts")

		seedContact(t, pgContainer.DB, "old", time.Now().Add(-time.Hour))
		seedContact(t, pgContainer.DB, "new", time.Now())

		w := do(router, http.MethodGet, "/contact/", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var list []contact.Contact
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		require.Len(t, list, 2)
		assert.Equal(t, "new", list[0].Name)
	})

	t.Run("Delete", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "contacts")
		c := seedContact(t, pgContainer.DB, "gone", time.Now())

		w := do(router, http.MethodDelete, fmt.Sprintf("/contact/%d", c.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = do(router, http.MethodDelete, fmt.Sprintf("/contact/%d", c.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeleteMany", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "contacts")
		a := seedContact(t, pgContainer.DB, "a", time.Now())
		b := seedContact(t, pgContainer.DB, "b", time.Now())
		seedContact(t, pgContainer.DB, "c", time.Now())

		w := do(router, http.MethodDelete, "/contact/bulk", map[string]interface{}{
			"contact_ids": []int{a.ID, b.ID, 99999},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"deleted":2}`, w.Body.String())
		assert.Equal(t, 1, testdb.CountRows(t, pgContainer.DB, "contacts"))

		w = do(router, http.MethodDelete, "/contact/bulk", map[string]interface{}{"contact_ids": []int{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
