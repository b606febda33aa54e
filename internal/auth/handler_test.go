package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/logger"
	"github.com/kishorebabuysk/VF-Backend/common/metrics"
	"github.com/kishorebabuysk/VF-Backend/internal/auth"
	"github.com/kishorebabuysk/VF-Backend/internal/events"
	appmetrics "github.com/kishorebabuysk/VF-Backend/internal/metrics"
	"github.com/kishorebabuysk/VF-Backend/testing/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func passthrough(next http.Handler) http.Handler { return next }

type testEnv struct {
	router    chi.Router
	service   auth.Service
	publisher *events.Recorder
}

func setupTest(t *testing.T, database *bun.DB) *testEnv {
	t.Helper()

	log := logger.Discard()
	issuer, err := auth.NewTokenIssuer("integration-secret", "HS256", time.Hour)
	require.NoError(t, err)

	publisher := &events.Recorder{}
	repo := auth.NewRepository(database, metrics.NewMock())
	service := auth.NewService(repo, issuer, publisher, log, auth.Options{})
	handler := auth.NewHandler(service, log, appmetrics.NewMock())

	router := chi.NewRouter()
	handler.RegisterRoutes(router, auth.Guard(issuer, repo, log), passthrough)

	return &testEnv{router: router, service: service, publisher: publisher}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) login(t *testing.T, email, password string) (string, int) {
	t.Helper()

	w := env.do(t, http.MethodPost, "/admin/login", "", map[string]string{"email": email, "password": password})
	if w.Code != http.StatusOK {
		return "", w.Code
	}
	var resp auth.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken, w.Code
}

func TestAuthHandler(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, []interface{}{(*auth.Admin)(nil)})
	ctx := context.Background()

	t.Run("Login_SuccessAndFailure", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "admins")
		env := setupTest(t, pgContainer.DB)

		_, err := env.service.CreateAdmin(ctx, "Admin@Example.com", "s3cretpass", "Ops")
		require.NoError(t, err)

		token, code := env.login(t, "admin@example.com", "s3cretpass")
		assert.Equal(t, http.StatusOK, code)
		assert.NotEmpty(t, token)

		_, code = env.login(t, "admin@example.com", "wrong-password")
		assert.Equal(t, http.StatusUnauthorized, code)

		_, code = env.login(t, "nobody@example.com", "s3cretpass")
		assert.Equal(t, http.StatusUnauthorized, code)

		w := env.do(t, http.MethodGet, "/admin/me", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"email":"admin@example.com"`)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("CreateAdmin_DuplicateEmail", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "admins")
		env := setupTest(t, pgContainer.DB)

		_, err := env.service.CreateAdmin(ctx, "dup@example.com", "password123", "")
		require.NoError(t, err)
		_, err = env.service.CreateAdmin(ctx, "dup@example.com", "password123", "")
		assert.ErrorIs(t, err, auth.ErrEmailExists)
	})

	t.Run("Deactivated_AdminLosesAccess", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "admins")
		env := setupTest(t, pgContainer.DB)

		_, err := env.service.CreateAdmin(ctx, "ops@example.com", "password123", "")
		require.NoError(t, err)
		token, _ := env.login(t, "ops@example.com", "password123")

		require.NoError(t, env.service.DeactivateAdmin(ctx, "ops@example.com"))

		w := env.do(t, http.MethodGet, "/admin/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		_, code := env.login(t, "ops@example.com", "password123")
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("ChangePassword", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "admins")
		env := setupTest(t, pgContainer.DB)

		_, err := env.service.CreateAdmin(ctx, "admin@example.com", "oldpassword", "")
		require.NoError(t, err)
		token, _ := env.login(t, "admin@example.com", "oldpassword")

		w := env.do(t, http.MethodPost, "/admin/change-password", token, map[string]string{
			"current_password": "not-it", "new_password": "newpassword", "confirm_password": "newpassword",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, http.MethodPost, "/admin/change-password", token, map[string]string{
			"current_password": "oldpassword", "new_password": "newpassword", "confirm_password": "different1",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, http.MethodPost, "/admin/change-password", token, map[string]string{
			"current_password": "oldpassword", "new_password": "newpassword", "confirm_password": "newpassword",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		_, code := env.login(t, "admin@example.com", "newpassword")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("ForgotVerifyReset_Flow", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "admins")
		env := setupTest(t, pgContainer.DB)

		_, err := env.service.CreateAdmin(ctx, "admin@example.com", "oldpassword", "")
		require.NoError(t, err)

		w := env.do(t, http.MethodPost, "/admin/forgot-password", "", map[string]string{"email": "missing@example.com"})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(t, http.MethodPost, "/admin/forgot-password", "", map[string]string{"email": "admin@example.com"})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, []string{events.AdminOTPRequested}, env.publisher.Types())
		otp := env.publisher.Events[0].Payload.(auth.OTPRequestedEvent).OTP
		require.Len(t, otp, 6)

		wrong := "000000"
		if otp == wrong {
			wrong = "111111"
		}
		w = env.do(t, http.MethodPost, "/admin/verify-otp", "", map[string]string{"email": "admin@example.com", "otp": wrong})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid otp")

		w = env.do(t, http.MethodPost, "/admin/verify-otp", "", map[string]string{"email": "admin@example.com", "otp": otp})
		require.Equal(t, http.StatusOK, w.Code)
		var verified struct {
			ResetToken string `json:"reset_token"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&verified))
		require.NotEmpty(t, verified.ResetToken)

		w = env.do(t, http.MethodPost, "/admin/reset-password", "", map[string]string{"token": "bogus", "new_password": "brandnewpass"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, http.MethodPost, "/admin/reset-password", "", map[string]string{"token": verified.ResetToken, "new_password": "brandnewpass"})
		assert.Equal(t, http.StatusOK, w.Code)

		_, code := env.login(t, "admin@example.com", "brandnewpass")
		assert.Equal(t, http.StatusOK, code)

		// token is single use
		w = env.do(t, http.MethodPost, "/admin/reset-password", "", map[string]string{"token": verified.ResetToken, "new_password": "anotherpass"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("VerifyOTP_Expired", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "admins")
		env := setupTest(t, pgContainer.DB)

		admin, err := env.service.CreateAdmin(ctx, "admin@example.com", "oldpassword", "")
		require.NoError(t, err)

		repo := auth.NewRepository(pgContainer.DB, metrics.NewMock())
		require.NoError(t, repo.SetOTP(ctx, admin.ID, "123456", time.Now().Add(-time.Minute)))

		w := env.do(t, http.MethodPost, "/admin/verify-otp", "", map[string]string{"email": "admin@example.com", "otp": "123456"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "otp expired")
	})
}
