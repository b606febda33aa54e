package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/logger"
	"github.com/kishorebabuysk/VF-Backend/common/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type fakeDB struct{ err error }

func (f *fakeDB) PingContext(context.Context) error { return f.err }

func setup() (*fakeDB, *Checker, chi.Router) {
	db := &fakeDB{}
	checker := NewChecker(db, metrics.NewMock(), logger.Discard())
	router := chi.NewRouter()
	NewHandler(checker).RegisterRoutes(router)
	return db, checker, router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandler(t *testing.T) {
	db, _, router := setup()

	w := get(router, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"backend running"}`, w.Body.String())

	w = get(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(router, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	db.err = errors.New("connection refused")
	w = get(router, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "unavailable", resp.Status)
}

func TestChecker_GRPCStatusFollowsDatabase(t *testing.T) {
	db, checker, _ := setup()
	ctx := context.Background()

	status := func() grpc_health_v1.HealthCheckResponse_ServingStatus {
		resp, err := checker.HealthServer().Check(ctx, &grpc_health_v1.HealthCheckRequest{})
		require.NoError(t, err)
		return resp.Status
	}

	require.NoError(t, checker.Check(ctx))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status())

	db.err = errors.New("down")
	assert.Error(t, checker.Check(ctx))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status())
}

func TestChecker_StartHealthChecksStopsOnCancel(t *testing.T) {
	_, checker, _ := setup()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		checker.StartHealthChecks(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("health checks did not stop")
	}
}
