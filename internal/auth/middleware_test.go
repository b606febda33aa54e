package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kishorebabuysk/VF-Backend/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup map[string]*Admin

func (f fakeLookup) GetActiveByEmail(_ context.Context, email string) (*Admin, error) {
	admin, ok := f[email]
	if !ok || !admin.IsActive {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

func TestGuard(t *testing.T) {
	issuer := newTestIssuer(t)
	admins := fakeLookup{
		"active@example.com":   {ID: 1, Email: "active@example.com", IsActive: true},
		"disabled@example.com": {ID: 2, Email: "disabled@example.com", IsActive: false},
	}

	var seen *Admin
	protected := Guard(issuer, admins, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AdminFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		return w
	}

	t.Run("active admin", func(t *testing.T) {
		token, err := issuer.Issue("active@example.com")
		require.NoError(t, err)

		w := call("Bearer " + token)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, 1, seen.ID)
	})

	t.Run("missing header", func(t *testing.T) {
		w := call("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"error":"invalid or expired token"}`, w.Body.String())
	})

	t.Run("wrong scheme", func(t *testing.T) {
		token, _ := issuer.Issue("active@example.com")
		assert.Equal(t, http.StatusUnauthorized, call("Basic "+token).Code)
	})

	t.Run("inactive admin", func(t *testing.T) {
		token, _ := issuer.Issue("disabled@example.com")
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+token).Code)
	})

	t.Run("unknown admin", func(t *testing.T) {
		token, _ := issuer.Issue("ghost@example.com")
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+token).Code)
	})
}
