package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kishorebabuysk/VF-Backend/common/httputil"
)

type contextKey string

// AdminKey is the context key for the authenticated admin
const AdminKey contextKey = "admin"

// AdminLookup resolves the admin named by a token subject.
type AdminLookup interface {
	GetActiveByEmail(ctx context.Context, email string) (*Admin, error)
}

// Guard validates the bearer token and requires a live, active admin record.
func Guard(issuer *TokenIssuer, admins AdminLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				logger.WarnContext(r.Context(), "missing bearer token", "path", r.URL.Path)
				unauthorized(w)
				return
			}

			claims, err := issuer.Verify(token)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid token", "error", err)
				unauthorized(w)
				return
			}

			admin, err := admins.GetActiveByEmail(r.Context(), claims.Subject)
			if err != nil {
				logger.WarnContext(r.Context(), "token subject rejected", "email", claims.Subject, "error", err)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httputil.RespondWithError(w, http.StatusUnauthorized, ErrInvalidToken.Error())
}

// WithAdmin stores admin in ctx
func WithAdmin(ctx context.Context, admin *Admin) context.Context {
	return context.WithValue(ctx, AdminKey, admin)
}

// AdminFromContext extracts the authenticated admin from context
func AdminFromContext(ctx context.Context) (*Admin, bool) {
	admin, ok := ctx.Value(AdminKey).(*Admin)
	return admin, ok && admin != nil
}
