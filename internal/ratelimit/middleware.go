package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kishorebabuysk/VF-Backend/common/httputil"
)

// Middleware limits requests per client IP and route. Limiter errors fail open.
func Middleware(limiter Limiter, limit int, window time.Duration, proxies *TrustedProxies, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 || window <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := proxies.ClientIP(r) + ":" + r.Method + ":" + r.URL.Path
			allowed, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				httputil.RespondWithError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
