package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/paytaksi/paytaksi-backend/api/responses"
	pkgerrors "github.com/paytaksi/paytaksi-backend/pkg/errors"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimit guards mutating requests with a fixed window per method and path.
// The path carries the actor's id, so the window is effectively per caller.
// The limiter failing open keeps the API available when Redis is not.
func RateLimit(limiter rateLimiter, logg *logger.Logger, limit int64, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			scope := r.Method + "|" + strings.TrimSuffix(r.URL.Path, "/")
			allowed, count, err := limiter.FixedWindowAllow(r.Context(), scope, limit, window)
			if err != nil {
				logError(r.Context(), logg, "rate limit check failed", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimited, "request rate limit exceeded").
					WithDetails(map[string]any{
						"limit":          limit,
						"window_seconds": int(window.Seconds()),
						"count":          count,
					}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
