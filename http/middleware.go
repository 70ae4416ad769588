package http

import (
	"fmt"
	"net/http"

	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/auth"
	"github.com/sagarc03/s3manager/metrics"
)

// AuthMiddleware creates middleware that requires a verified bearer token and
// stores its subject as the caller's user id. A nil verifier rejects every
// request. Preflight requests pass through untouched.
func AuthMiddleware(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if verifier == nil {
				metrics.RecordAuthAttempt(false)
				HandleError(w, fmt.Errorf("auth: no verifier configured: %w", s3manager.ErrUnauthenticated))
				return
			}

			token := auth.BearerToken(r)
			if token == "" {
				metrics.RecordAuthAttempt(false)
				HandleError(w, fmt.Errorf("auth: missing bearer token: %w", s3manager.ErrUnauthenticated))
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				metrics.RecordAuthAttempt(false)
				HandleError(w, err)
				return
			}

			metrics.RecordAuthAttempt(true)
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), identity.UserID)))
		})
	}
}

// BodyLimitMiddleware caps request bodies at limit bytes. A non-positive
// limit disables the cap.
func BodyLimitMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
