package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"planets-tableau/internal/shared/errors"
	"planets-tableau/internal/shared/response"
)

const AdminTokenHeader = "X-Admin-Token"

// RequireAdmin guards operator endpoints with a shared token. An empty token
// leaves the endpoints open, which is only meant for local development.
func RequireAdmin(token string) func(http.Handler) http.Handler {
	if token == "" {
		slog.Warn("Admin token not configured, admin endpoints are unprotected", "middleware", "admin")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			logger := slog.With(
				"middleware", "admin",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			given := r.Header.Get(AdminTokenHeader)
			if given == "" {
				response.Error(w, r, logger, errors.Unauthorized("admin token required"))
				return
			}

			if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				logger.Warn("Invalid admin token")
				response.Error(w, r, logger, errors.Forbidden("admin access required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
