package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"planets-tableau/internal/shared/requestid"

	"github.com/segmentio/ksuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a KSUID, reusing an incoming
// X-Request-ID when present, and logs the completed request.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = ksuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := requestid.NewContext(r.Context(), id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))

		slog.Debug("Request completed",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
