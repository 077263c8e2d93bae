// internal/middleware/logging.go
//
// Request-scoped logger.
//
// Context
// -------
// Runs after chi's RequestID.  Each request gets a child of the base logger
// tagged with request_id, method, and path, stored in the context so
// handlers, the API client, and the register controller all log under the
// same ID.  One INFO line per request on completion.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/baraliresort/reserve/internal/logger"
)

// Logger attaches a request logger derived from base.
func Logger(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := base.With(
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

			l.Infow("request",
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
			)
		})
	}
}
