package middleware

import (
	"net/http"
	"runtime/debug"

	"gatehouse-hq/janus/pkg/telemetry/logging"
)

// Recovery recovers from panics in downstream handlers and returns a
// 500 without exposing internal details to the client. The panic and
// stack trace are logged for debugging.
func Recovery(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic in handler",
						"error", err,
						"request_id", GetRequestID(r.Context()),
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					WriteError(w, r, http.StatusInternalServerError,
						"internal_error", "An internal error occurred. Please try again later.")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
