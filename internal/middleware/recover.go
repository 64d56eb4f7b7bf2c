package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
)

// Recover recovers from panics in status handlers and logs them with the
// request ID, which is also returned to the caller for correlation.
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				// Recover wraps RequestID, so the ID is on the response, not in r.
				requestID := w.Header().Get("X-Request-ID")

				m.log.Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Str("request_id", requestID).
					Msg("panic recovered")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"code":       "internal_error",
						"message":    "An unexpected error occurred",
						"request_id": requestID,
					},
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
