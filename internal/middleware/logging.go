package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// pollPaths are polled by supervisors and logged at debug.
var pollPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger logs status server requests. Health polls stay at debug whatever
// their status; a degraded /health answers 503 until the next good run.
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		m.log.HTTPRequest(requestLevel(r.URL.Path, wrapped.statusCode),
			r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), GetRequestID(r.Context()))
	})
}

func requestLevel(path string, status int) zerolog.Level {
	switch {
	case pollPaths[path]:
		return zerolog.DebugLevel
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
