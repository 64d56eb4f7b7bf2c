package router

import (
	"net/http"

	"github.com/workoutnotifier/workout-notifier/internal/handler"
	"github.com/workoutnotifier/workout-notifier/internal/middleware"
)

// New creates the status server's HTTP router
func New(h *handler.Handler, mw *middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	mux.HandleFunc("POST /api/v1/runs", h.DispatchRun)
	mux.HandleFunc("GET /api/v1/runs/last", h.LastRun)
	mux.HandleFunc("GET /api/v1/runs/next", h.NextRuns)

	var handler http.Handler = mux
	handler = mw.Logger(handler)
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
