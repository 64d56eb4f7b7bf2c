package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/workoutnotifier/workout-notifier/internal/job"
	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Scheduler is the part of job.Scheduler the status server drives.
type Scheduler interface {
	Spec() string
	Location() *time.Location
	NextRuns(n int) ([]time.Time, error)
	DispatchAsync(ctx context.Context) (string, error)
}

// Handler holds the status server's HTTP handlers
type Handler struct {
	sched   Scheduler
	tracker *job.Tracker
	log     *logger.Logger
}

// New creates a new Handler instance
func New(sched Scheduler, tracker *job.Tracker, log *logger.Logger) *Handler {
	return &Handler{
		sched:   sched,
		tracker: tracker,
		log:     log.WithComponent("handler"),
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}
