package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/workoutnotifier/workout-notifier/internal/job"
	"github.com/workoutnotifier/workout-notifier/internal/middleware"
)

const maxNextRuns = 50

// RunResponse is the JSON form of a finished run
type RunResponse struct {
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger"`
	Status     string    `json:"status"`
	Stage      string    `json:"stage,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
}

func newRunResponse(res job.Result) RunResponse {
	out := RunResponse{
		RunID:      res.RunID,
		Trigger:    string(res.Trigger),
		Status:     string(res.Status()),
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		DurationMS: res.Duration().Milliseconds(),
	}
	if res.Err != nil {
		out.Stage = string(res.Stage)
		out.Error = res.Err.Error()
	}
	return out
}

// DispatchRun starts a manual run in the background and returns its run ID
// without waiting for it.
func (h *Handler) DispatchRun(w http.ResponseWriter, r *http.Request) {
	// The run must outlive the request.
	runID, err := h.sched.DispatchAsync(context.WithoutCancel(r.Context()))
	if errors.Is(err, job.ErrStopped) {
		writeError(w, http.StatusServiceUnavailable, "shutting_down", "The scheduler is shutting down")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("manual dispatch failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to dispatch run")
		return
	}

	h.log.Info().
		Str("run_id", runID).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Msg("manual dispatch requested over HTTP")

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "dispatched",
		"trigger": string(job.TriggerManual),
		"run_id":  runID,
	})
}

// LastRun returns the most recently finished run.
func (h *Handler) LastRun(w http.ResponseWriter, r *http.Request) {
	stats := h.tracker.Stats()
	if stats.Last == nil {
		writeError(w, http.StatusNotFound, "no_runs", "No run has finished yet")
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(*stats.Last))
}

// NextRuns lists upcoming fire times of the schedule. The count query
// parameter defaults to 5.
func (h *Handler) NextRuns(w http.ResponseWriter, r *http.Request) {
	count := 5
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxNextRuns {
			writeError(w, http.StatusBadRequest, "invalid_count", "count must be between 1 and 50")
			return
		}
		count = n
	}

	runs, err := h.sched.NextRuns(count)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to compute next runs")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute next runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schedule": h.sched.Spec(),
		"timezone": h.sched.Location().String(),
		"next":     runs,
	})
}
