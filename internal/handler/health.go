package handler

import (
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string       `json:"status"`
	Version     string       `json:"version"`
	Schedule    string       `json:"schedule"`
	Timezone    string       `json:"timezone"`
	Runs        RunCounts    `json:"runs"`
	LastRun     *RunResponse `json:"last_run,omitempty"`
	LastSuccess *RunResponse `json:"last_success,omitempty"`
}

// RunCounts counts the runs since the daemon started
type RunCounts struct {
	Total  int `json:"total"`
	Failed int `json:"failed"`
}

// Health reports the daemon's schedule and the outcome of the latest run.
// The status is degraded while the latest run has failed.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.tracker.Stats()

	status := "healthy"
	if stats.Last != nil && stats.Last.Err != nil {
		status = "degraded"
	}

	resp := HealthResponse{
		Status:   status,
		Version:  Version,
		Schedule: h.sched.Spec(),
		Timezone: h.sched.Location().String(),
		Runs:     RunCounts{Total: stats.Total, Failed: stats.Failed},
	}
	if stats.Last != nil {
		last := newRunResponse(*stats.Last)
		resp.LastRun = &last
	}
	if stats.LastSuccess != nil {
		ok := newRunResponse(*stats.LastSuccess)
		resp.LastSuccess = &ok
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// Ready returns whether the daemon is up. A failed run does not make it unready.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
