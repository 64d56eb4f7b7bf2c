package workoutnotifier

import "time"

// Health is the daemon's health report.
type Health struct {
	Status      string    `json:"status"`
	Version     string    `json:"version"`
	Schedule    string    `json:"schedule"`
	Timezone    string    `json:"timezone"`
	Runs        RunCounts `json:"runs"`
	LastRun     *Run      `json:"last_run,omitempty"`
	LastSuccess *Run      `json:"last_success,omitempty"`
}

// Healthy reports whether the latest run, if any, succeeded.
func (h *Health) Healthy() bool {
	return h.Status == "healthy"
}

// RunCounts counts the runs since the daemon started.
type RunCounts struct {
	Total  int `json:"total"`
	Failed int `json:"failed"`
}

// Run is a finished run.
type Run struct {
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger"`
	Status     string    `json:"status"`
	Stage      string    `json:"stage,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Dispatched acknowledges a manual run started by the daemon.
type Dispatched struct {
	Status  string `json:"status"`
	Trigger string `json:"trigger"`
	RunID   string `json:"run_id"`
}

// Upcoming lists the next fire times of a schedule.
type Upcoming struct {
	Schedule string      `json:"schedule"`
	Timezone string      `json:"timezone"`
	Next     []time.Time `json:"next"`
}
