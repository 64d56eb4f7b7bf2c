package job

import "sync"

// Tracker keeps run outcomes in memory for the lifetime of the process. It is
// safe for concurrent use and is meant to be passed to WithResultHandler.
type Tracker struct {
	mu          sync.RWMutex
	total       int
	failed      int
	last        *Result
	lastSuccess *Result
}

// Stats is a point-in-time copy of a Tracker.
type Stats struct {
	Total       int
	Failed      int
	Last        *Result
	LastSuccess *Result
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record stores the outcome of a finished run.
func (t *Tracker) Record(res Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	if res.Err != nil {
		t.failed++
	} else {
		ok := res
		t.lastSuccess = &ok
	}

	// Overlapping runs may finish out of order.
	if t.last == nil || !res.FinishedAt.Before(t.last.FinishedAt) {
		last := res
		t.last = &last
	}
}

// Stats returns a snapshot of the recorded runs.
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Stats{Total: t.total, Failed: t.failed}
	if t.last != nil {
		last := *t.last
		s.Last = &last
	}
	if t.lastSuccess != nil {
		ok := *t.lastSuccess
		s.LastSuccess = &ok
	}
	return s
}
