// Package job runs the notifier pipeline once per trigger, either on a cron
// schedule or on manual dispatch.
package job

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

// Trigger identifies what started a run.
type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
)

// Stage is the half of a run a failure happened in.
type Stage string

const (
	StagePrepare Stage = "prepare"
	StageInvoke  Stage = "invoke"
)

// Status is the reported outcome of a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

var errNoTask = errors.New("job: prepare returned no task")

// Task is the invoked work of a run.
type Task func(ctx context.Context) error

// PrepareFunc provisions a fresh Task for a single run. It is called once per
// run so that no state is shared between runs.
type PrepareFunc func(ctx context.Context, log *logger.Logger) (Task, error)

// Result describes a finished run.
type Result struct {
	RunID      string
	Trigger    Trigger
	StartedAt  time.Time
	FinishedAt time.Time
	// Stage is the stage that failed, or StageInvoke on success.
	Stage Stage
	Err   error
}

// Status maps the run error to success or failure.
func (r Result) Status() Status {
	if r.Err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// ExitCode is the process exit code that reports this result.
func (r Result) ExitCode() int {
	if r.Err != nil {
		return 1
	}
	return 0
}

// Duration is how long the run took.
func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Runner executes runs. It adds no validation of its own: whatever the
// prepared task decides is the outcome of the run.
type Runner struct {
	prepare PrepareFunc
	timeout time.Duration
	log     *logger.Logger
	now     func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.timeout = d }
}

// NewRunner creates a new Runner.
func NewRunner(prepare PrepareFunc, log *logger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		prepare: prepare,
		log:     log.WithComponent("job"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one run for trigger: prepare, then invoke. A prepare failure
// aborts the run before the task is invoked.
func (r *Runner) Run(ctx context.Context, trigger Trigger) Result {
	return r.run(ctx, trigger, uuid.NewString())
}

func (r *Runner) run(ctx context.Context, trigger Trigger, runID string) Result {
	res := Result{
		RunID:     runID,
		Trigger:   trigger,
		StartedAt: r.now(),
		Stage:     StagePrepare,
	}
	log := r.log.WithRun(res.RunID, string(trigger))

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	log.Info().Msg("run started")

	task, err := r.prepare(ctx, log)
	if err == nil && task == nil {
		err = errNoTask
	}
	if err == nil {
		res.Stage = StageInvoke
		err = task(ctx)
	}

	res.Err = err
	res.FinishedAt = r.now()
	log.RunFinished(string(res.Status()), string(res.Stage), res.Duration(), res.Err)

	return res
}
