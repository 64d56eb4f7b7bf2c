package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

// ErrStopped is returned for manual dispatches that arrive after Stop was called.
var ErrStopped = errors.New("job: scheduler is stopping")

// ParseSchedule parses a standard five-field cron expression (descriptors
// such as @daily are accepted too).
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// NextRuns returns the next n fire times of spec after from, in loc.
func NextRuns(spec string, loc *time.Location, from time.Time, n int) ([]time.Time, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid run count %d", n)
	}
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0, n)
	t := from.In(loc)
	for i := 0; i < n; i++ {
		t = schedule.Next(t)
		if t.IsZero() {
			break
		}
		out = append(out, t)
	}
	return out, nil
}

// Scheduler fires runs on a cron schedule and on manual dispatch. Runs are
// never serialized: a dispatch that overlaps a scheduled run executes in
// parallel with it. Fire times missed while the process is down are skipped.
type Scheduler struct {
	cron     *cron.Cron
	runner   *Runner
	spec     string
	loc      *time.Location
	log      *logger.Logger
	onResult func(Result)

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	stopping bool
	manual   sync.WaitGroup
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithResultHandler registers fn to be called after every run.
func WithResultHandler(fn func(Result)) SchedulerOption {
	return func(s *Scheduler) { s.onResult = fn }
}

// NewScheduler creates a Scheduler that fires runner on spec in loc.
func NewScheduler(spec string, loc *time.Location, runner *Runner, log *logger.Logger, opts ...SchedulerOption) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	s := &Scheduler{
		runner:   runner,
		spec:     spec,
		loc:      loc,
		log:      log.WithComponent("scheduler"),
		onResult: func(Result) {},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{log: s.log}),
	)

	if _, err := ParseSchedule(spec); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(spec, s.fire); err != nil {
		return nil, fmt.Errorf("failed to register schedule: %w", err)
	}

	return s, nil
}

// Spec returns the cron expression the scheduler fires on.
func (s *Scheduler) Spec() string {
	return s.spec
}

// Location returns the timezone the schedule is evaluated in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// NextRuns returns the next n fire times from now.
func (s *Scheduler) NextRuns(n int) ([]time.Time, error) {
	return NextRuns(s.spec, s.loc, time.Now(), n)
}

// Start begins firing scheduled runs. Runs use ctx, so cancelling it
// cancels in-flight runs.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopping {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.cron.Start()

	if next, err := NextRuns(s.spec, s.loc, time.Now(), 1); err == nil && len(next) > 0 {
		s.log.Info().Str("schedule", s.spec).Time("next_run", next[0]).Msg("scheduler started")
	}
}

// Stop stops firing new scheduled runs and waits for in-flight runs, scheduled
// or dispatched, until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.started = false
	s.stopping = true
	cancel := s.cancel
	s.mu.Unlock()

	cronDone := s.cron.Stop()

	finished := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.manual.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		if cancel != nil {
			cancel()
		}
		s.log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		if cancel != nil {
			cancel()
		}
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// Dispatch runs the job once, now, as a manual trigger and waits for it.
// It works whether or not the scheduler has been started, but not once Stop
// has been called.
func (s *Scheduler) Dispatch(ctx context.Context) Result {
	if err := s.beginManual(); err != nil {
		now := time.Now()
		return Result{Trigger: TriggerManual, StartedAt: now, FinishedAt: now, Stage: StagePrepare, Err: err}
	}
	defer s.manual.Done()

	res := s.runner.Run(ctx, TriggerManual)
	s.onResult(res)
	return res
}

// DispatchAsync starts a manual run in the background and returns its run ID.
func (s *Scheduler) DispatchAsync(ctx context.Context) (string, error) {
	if err := s.beginManual(); err != nil {
		return "", err
	}

	runID := uuid.NewString()
	go func() {
		defer s.manual.Done()
		s.onResult(s.runner.run(ctx, TriggerManual, runID))
	}()
	return runID, nil
}

// beginManual registers a manual run unless the scheduler is stopping. The
// check and Add share the lock with Stop so Add never races manual.Wait.
func (s *Scheduler) beginManual() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		return ErrStopped
	}
	s.manual.Add(1)
	return nil
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	s.onResult(s.runner.Run(ctx, TriggerSchedule))
}
