package job_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workoutnotifier/workout-notifier/internal/job"
	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

var secretNames = []string{"SMTP_SERVER", "SMTP_PORT", "EMAIL_ADDRESS", "EMAIL_PASSWORD", "RECIPIENT_EMAIL"}

// envTask snapshots the five variables at invocation time and returns result.
func envTask(seen *[]map[string]string, mu *sync.Mutex, result error) job.PrepareFunc {
	return func(ctx context.Context, log *logger.Logger) (job.Task, error) {
		return func(ctx context.Context) error {
			snapshot := make(map[string]string, len(secretNames))
			for _, name := range secretNames {
				snapshot[name] = os.Getenv(name)
			}
			mu.Lock()
			*seen = append(*seen, snapshot)
			mu.Unlock()
			return result
		}, nil
	}
}

func TestRunner_ManualTriggerInvokesOnceWithEnvironment(t *testing.T) {
	values := map[string]string{
		"SMTP_SERVER":     "smtp.test",
		"SMTP_PORT":       "2525",
		"EMAIL_ADDRESS":   "sender@test",
		"EMAIL_PASSWORD":  "pw",
		"RECIPIENT_EMAIL": "to@test",
	}
	for k, v := range values {
		t.Setenv(k, v)
	}

	var (
		seen []map[string]string
		mu   sync.Mutex
	)
	r := job.NewRunner(envTask(&seen, &mu, nil), logger.Nop())

	res := r.Run(context.Background(), job.TriggerManual)

	require.Len(t, seen, 1)
	assert.Equal(t, values, seen[0])
	assert.Equal(t, job.TriggerManual, res.Trigger)
	assert.Equal(t, job.StatusSuccess, res.Status())
	assert.Equal(t, 0, res.ExitCode())
	assert.Equal(t, job.StageInvoke, res.Stage)
	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
}

func TestRunner_StatusMirrorsTask(t *testing.T) {
	t.Parallel()

	taskErr := errors.New("smtp auth failed")
	r := job.NewRunner(func(ctx context.Context, log *logger.Logger) (job.Task, error) {
		return func(ctx context.Context) error { return taskErr }, nil
	}, logger.Nop())

	res := r.Run(context.Background(), job.TriggerManual)

	assert.ErrorIs(t, res.Err, taskErr)
	assert.Equal(t, job.StatusFailure, res.Status())
	assert.Equal(t, 1, res.ExitCode())
	assert.Equal(t, job.StageInvoke, res.Stage)
}

func TestRunner_NoValidationOfEmptyEnvironment(t *testing.T) {
	for _, name := range secretNames {
		t.Setenv(name, "")
	}

	var (
		seen []map[string]string
		mu   sync.Mutex
	)
	r := job.NewRunner(envTask(&seen, &mu, nil), logger.Nop())

	res := r.Run(context.Background(), job.TriggerManual)

	// The task still runs and its verdict stands.
	require.Len(t, seen, 1)
	for _, name := range secretNames {
		assert.Empty(t, seen[0][name])
	}
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, res.ExitCode())
}

func TestRunner_PrepareFailureSkipsInvoke(t *testing.T) {
	t.Parallel()

	var invoked atomic.Bool
	setupErr := errors.New("plan not found")

	r := job.NewRunner(func(ctx context.Context, log *logger.Logger) (job.Task, error) {
		return func(ctx context.Context) error {
			invoked.Store(true)
			return nil
		}, setupErr
	}, logger.Nop())

	res := r.Run(context.Background(), job.TriggerSchedule)

	assert.False(t, invoked.Load())
	assert.ErrorIs(t, res.Err, setupErr)
	assert.Equal(t, job.StagePrepare, res.Stage)
	assert.Equal(t, job.StatusFailure, res.Status())
	assert.Equal(t, 1, res.ExitCode())
}

func TestRunner_NilTask(t *testing.T) {
	t.Parallel()

	r := job.NewRunner(func(ctx context.Context, log *logger.Logger) (job.Task, error) {
		return nil, nil
	}, logger.Nop())

	res := r.Run(context.Background(), job.TriggerManual)
	assert.Error(t, res.Err)
	assert.Equal(t, job.StagePrepare, res.Stage)
}

func TestRunner_Timeout(t *testing.T) {
	t.Parallel()

	r := job.NewRunner(func(ctx context.Context, log *logger.Logger) (job.Task, error) {
		return func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}, nil
	}, logger.Nop(), job.WithTimeout(20*time.Millisecond))

	res := r.Run(context.Background(), job.TriggerManual)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestRunner_IndependentRuns(t *testing.T) {
	t.Parallel()

	var prepares atomic.Int32
	r := job.NewRunner(func(ctx context.Context, log *logger.Logger) (job.Task, error) {
		prepares.Add(1)
		// Each run gets its own counter; nothing is carried over.
		calls := 0
		return func(ctx context.Context) error {
			calls++
			if calls != 1 {
				return errors.New("state leaked between runs")
			}
			return nil
		}, nil
	}, logger.Nop())

	var wg sync.WaitGroup
	results := make([]job.Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Run(context.Background(), job.TriggerManual)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(2), prepares.Load())
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.NotEqual(t, results[0].RunID, results[1].RunID)
}
