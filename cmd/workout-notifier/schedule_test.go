package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workoutnotifier/workout-notifier/internal/job"
	"github.com/workoutnotifier/workout-notifier/internal/logger"
	workoutnotifier "github.com/workoutnotifier/workout-notifier/sdk/go"
)

func newTestDaemon(t *testing.T, addr string) *daemon {
	t.Helper()

	resetFlags(t)
	t.Setenv("NOTIFIER_EMAIL_PROVIDER", "log")
	t.Setenv("RECIPIENT_EMAIL", "athlete@example.com")

	cfg, err := loadConfig()
	require.NoError(t, err)
	cfg.Server.Addr = addr
	cfg.Server.ShutdownTimeout = 5 * time.Second

	d, err := newDaemon(cfg, logger.Nop())
	require.NoError(t, err)
	return d
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not return")
		return nil
	}
}

func TestDaemon_DispatchSources(t *testing.T) {
	d := newTestDaemon(t, "127.0.0.1:0")
	baseURL := "http://" + d.listener.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatch := make(chan os.Signal)
	done := make(chan error, 1)
	go func() { done <- d.run(ctx, dispatch, true) }()

	// Unbuffered, so the loop has taken it before the send returns.
	dispatch <- os.Interrupt

	client := workoutnotifier.NewClient(workoutnotifier.Config{BaseURL: baseURL})
	runID, err := client.Dispatch(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	cancel()
	require.NoError(t, waitRun(t, done))

	// Stop waited for the startup, signal and HTTP runs.
	stats := d.tracker.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Zero(t, stats.Failed)

	// The server is closed and the scheduler refuses new work.
	_, err = http.Get(baseURL + "/health")
	assert.Error(t, err)
	_, err = d.sched.DispatchAsync(context.Background())
	assert.ErrorIs(t, err, job.ErrStopped)
}

func TestDaemon_WithoutServer(t *testing.T) {
	d := newTestDaemon(t, "")
	assert.Nil(t, d.srv)

	ctx, cancel := context.WithCancel(context.Background())
	dispatch := make(chan os.Signal)
	done := make(chan error, 1)
	go func() { done <- d.run(ctx, dispatch, false) }()

	dispatch <- os.Interrupt
	cancel()
	require.NoError(t, waitRun(t, done))

	stats := d.tracker.Stats()
	assert.Equal(t, 1, stats.Total)
	require.NotNil(t, stats.Last)
	assert.Equal(t, job.TriggerManual, stats.Last.Trigger)
}

func TestDaemon_ServerErrorStopsScheduler(t *testing.T) {
	d := newTestDaemon(t, "127.0.0.1:0")
	require.NoError(t, d.listener.Close())

	done := make(chan error, 1)
	go func() { done <- d.run(context.Background(), nil, false) }()

	err := waitRun(t, done)
	assert.ErrorContains(t, err, "status server")

	_, err = d.sched.DispatchAsync(context.Background())
	assert.ErrorIs(t, err, job.ErrStopped)
}

func TestNewDaemon_AddressInUse(t *testing.T) {
	d := newTestDaemon(t, "127.0.0.1:0")
	t.Cleanup(func() { d.listener.Close() })

	cfg, err := loadConfig()
	require.NoError(t, err)
	cfg.Server.Addr = d.listener.Addr().String()

	_, err = newDaemon(cfg, logger.Nop())
	assert.ErrorContains(t, err, "status server")
}

func TestSchedule_NowThenShutdown(t *testing.T) {
	outDir := t.TempDir()
	t.Setenv("NOTIFIER_EMAIL_PROVIDER", "file")
	t.Setenv("NOTIFIER_EMAIL_OUTPUT_DIR", outDir)
	t.Setenv("RECIPIENT_EMAIL", "athlete@example.com")

	// Already cancelled: the daemon dispatches the startup run, then shuts
	// down and waits for it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executeContext(t, ctx, "schedule", "--now", "--addr", "127.0.0.1:0", "--log-level", "disabled")
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(outDir, "*.eml"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
