package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workoutnotifier/workout-notifier/internal/config"
	"github.com/workoutnotifier/workout-notifier/internal/job"
	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

// resetFlags restores flag globals to their defaults and points --env-file at
// a file that does not exist, so runs only see the test's environment.
func resetFlags(t *testing.T) string {
	t.Helper()

	configFile, envFiles, planPath, logLevel, logFormat = "", nil, "", "", ""
	scheduleCron, scheduleNow, scheduleAddr = "", false, ""
	previewDate, previewFormat = "", "html"
	nextCount = 5
	serverURL = "http://localhost:8080"

	missing := filepath.Join(t.TempDir(), "missing.env")
	envFiles = []string{missing}
	return missing
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	missing := resetFlags(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", missing))
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestPreview_Text(t *testing.T) {
	out, err := execute(t, "preview", "--date", "2026-10-12", "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Subject: Day 1: Upper Body Push - Monday")
	assert.Contains(t, out, "- Barbell Bench Press")
	assert.Contains(t, out, "Tip: ")
}

func TestPreview_HTML(t *testing.T) {
	out, err := execute(t, "preview", "--date", "2026-10-12")
	require.NoError(t, err)

	assert.Contains(t, out, "<title>Day 1: Upper Body Push</title>")
	assert.Contains(t, out, "Sets/Reps: 4 x 8")
}

func TestPreview_InvalidInput(t *testing.T) {
	_, err := execute(t, "preview", "--date", "12/10/2026")
	assert.ErrorContains(t, err, "invalid --date")

	_, err = execute(t, "preview", "--date", "2026-10-12", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown --format")
}

func TestNext(t *testing.T) {
	out, err := execute(t, "next", "--cron", "0 11 * * *", "--count", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "Schedule: 0 11 * * * (UTC)")
	assert.Equal(t, 4, bytes.Count([]byte(out), []byte("\n")))
}

func TestNext_InvalidCron(t *testing.T) {
	_, err := execute(t, "next", "--cron", "not a cron")
	assert.Error(t, err)
}

func TestNext_InvalidCount(t *testing.T) {
	for _, n := range []string{"-1", "0", "51"} {
		_, err := execute(t, "next", "-n", n)
		assert.ErrorContains(t, err, "invalid --count", n)
	}

	out, err := execute(t, "next", "-n", "50")
	require.NoError(t, err)
	assert.Equal(t, 51, bytes.Count([]byte(out), []byte("\n")))
}

func TestSend_LogProvider(t *testing.T) {
	t.Setenv("NOTIFIER_EMAIL_PROVIDER", "log")
	t.Setenv("RECIPIENT_EMAIL", "athlete@example.com")

	_, err := execute(t, "send", "--log-level", "disabled")
	assert.NoError(t, err)
}

func TestSend_MissingSecrets(t *testing.T) {
	t.Setenv("NOTIFIER_EMAIL_PROVIDER", "smtp")
	for _, name := range []string{"SMTP_SERVER", "SMTP_PORT", "EMAIL_ADDRESS", "EMAIL_PASSWORD", "RECIPIENT_EMAIL"} {
		t.Setenv(name, "")
	}

	_, err := execute(t, "send", "--log-level", "disabled")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed during prepare")
	assert.ErrorContains(t, err, "SMTP_SERVER")
}

func TestTriggerAndStatus(t *testing.T) {
	tracker := job.NewTracker()
	s, err := job.NewScheduler("0 11 * * *", time.UTC, job.NewRunner(func(ctx context.Context, log *logger.Logger) (job.Task, error) {
		return func(ctx context.Context) error { return nil }, nil
	}, logger.Nop()), logger.Nop(), job.WithResultHandler(tracker.Record))
	require.NoError(t, err)

	srv := httptest.NewServer(newStatusServer(config.ServerConfig{}, s, tracker, logger.Nop()).Handler)
	t.Cleanup(srv.Close)

	out, err := execute(t, "trigger", "--server", srv.URL)
	require.NoError(t, err)
	assert.Regexp(t, `^Run [0-9a-f-]{36} dispatched\.\n$`, out)

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))

	out, err = execute(t, "status", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:   healthy")
	assert.Contains(t, out, "Runs:     1 total, 0 failed")
	assert.Contains(t, out, "manual")
}
