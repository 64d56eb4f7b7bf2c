package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workoutnotifier/workout-notifier/internal/config"
	"github.com/workoutnotifier/workout-notifier/internal/job"
	"github.com/workoutnotifier/workout-notifier/internal/logger"
	"github.com/workoutnotifier/workout-notifier/internal/service"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send today's workout email once (manual dispatch)",
	Long: `Send today's workout email once and exit.

The exit status reports the outcome: 0 when the email was handed to the
provider, 1 otherwise. This is the command the CI workflow invokes.`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	res := newRunner(cfg, log).Run(cmd.Context(), job.TriggerManual)
	if res.Err != nil {
		return fmt.Errorf("run %s failed during %s: %w", res.RunID, res.Stage, res.Err)
	}
	return nil
}

// newRunner wires the notifier pipeline into a job runner. Every run reloads
// configuration and builds its own plan and sender.
func newRunner(cfg *config.Config, log *logger.Logger) *job.Runner {
	prepare := func(ctx context.Context, runLog *logger.Logger) (job.Task, error) {
		runCfg, err := loadConfig()
		if err != nil {
			return nil, err
		}

		n, err := service.Prepare(ctx, runCfg, runLog)
		if err != nil {
			return nil, err
		}
		return n.Run, nil
	}

	return job.NewRunner(prepare, log, job.WithTimeout(cfg.Run.Timeout))
}
