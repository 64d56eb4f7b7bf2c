package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/workoutnotifier/workout-notifier/internal/job"
)

// maxNextCount matches the limit of GET /api/v1/runs/next.
const maxNextCount = 50

var nextCount int

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next fire times of the configured schedule",
	Args:  cobra.NoArgs,
	RunE:  runNext,
}

func init() {
	nextCmd.Flags().IntVarP(&nextCount, "count", "n", 5, "Number of fire times to show (1 to 50)")
	nextCmd.Flags().StringVar(&scheduleCron, "cron", "", "Cron expression; overrides NOTIFIER_SCHEDULE_CRON")
}

func runNext(cmd *cobra.Command, args []string) error {
	if nextCount < 1 || nextCount > maxNextCount {
		return fmt.Errorf("invalid --count %d (want 1 to %d)", nextCount, maxNextCount)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scheduleCron != "" {
		cfg.Schedule.Cron = scheduleCron
	}

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}

	runs, err := job.NextRuns(cfg.Schedule.Cron, loc, time.Now(), nextCount)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Schedule: %s (%s)\n", cfg.Schedule.Cron, loc)
	for _, t := range runs {
		fmt.Fprintf(out, "  %s  %s\n", t.Format(time.RFC3339), t.Weekday())
	}
	return nil
}
