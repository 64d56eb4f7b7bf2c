package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	workoutnotifier "github.com/workoutnotifier/workout-notifier/sdk/go"
)

var serverURL string

const statusTimeFormat = "2006-01-02 15:04:05 MST"

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Ask a running schedule daemon to send the workout email now",
	Args:  cobra.NoArgs,
	RunE:  runTrigger,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the health and latest run of a running schedule daemon",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	for _, c := range []*cobra.Command{triggerCmd, statusCmd} {
		c.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the daemon's status server")
	}
}

func runTrigger(cmd *cobra.Command, args []string) error {
	client := workoutnotifier.NewClient(workoutnotifier.Config{BaseURL: serverURL})
	runID, err := client.Dispatch(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to dispatch run: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Run %s dispatched.\n", runID)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := workoutnotifier.NewClient(workoutnotifier.Config{BaseURL: serverURL})

	h, err := client.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status:   %s (version %s)\n", h.Status, h.Version)
	fmt.Fprintf(out, "Schedule: %s (%s)\n", h.Schedule, h.Timezone)
	fmt.Fprintf(out, "Runs:     %d total, %d failed\n", h.Runs.Total, h.Runs.Failed)

	last := h.LastRun
	if last == nil {
		last, err = client.LastRun(cmd.Context())
		if err != nil && !errors.Is(err, workoutnotifier.ErrNoRuns) {
			return err
		}
	}
	if last != nil {
		fmt.Fprintf(out, "Last run: %s %s (%s, %s)\n", last.RunID, last.Status, last.Trigger, last.FinishedAt.Format(statusTimeFormat))
		if last.Error != "" {
			fmt.Fprintf(out, "          %s: %s\n", last.Stage, last.Error)
		}
	}
	if ok := h.LastSuccess; ok != nil && (last == nil || ok.RunID != last.RunID) {
		fmt.Fprintf(out, "Last OK:  %s (%s, %s)\n", ok.RunID, ok.Trigger, ok.FinishedAt.Format(statusTimeFormat))
	}

	if !h.Healthy() {
		return errors.New("latest run failed")
	}
	return nil
}
