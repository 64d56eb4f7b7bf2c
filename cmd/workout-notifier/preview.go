package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/workoutnotifier/workout-notifier/internal/plan"
	"github.com/workoutnotifier/workout-notifier/internal/service"
)

var (
	previewDate   string
	previewFormat string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the workout email for a date without sending it",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewDate, "date", "", "Date to preview as YYYY-MM-DD (default: today)")
	previewCmd.Flags().StringVar(&previewFormat, "format", "html", "Body to print: html or text")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}

	at := time.Now().In(loc)
	if previewDate != "" {
		at, err = time.ParseInLocation(time.DateOnly, previewDate, loc)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	p, err := plan.Load(cfg.Plan.Path)
	if err != nil {
		return err
	}

	n := service.NewNotifier(service.NotifierOptions{
		Plan:      p,
		Recipient: cfg.Email.Recipient,
		Location:  loc,
	}, newLogger(cfg))

	msg, _, err := n.Compose(at)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Subject: %s\n\n", msg.Subject)

	switch previewFormat {
	case "html":
		fmt.Fprintln(out, msg.HTMLBody)
	case "text":
		fmt.Fprint(out, msg.TextBody)
	default:
		return fmt.Errorf("unknown --format %q (want html or text)", previewFormat)
	}
	return nil
}
