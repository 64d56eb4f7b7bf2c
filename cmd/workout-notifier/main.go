package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/workoutnotifier/workout-notifier/internal/config"
	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

var (
	configFile string
	envFiles   []string
	planPath   string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:           "workout-notifier",
	Short:         "Email today's workout plan over SMTP",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a config file (default: search ./config.yaml, ./config/, /etc/workout-notifier/)")
	flags.StringSliceVar(&envFiles, "env-file", []string{".env"}, "Dotenv files to load; never override variables already set")
	flags.StringVar(&planPath, "plan", "", "Workout plan file (.json, .yaml); overrides NOTIFIER_PLAN_PATH")
	flags.StringVar(&logLevel, "log-level", "", "Log level; overrides NOTIFIER_LOG_LEVEL")
	flags.StringVar(&logFormat, "log-format", "", "Log format (json, text); overrides NOTIFIER_LOG_FORMAT")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and applies command-line overrides. It is
// called again at the start of every run so each run sees the environment
// as it is at that moment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile:  configFile,
		DotEnvFiles: envFiles,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if planPath != "" {
		cfg.Plan.Path = planPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(cfg.Log.Level, cfg.Log.Format)
}
