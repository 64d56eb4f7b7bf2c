package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/workoutnotifier/workout-notifier/internal/config"
	"github.com/workoutnotifier/workout-notifier/internal/handler"
	"github.com/workoutnotifier/workout-notifier/internal/job"
	"github.com/workoutnotifier/workout-notifier/internal/logger"
	"github.com/workoutnotifier/workout-notifier/internal/middleware"
	"github.com/workoutnotifier/workout-notifier/internal/router"
)

var (
	scheduleCron string
	scheduleNow  bool
	scheduleAddr string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run as a daemon that sends the workout email on a cron schedule",
	Long: `Run in the foreground and send the workout email every time the cron
schedule fires (default "0 11 * * *", daily at 11:00 in the schedule timezone).

Send SIGUSR1, or POST /api/v1/runs when --addr is set, to trigger a manual run
at any time. Missed fire times are not caught up. SIGINT or SIGTERM stops the
daemon after in-flight runs finish.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "Cron expression; overrides NOTIFIER_SCHEDULE_CRON")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "Also dispatch one run immediately on start")
	scheduleCmd.Flags().StringVar(&scheduleAddr, "addr", "", "Listen address of the status server, e.g. :8080; overrides NOTIFIER_SERVER_ADDR")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scheduleCron != "" {
		cfg.Schedule.Cron = scheduleCron
	}
	if scheduleAddr != "" {
		cfg.Server.Addr = scheduleAddr
	}

	d, err := newDaemon(cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	dispatch := make(chan os.Signal, 1)
	if len(dispatchSignals) > 0 {
		signal.Notify(dispatch, dispatchSignals...)
		defer signal.Stop(dispatch)
	}

	return d.run(cmd.Context(), dispatch, scheduleNow)
}

// daemon is a running scheduler plus its optional status server.
type daemon struct {
	cfg      *config.Config
	log      *logger.Logger
	sched    *job.Scheduler
	tracker  *job.Tracker
	srv      *http.Server
	listener net.Listener
}

// newDaemon builds the scheduler and, when cfg.Server.Addr is set, binds the
// status server's listener so address errors surface before anything starts.
func newDaemon(cfg *config.Config, log *logger.Logger) (*daemon, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}

	tracker := job.NewTracker()
	s, err := job.NewScheduler(cfg.Schedule.Cron, loc, newRunner(cfg, log), log, job.WithResultHandler(tracker.Record))
	if err != nil {
		return nil, err
	}

	d := &daemon{cfg: cfg, log: log, sched: s, tracker: tracker}
	if cfg.Server.Addr != "" {
		ln, err := net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			return nil, fmt.Errorf("status server: %w", err)
		}
		d.listener = ln
		d.srv = newStatusServer(cfg.Server, s, tracker, log)
	}
	return d, nil
}

// run starts the scheduler and status server and blocks until ctx is done or
// the server fails. Each value on dispatch triggers a manual run; now
// triggers one at startup.
func (d *daemon) run(ctx context.Context, dispatch <-chan os.Signal, now bool) error {
	// Runs outlive the shutdown signal; Stop bounds how long we wait for them.
	runCtx := context.WithoutCancel(ctx)
	d.sched.Start(runCtx)

	serverErr := make(chan error, 1)
	if d.srv != nil {
		go func() {
			d.log.Info().Str("addr", d.listener.Addr().String()).Msg("status server listening")
			if err := d.srv.Serve(d.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	if now {
		d.dispatch(runCtx, "startup")
	}

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("shutting down scheduler...")
			err := shutdown(d.cfg.Server, d.srv, d.sched)
			if d.listener != nil {
				// Serve may not have taken ownership of it yet.
				d.listener.Close()
			}
			return err
		case err := <-serverErr:
			d.log.Error().Err(err).Msg("status server error")
			if stopErr := shutdown(d.cfg.Server, nil, d.sched); stopErr != nil {
				d.log.Error().Err(stopErr).Msg("scheduler forced to stop")
			}
			return fmt.Errorf("status server: %w", err)
		case sig := <-dispatch:
			d.dispatch(runCtx, "signal "+sig.String())
		}
	}
}

func (d *daemon) dispatch(ctx context.Context, source string) {
	runID, err := d.sched.DispatchAsync(ctx)
	if err != nil {
		d.log.Warn().Err(err).Str("source", source).Msg("manual dispatch refused")
		return
	}
	d.log.Info().Str("run_id", runID).Str("source", source).Msg("manual dispatch requested")
}

func newStatusServer(cfg config.ServerConfig, s *job.Scheduler, tracker *job.Tracker, log *logger.Logger) *http.Server {
	h := handler.New(s, tracker, log)
	mw := middleware.New(log)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router.New(h, mw),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// shutdown stops the status server first so no dispatch arrives after the
// scheduler has stopped waiting for runs.
func shutdown(cfg config.ServerConfig, srv *http.Server, s *job.Scheduler) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("status server shutdown: %w", err))
		}
	}
	if err := s.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
