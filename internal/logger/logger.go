package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with notifier-specific methods
type Logger struct {
	zerolog.Logger
}

// New creates a new Logger writing to stdout
func New(level string, format string) *Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter creates a Logger writing to w
func NewWithWriter(w io.Writer, level string, format string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger

	if format == "text" || format == "console" {
		// Human-readable output for local runs
		output := zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	}

	return &Logger{Logger: logger}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// WithRun returns a new logger with the run ID and trigger attached
func (l *Logger) WithRun(runID, trigger string) *Logger {
	return &Logger{
		Logger: l.With().Str("run_id", runID).Str("trigger", trigger).Logger(),
	}
}

// WithComponent returns a new logger with the component name attached
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.With().Str("component", component).Logger(),
	}
}

// RunFinished logs the outcome of a job run
func (l *Logger) RunFinished(status, stage string, duration time.Duration, err error) {
	var event *zerolog.Event
	if err != nil {
		event = l.Error().Err(err).Str("stage", stage)
	} else {
		event = l.Info()
	}

	event.
		Str("status", status).
		Dur("duration", duration).
		Msg("run finished")
}

// HTTPRequest logs an HTTP request served by the status server at level
func (l *Logger) HTTPRequest(level zerolog.Level, method, path string, statusCode int, duration time.Duration, requestID string) {
	l.WithLevel(level).
		Str("method", method).
		Str("path", path).
		Int("status", statusCode).
		Dur("duration", duration).
		Str("request_id", requestID).
		Msg("HTTP request")
}
