package job

import (
	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

// cronLogger adapts the zerolog wrapper to cron.Logger. Cron's info
// messages (wake, run, schedule) are logged at debug level.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
