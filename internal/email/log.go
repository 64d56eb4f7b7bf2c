package email

import (
	"context"

	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

// LogSender logs emails instead of sending them. Used for dry runs.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a new log-based email sender.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.WithComponent("email.log")}
}

// Send logs the email details.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.TextBody).
		Int("html_bytes", len(msg.HTMLBody)).
		Msg("email not sent (log provider)")

	return nil
}
