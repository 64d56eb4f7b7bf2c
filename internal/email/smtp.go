package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/mail.v2"
)

const defaultSMTPTimeout = 10 * time.Second

// SMTPConfig holds the configuration for the SMTP email sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the envelope and header sender address.
	From string
	// FromName is the optional display name on the From header.
	FromName string
	// Timeout bounds the dial. Defaults to 10s.
	Timeout time.Duration
}

// smtpDialer is the part of *mail.Dialer the sender needs.
type smtpDialer interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPSender implements Sender over SMTP with mandatory STARTTLS
// (implicit TLS on port 465).
type SMTPSender struct {
	dialer   smtpDialer
	from     string
	fromName string
	now      func() time.Time
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: smtp host is required", ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: smtp port %d out of range", ErrInvalidConfig, cfg.Port)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: sender address is required", ErrInvalidConfig)
	}

	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = cfg.Timeout
	if d.Timeout <= 0 {
		d.Timeout = defaultSMTPTimeout
	}
	d.RetryFailure = false
	if !d.SSL {
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}

	return newSMTPSender(d, cfg.From, cfg.FromName), nil
}

func newSMTPSender(d smtpDialer, from, fromName string) *SMTPSender {
	return &SMTPSender{
		dialer:   d,
		from:     from,
		fromName: fromName,
		now:      time.Now,
	}
}

// Send dials the server, authenticates and delivers msg.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	m := composeMIME(s.from, s.fromName, msg, s.now())
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: smtp: %w", ErrSendFailed, err)
	}

	return nil
}
