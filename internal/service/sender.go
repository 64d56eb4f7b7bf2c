package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/workoutnotifier/workout-notifier/internal/config"
	"github.com/workoutnotifier/workout-notifier/internal/email"
	"github.com/workoutnotifier/workout-notifier/internal/logger"
)

// Delivery configuration errors
var (
	ErrMissingConfig   = errors.New("missing environment variables")
	ErrInvalidPort     = errors.New("invalid SMTP_PORT value")
	ErrUnknownProvider = errors.New("unknown email provider")
)

// Names of the variables injected by the secret store.
const (
	EnvSMTPServer     = "SMTP_SERVER"
	EnvSMTPPort       = "SMTP_PORT"
	EnvEmailAddress   = "EMAIL_ADDRESS"
	EnvEmailPassword  = "EMAIL_PASSWORD"
	EnvRecipientEmail = "RECIPIENT_EMAIL"
)

// requiredVariables lists, per provider, the secret variables it cannot run without.
var requiredVariables = map[string][]string{
	"smtp":  {EnvSMTPServer, EnvSMTPPort, EnvEmailAddress, EnvEmailPassword, EnvRecipientEmail},
	"gmail": {EnvEmailAddress, EnvRecipientEmail},
	"log":   {EnvRecipientEmail},
	"file":  {EnvRecipientEmail},
}

// MissingVariables returns the names of the variables the configured
// provider needs but that are empty, in declaration order.
func MissingVariables(cfg *config.Config) []string {
	values := map[string]string{
		EnvSMTPServer:     cfg.SMTP.Server,
		EnvSMTPPort:       cfg.SMTP.Port,
		EnvEmailAddress:   cfg.Email.Address,
		EnvEmailPassword:  cfg.Email.Password,
		EnvRecipientEmail: cfg.Email.Recipient,
	}

	var missing []string
	for _, name := range requiredVariables[cfg.Email.Provider] {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// ParsePort converts the SMTP_PORT value to a port number.
func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, raw)
	}
	return port, nil
}

// NewSender builds the email provider selected by cfg.Email.Provider.
func NewSender(ctx context.Context, cfg *config.Config, log *logger.Logger) (email.Sender, error) {
	provider := cfg.Email.Provider
	if _, ok := requiredVariables[provider]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	if missing := MissingVariables(cfg); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	switch provider {
	case "smtp":
		port, err := ParsePort(cfg.SMTP.Port)
		if err != nil {
			return nil, err
		}
		s, err := email.NewSMTPSender(email.SMTPConfig{
			Host:     strings.TrimSpace(cfg.SMTP.Server),
			Port:     port,
			Username: cfg.Email.Address,
			Password: cfg.Email.Password,
			From:     cfg.Email.Address,
			FromName: cfg.Email.SenderName,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "gmail":
		s, err := email.NewGmailSender(ctx, email.GmailConfig{
			CredentialsJSON: cfg.Email.Gmail.CredentialsJSON,
			ClientID:        cfg.Email.Gmail.ClientID,
			ClientSecret:    cfg.Email.Gmail.ClientSecret,
			RefreshToken:    cfg.Email.Gmail.RefreshToken,
			SenderAddress:   cfg.Email.Address,
			SenderName:      cfg.Email.SenderName,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "file":
		s, err := email.NewFileSender(cfg.Email.OutputDir, cfg.Email.Address, cfg.Email.SenderName)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return email.NewLogSender(log), nil
	}
}
