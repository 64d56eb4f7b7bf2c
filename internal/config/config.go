package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the notifier
type Config struct {
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Email    EmailConfig    `mapstructure:"email"`
	Plan     PlanConfig     `mapstructure:"plan"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Run      RunConfig      `mapstructure:"run"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// SMTPConfig holds the SMTP endpoint. Port is kept as the raw string the
// secret store delivered; parsing it is up to the sender.
type SMTPConfig struct {
	Server string `mapstructure:"server"`
	Port   string `mapstructure:"port"`
}

// EmailConfig holds sender identity and delivery settings
type EmailConfig struct {
	// Provider is the delivery backend: "smtp", "gmail", "log" or "file"
	Provider string `mapstructure:"provider"`
	// Address is the sending account, also used as the SMTP username
	Address string `mapstructure:"address"`
	// Password is the credential for Address
	Password string `mapstructure:"password"`
	// Recipient is the destination mailbox
	Recipient string `mapstructure:"recipient"`
	// SenderName is the display name on the From header
	SenderName string `mapstructure:"sender_name"`
	// OutputDir is where the "file" provider writes .eml files
	OutputDir string `mapstructure:"output_dir"`
	// Gmail holds Gmail API credentials, used when Provider is "gmail"
	Gmail GmailEmailConfig `mapstructure:"gmail"`
}

// GmailEmailConfig holds Gmail API configuration
type GmailEmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID string `mapstructure:"client_id"`
	// ClientSecret for OAuth2 token-based auth
	ClientSecret string `mapstructure:"client_secret"`
	// RefreshToken for OAuth2 token-based auth
	RefreshToken string `mapstructure:"refresh_token"`
}

// PlanConfig points at the workout plan. An empty Path selects the built-in plan.
type PlanConfig struct {
	Path string `mapstructure:"path"`
}

// ScheduleConfig holds the time-based trigger
type ScheduleConfig struct {
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (c ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RunConfig bounds a single invocation
type RunConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds the status server settings of the schedule daemon.
// An empty Addr disables the server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Options control where Load looks for configuration.
type Options struct {
	// ConfigFile overrides the config file search when set.
	ConfigFile string
	// DotEnvFiles are loaded into the process environment before reading
	// variables. Variables that are already set are never overridden.
	DotEnvFiles []string
}

// secretEnv maps config keys to the unprefixed variables the secret store injects.
var secretEnv = map[string]string{
	"smtp.server":     "SMTP_SERVER",
	"smtp.port":       "SMTP_PORT",
	"email.address":   "EMAIL_ADDRESS",
	"email.password":  "EMAIL_PASSWORD",
	"email.recipient": "RECIPIENT_EMAIL",
}

// Load reads configuration from .env files, an optional config file and
// environment variables. It performs no validation of the values.
func Load(opts Options) (*Config, error) {
	if err := loadDotEnv(opts.DotEnvFiles); err != nil {
		return nil, err
	}

	v := viper.New()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/workout-notifier")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.ConfigFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("NOTIFIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range secretEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Secret defaults
	v.SetDefault("smtp.server", "")
	v.SetDefault("smtp.port", "")
	v.SetDefault("email.address", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.recipient", "")

	// Email defaults
	v.SetDefault("email.provider", "smtp")
	v.SetDefault("email.sender_name", "Daily Workout")
	v.SetDefault("email.output_dir", "outbox")
	v.SetDefault("email.gmail.credentials_json", "")
	v.SetDefault("email.gmail.client_id", "")
	v.SetDefault("email.gmail.client_secret", "")
	v.SetDefault("email.gmail.refresh_token", "")

	// Plan defaults
	v.SetDefault("plan.path", "")

	// Schedule defaults
	v.SetDefault("schedule.cron", "0 11 * * *")
	v.SetDefault("schedule.timezone", "UTC")

	// Run defaults
	v.SetDefault("run.timeout", "2m")

	// Server defaults
	v.SetDefault("server.addr", "")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
