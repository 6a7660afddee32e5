package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Runtime modes
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Mail transports
const (
	TransportSMTP    = "smtp"
	TransportResend  = "resend"
	TransportConsole = "console"
)

// Rate limit stores
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	// Server Configuration
	Environment    string   `env:"ENV" envDefault:"development"`
	Port           string   `env:"PORT" envDefault:"3001"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	GlobalRPS      float64  `env:"GLOBAL_RPS" envDefault:"10"`
	GlobalBurst    int      `env:"GLOBAL_BURST" envDefault:"20"`
	// Peers allowed to set X-Real-IP / X-Forwarded-For. The default trusts
	// every peer; set it to the proxy CIDRs when the service is reachable directly.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," envDefault:"0.0.0.0/0,::/0"`

	Log       LogConfig       `envPrefix:"LOG_"`
	Contact   ContactConfig   `envPrefix:"CONTACT_"`
	Mail      MailConfig      `envPrefix:"MAIL_"`
	SMTP      SMTPConfig      `envPrefix:"SMTP_"`
	Resend    ResendConfig    `envPrefix:"RESEND_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Telemetry TelemetryConfig
}

// LogConfig controls the process logger
type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	File       string `env:"FILE"`
	MaxSize    int    `env:"MAX_SIZE" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3"`
	MaxAge     int    `env:"MAX_AGE" envDefault:"7"`
	Requests   bool   `env:"REQUESTS" envDefault:"false"`
}

// ContactConfig describes where submissions are delivered
type ContactConfig struct {
	Recipient string `env:"RECIPIENT"`
}

// MailConfig selects the mail transport
type MailConfig struct {
	Transport string        `env:"TRANSPORT" envDefault:"smtp"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// SMTPConfig holds SMTP account credentials
type SMTPConfig struct {
	Host     string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
	FromName string `env:"FROM_NAME" envDefault:"Portfolio Contact Form"`
	// TLS is one of starttls, tls, none
	TLS string `env:"TLS" envDefault:"starttls"`
}

// ResendConfig holds Resend API credentials
type ResendConfig struct {
	APIKey      string `env:"API_KEY"`
	SenderEmail string `env:"FROM_EMAIL"`
	SenderName  string `env:"FROM_NAME" envDefault:"Portfolio Contact Form"`
}

// RateLimitConfig holds the per-client submission policy
type RateLimitConfig struct {
	Store      string        `env:"STORE" envDefault:"memory"`
	Max        int           `env:"MAX" envDefault:"5"`
	Window     time.Duration `env:"WINDOW" envDefault:"15m"`
	MaxEntries int           `env:"MAX_ENTRIES" envDefault:"10000"`
	RedisURL   string        `env:"REDIS_URL"`
}

// TelemetryConfig holds tracing and error reporting settings
type TelemetryConfig struct {
	ServiceName  string `env:"SERVICE_NAME" envDefault:"portfolio-contact"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SentryDSN    string `env:"SENTRY_DSN"`
}

// Load loads the configuration from environment variables and .env files
func Load() (*Config, error) {
	envLocations := []string{".env"}

	// If ENV is set, try to load that specific file first
	if envName := os.Getenv("ENV"); envName != "" {
		envLocations = append([]string{fmt.Sprintf(".env.%s", envName)}, envLocations...)
	}

	for _, loc := range envLocations {
		// godotenv.Load never overrides variables that are already set
		if err := godotenv.Load(loc); err == nil {
			break
		}
	}

	return Parse()
}

// Parse reads the configuration from the current environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.Mail.Transport = strings.ToLower(strings.TrimSpace(cfg.Mail.Transport))
	cfg.RateLimit.Store = strings.ToLower(strings.TrimSpace(cfg.RateLimit.Store))
	cfg.SMTP.TLS = strings.ToLower(strings.TrimSpace(cfg.SMTP.TLS))

	// Fall back to the SMTP account as sender and recipient, like a personal mailbox setup
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	if cfg.Contact.Recipient == "" {
		switch cfg.Mail.Transport {
		case TransportSMTP:
			cfg.Contact.Recipient = cfg.SMTP.Username
		case TransportResend:
			cfg.Contact.Recipient = cfg.Resend.SenderEmail
		case TransportConsole:
			cfg.Contact.Recipient = "contact@localhost"
		}
	}

	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether raw errors may be shown to clients
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Validate checks that the selected transport and store can actually be built.
// Missing mail credentials are not an error here: the dispatcher reports them
// per request as an unavailable transport.
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("unknown ENV %q: must be %s or %s", c.Environment, EnvDevelopment, EnvProduction))
	}

	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", proxy))
		}
	}

	switch c.Mail.Transport {
	case TransportSMTP:
		switch c.SMTP.TLS {
		case "starttls", "tls", "none":
		default:
			errs = append(errs, fmt.Errorf("invalid SMTP_TLS %q", c.SMTP.TLS))
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			errs = append(errs, fmt.Errorf("invalid SMTP_PORT %d", c.SMTP.Port))
		}
	case TransportResend, TransportConsole:
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_TRANSPORT %q", c.Mail.Transport))
	}

	if c.Mail.Timeout <= 0 {
		errs = append(errs, errors.New("MAIL_TIMEOUT must be positive"))
	}

	switch c.RateLimit.Store {
	case StoreMemory:
	case StoreRedis:
		if c.RateLimit.RedisURL == "" {
			errs = append(errs, errors.New("RATE_LIMIT_REDIS_URL is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_STORE %q", c.RateLimit.Store))
	}

	if c.RateLimit.Max <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}

// validProxy accepts what gin.Engine.SetTrustedProxies accepts: an IP or a CIDR
func validProxy(proxy string) bool {
	if strings.Contains(proxy, "/") {
		_, _, err := net.ParseCIDR(proxy)
		return err == nil
	}
	return net.ParseIP(proxy) != nil
}
