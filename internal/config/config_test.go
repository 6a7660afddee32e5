package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("SMTP_USERNAME", "owner@example.com")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, TransportSMTP, cfg.Mail.Transport)
	assert.Equal(t, 15*time.Second, cfg.Mail.Timeout)
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, StoreMemory, cfg.RateLimit.Store)
	assert.Equal(t, []string{"0.0.0.0/0", "::/0"}, cfg.TrustedProxies)

	// sender and recipient fall back to the SMTP account
	assert.Equal(t, "owner@example.com", cfg.SMTP.From)
	assert.Equal(t, "owner@example.com", cfg.Contact.Recipient)

	assert.True(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("ALLOWED_ORIGINS", "https://me.dev,https://www.me.dev")
	t.Setenv("MAIL_TRANSPORT", "resend")
	t.Setenv("RESEND_FROM_EMAIL", "contact@me.dev")
	t.Setenv("RATE_LIMIT_WINDOW", "1h")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4317")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://me.dev", "https://www.me.dev"}, cfg.AllowedOrigins)
	assert.Equal(t, "contact@me.dev", cfg.Contact.Recipient)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, "http://collector:4317", cfg.Telemetry.OTLPEndpoint)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown transport", func(c *Config) { c.Mail.Transport = "pigeon" }, true},
		{"bad tls mode", func(c *Config) { c.SMTP.TLS = "ssl3" }, true},
		{"redis without url", func(c *Config) { c.RateLimit.Store = StoreRedis }, true},
		{"redis with url", func(c *Config) {
			c.RateLimit.Store = StoreRedis
			c.RateLimit.RedisURL = "redis://localhost:6379/0"
		}, false},
		{"zero limit", func(c *Config) { c.RateLimit.Max = 0 }, true},
		{"zero timeout", func(c *Config) { c.Mail.Timeout = 0 }, true},
		{"unknown environment", func(c *Config) { c.Environment = "staging" }, true},
		{"proxy cidr", func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/8", "192.0.2.1"} }, false},
		{"bad proxy", func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/33"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse()
			require.NoError(t, err)
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestOnlyDevelopmentShowsErrors(t *testing.T) {
	for _, name := range []string{"staging", "prod", "test", "developmnet"} {
		t.Run(name, func(t *testing.T) {
			t.Setenv("ENV", name)

			cfg, err := Parse()
			require.NoError(t, err)
			assert.False(t, cfg.IsDevelopment())
			assert.Error(t, cfg.Validate())
		})
	}

	t.Setenv("ENV", " Development ")
	cfg, err := Parse()
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
}
