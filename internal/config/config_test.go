package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/yamdb")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, ":8000", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 72*time.Hour, cfg.ConfirmationCodeTTL)
	assert.Equal(t, MailBackendLog, cfg.MailBackend)
	assert.Equal(t, 20, cfg.RateLimitMaxRequests)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:yamdb.db")
	t.Setenv("DATABASE_DRIVER", DriverSQLite)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "not-a-number")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 20, cfg.RateLimitMaxRequests, "invalid ints fall back to the default")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DatabaseDriver:       DriverPostgres,
		DatabaseURL:          "postgres://localhost/yamdb",
		JWTSecret:            testSecret,
		MailBackend:          MailBackendLog,
		RateLimitMaxRequests: 1,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		msg    string
	}{
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"smtp without host", func(c *Config) { c.MailBackend = MailBackendSMTP }, "SMTP_HOST"},
		{"unknown mail backend", func(c *Config) { c.MailBackend = "carrier-pigeon" }, "MAIL_BACKEND"},
		{"unknown tls policy", func(c *Config) { c.SMTPTLSPolicy = "sometimes" }, "SMTP_TLS_POLICY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
