package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	MailBackendSMTP = "smtp"
	MailBackendLog  = "log"

	SMTPTLSOpportunistic = "opportunistic"
	SMTPTLSMandatory     = "mandatory"
	SMTPTLSNone          = "none"
)

type Config struct {
	Environment string
	ServerPort  string
	// LogLevel overrides the environment's default log level when set.
	LogLevel string

	DatabaseDriver string
	DatabaseURL    string

	JWTSecret           string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	ConfirmationCodeTTL time.Duration

	// Rate limiting of the auth endpoints. An empty RedisURL selects the
	// in-process limiter.
	RedisURL             string
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration
	RateLimitBlockTime   time.Duration

	MailBackend  string
	MailFrom     string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// SMTPTLSPolicy controls STARTTLS: opportunistic, mandatory or none.
	SMTPTLSPolicy string

	CORSOrigins []string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	// Containers pass the environment directly, so a missing file is fine.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", ":8000"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", DriverPostgres),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		JWTSecret:           os.Getenv("JWT_SECRET"),
		AccessTokenTTL:      getEnvAsDuration("ACCESS_TOKEN_TTL", "24h"),
		RefreshTokenTTL:     getEnvAsDuration("REFRESH_TOKEN_TTL", "720h"),
		ConfirmationCodeTTL: getEnvAsDuration("CONFIRMATION_CODE_TTL", "72h"),

		RedisURL:             os.Getenv("REDIS_URL"),
		RateLimitMaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 20),
		RateLimitWindow:      getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
		RateLimitBlockTime:   getEnvAsDuration("RATE_LIMIT_BLOCK_TIME", "5m"),

		MailBackend:  getEnv("MAIL_BACKEND", MailBackendLog),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@yamdb.local"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		SMTPTLSPolicy: getEnv("SMTP_TLS_POLICY", SMTPTLSOpportunistic),

		CORSOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	var problems []string

	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
		problems = append(problems, fmt.Sprintf("DATABASE_DRIVER must be %q or %q", DriverPostgres, DriverSQLite))
	}
	if len(c.JWTSecret) < 32 {
		problems = append(problems, "JWT_SECRET must be at least 32 characters long")
	}
	if c.MailBackend != MailBackendSMTP && c.MailBackend != MailBackendLog {
		problems = append(problems, fmt.Sprintf("MAIL_BACKEND must be %q or %q", MailBackendSMTP, MailBackendLog))
	}
	if c.MailBackend == MailBackendSMTP && c.SMTPHost == "" {
		problems = append(problems, "SMTP_HOST is required when MAIL_BACKEND is smtp")
	}
	switch c.SMTPTLSPolicy {
	case "", SMTPTLSOpportunistic, SMTPTLSMandatory, SMTPTLSNone:
	default:
		problems = append(problems, fmt.Sprintf("SMTP_TLS_POLICY must be %q, %q or %q",
			SMTPTLSOpportunistic, SMTPTLSMandatory, SMTPTLSNone))
	}
	if c.RateLimitMaxRequests < 1 {
		problems = append(problems, "RATE_LIMIT_MAX_REQUESTS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvAsInt retrieves environment variable as int with default value
func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid %s value, using default: %d", key, defaultVal)
		return defaultVal
	}
	return val
}

// getEnvAsDuration retrieves environment variable as duration with default value
func getEnvAsDuration(key string, defaultVal string) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		valStr = defaultVal
	}
	duration, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Invalid %s value, using default: %s", key, defaultVal)
		duration, _ = time.ParseDuration(defaultVal)
	}
	return duration
}

func getEnvAsSlice(key string, defaultVal []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	parts := strings.Split(valStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
