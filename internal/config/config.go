// Package config manages environment variables.
//
// It reads variables from the environment (optionally seeded from a
// .env file), maps them into structured Go types, and validates that
// required values are present so the app fails fast on bad config. The
// resulting *Config is constructed once at startup and threaded through
// constructors; nothing else in the codebase reads the environment.
package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads .env into the process environment
	// before any env vars are read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// Config is the root configuration object for the application.
//
// Env vars use the TRAILBOOK_ prefix and dot-delimited nesting, e.g.
// TRAILBOOK_DATABASE.HOST -> Config.Database.Host. Observability is a
// pointer because it is optional; defaults are injected when absent.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment
// (local, development, production), used to tag logs and to switch the
// error handler between verbose and terse rendering.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// Fixed-window API rate limit, applied per client IP under /api.
	RateLimitRequests      int `koanf:"rate_limit_requests"`
	RateLimitWindowMinutes int `koanf:"rate_limit_window_minutes"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details ("host:port").
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores the token signing secret and lifetimes.
type AuthConfig struct {
	SecretKey     string `koanf:"secret_key" validate:"required,min=32"`
	TokenTTLHours int    `koanf:"token_ttl_hours" validate:"required,min=1"`
}

// IntegrationConfig holds third-party service credentials. An empty
// ResendAPIKey switches the mailer into dev mode (rendered mails are
// logged, not sent).
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
	AppBaseURL   string `koanf:"app_base_url"`
}

// Load reads configuration from environment variables, unmarshals it
// into Config, validates it, and applies observability defaults.
func Load() (*Config, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")

	err := k.Load(env.Provider("TRAILBOOK_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TRAILBOOK_"))
	}), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not load initial env variables.")
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		logger.Fatal().Err(err).Msg("Could not unmarshal main config.")
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		logger.Fatal().Err(err).Msg("Config validation failed.")
	}

	if mainConfig.Server.RateLimitRequests == 0 {
		mainConfig.Server.RateLimitRequests = 100
	}
	if mainConfig.Server.RateLimitWindowMinutes == 0 {
		mainConfig.Server.RateLimitWindowMinutes = 60
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment are forced here so telemetry sees
	// consistent naming regardless of what was configured.
	mainConfig.Observability.ServiceName = "trailbook"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid observability config")
	}

	return mainConfig, nil
}
