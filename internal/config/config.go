// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":8080"
	DefaultJWTExpiresIn    = "24h"
	DefaultPGHost          = "127.0.0.1"
	DefaultPGPort          = 5432
	DefaultPGUser          = "postgres"
	DefaultPGDatabase      = "postgres"
	DefaultPGSSLMode       = "disable"
	DefaultBlandBaseURL    = "https://api.bland.ai/v1"
	DefaultUpstreamTimeout = 30
	DefaultRateLimit       = 10
	DefaultRateBurst       = 20
	DefaultToastDuration   = 5000
	DefaultToastExitGrace  = 300
	DefaultPruneSchedule   = "@every 5m"
	DefaultFeedSource      = "postgres"
	DefaultFeedLimit       = 20
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Bland     BlandConfig     `toml:"bland"`
	Stripe    StripeConfig    `toml:"stripe"`
	Functions FunctionsConfig `toml:"functions"`
	Notify    NotifyConfig    `toml:"notify"`
	Feed      FeedConfig      `toml:"feed"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AuthConfig holds the identity provider JWT secret and the expiry of locally issued tokens.
type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// BlandConfig holds the call-control API endpoint and credentials.
type BlandConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// StripeConfig holds billing credentials and the portal fallback return URL.
// BaseURL is empty in production and only set to point at a local stub.
type StripeConfig struct {
	SecretKey        string `toml:"secret_key"`
	BaseURL          string `toml:"base_url"`
	DefaultReturnURL string `toml:"default_return_url"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// FunctionsConfig holds the per-client rate limit for /functions endpoints (requests per second).
type FunctionsConfig struct {
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

// NotifyConfig holds toast defaults and the idle-queue prune schedule (cron spec).
type NotifyConfig struct {
	DefaultDurationMS int    `toml:"default_duration_ms"`
	ExitGraceMS       int    `toml:"exit_grace_ms"`
	PruneSchedule     string `toml:"prune_schedule"`
}

// FeedConfig selects the activity feed source ("postgres" or "static") and page size.
type FeedConfig struct {
	Source string `toml:"source"`
	Limit  int    `toml:"limit"`
}

// Timeout returns the configured upstream timeout.
func (c BlandConfig) Timeout() time.Duration {
	return secondsOrDefault(c.TimeoutSeconds)
}

// Timeout returns the configured upstream timeout.
func (c StripeConfig) Timeout() time.Duration {
	return secondsOrDefault(c.TimeoutSeconds)
}

// DefaultDuration returns the toast display duration.
func (c NotifyConfig) DefaultDuration() time.Duration {
	if c.DefaultDurationMS <= 0 {
		return DefaultToastDuration * time.Millisecond
	}
	return time.Duration(c.DefaultDurationMS) * time.Millisecond
}

// ExitGrace returns the exit-animation grace period.
func (c NotifyConfig) ExitGrace() time.Duration {
	if c.ExitGraceMS <= 0 {
		return DefaultToastExitGrace * time.Millisecond
	}
	return time.Duration(c.ExitGraceMS) * time.Millisecond
}

func secondsOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = DefaultUpstreamTimeout
	}
	return time.Duration(seconds) * time.Second
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Bland: BlandConfig{
			BaseURL:        DefaultBlandBaseURL,
			TimeoutSeconds: DefaultUpstreamTimeout,
		},
		Stripe: StripeConfig{
			TimeoutSeconds: DefaultUpstreamTimeout,
		},
		Functions: FunctionsConfig{
			RateLimit: DefaultRateLimit,
			Burst:     DefaultRateBurst,
		},
		Notify: NotifyConfig{
			DefaultDurationMS: DefaultToastDuration,
			ExitGraceMS:       DefaultToastExitGrace,
			PruneSchedule:     DefaultPruneSchedule,
		},
		Feed: FeedConfig{
			Source: DefaultFeedSource,
			Limit:  DefaultFeedLimit,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
