package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/solward/donatiq/internal/adapter/otel"
)

// Config holds the application configuration, populated from
// environment variables. Use Load to construct one; every field has a
// default so an empty environment produces a runnable configuration.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port uint16 `env:"PORT" envDefault:"8080"`

	// DatabasePath is the SQLite data source name.
	DatabasePath string `env:"DATABASE_PATH" envDefault:"donatiq.db"`

	// ReconcileInterval is how often the background sweep re-derives
	// every campaign's status. Zero disables the periodic sweep.
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"15m"`

	// Log configures the structured logger. Environment variables
	// prefixed with LOG_ populate this struct.
	Log Logger `envPrefix:"LOG_"`

	// Otel configures telemetry exporters, under the OTEL_ prefix.
	Otel otel.Config `envPrefix:"OTEL_"`
}

// Logger defines configuration options for the structured logger.
// Level controls the minimum level emitted; Format may be "text"
// (default) or "json".
type Logger struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load reads configuration from environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SlogLevel converts the textual level into a slog.Level. Unknown
// levels default to slog.LevelInfo.
func (c Logger) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SlogFormat validates and normalises the requested log format.
// Supported formats are "text" and "json"; any other value returns
// "text".
func (c Logger) SlogFormat() string {
	switch strings.ToLower(c.Format) {
	case "json":
		return "json"
	default:
		return "text"
	}
}
