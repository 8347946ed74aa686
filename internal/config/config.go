// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when the environment cannot be parsed into a Config.
var ErrParsingConfig = errors.New("failed to parse environment variables into config")

// Config holds the server settings. Every field is read from a
// FOODBRIDGE_-prefixed environment variable.
type Config struct {
	DBPath          string        `env:"DB_PATH" envDefault:"foodbridge.db"`
	Addr            string        `env:"ADDR" envDefault:":8080"`
	LogPath         string        `env:"LOG_PATH"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	JWTSecret       string        `env:"JWT_SECRET"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	AdminEmail      string        `env:"ADMIN_EMAIL" envDefault:"admin@foodbridge.local"`
	NearbyRadiusKm  float64       `env:"NEARBY_RADIUS_KM" envDefault:"50"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

const envPrefix = "FOODBRIDGE_"

// Load reads an optional .env file from the working directory and then
// parses the environment.
func Load() (*Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the current environment without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be expressed as env tags.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: DB_PATH must not be empty", ErrParsingConfig)
	}
	if c.NearbyRadiusKm <= 0 {
		return fmt.Errorf("%w: NEARBY_RADIUS_KM must be positive", ErrParsingConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: SHUTDOWN_TIMEOUT must be positive", ErrParsingConfig)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrParsingConfig, c.LogLevel)
	}
	return nil
}
