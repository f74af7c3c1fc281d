package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the lifelog service.
// Environment variables are automatically parsed from the LIFELOG_SERVER_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver: memory, sqlite, postgres
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// SQLite Configuration
	SQLitePath string `envconfig:"SQLITE_PATH" default:"lifelog.db"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Auth Configuration
	APIKey string `envconfig:"API_KEY" default:""`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud-dev", "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"memory": true, "sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER is postgres")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with LIFELOG_SERVER_
// Example: LIFELOG_SERVER_HTTP_PORT, LIFELOG_SERVER_DB_DRIVER
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("LIFELOG_SERVER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment: EnvTesting,
		HTTPPort:    8080,
		BuildTarget: "local",
		DBDriver:    "memory",
		SQLitePath:  ":memory:",
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
