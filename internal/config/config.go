package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"realdream/internal/config/configs"
	"realdream/internal/core/domain"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library. The
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev). It is
	// attached to the root logger.
	Env string `env:"ENV" envDefault:"prod"`

	// StorageDriver selects the ledger repository: "postgres" or "memory".
	// The memory driver loses all state on exit.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// HTTP holds configuration for the HTTP server. Environment variables
	// prefixed with HTTP_ will populate this struct.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger. Environment variables prefixed
	// with LOG_ will populate this struct.
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection. Environment variables
	// prefixed with PSQL_ will populate this struct.
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Ledger identifies the collection and its operator (LEDGER_*).
	Ledger configs.Ledger `envPrefix:"LEDGER_"`

	// Auth configures bearer token verification (AUTH_*).
	Auth configs.Auth `envPrefix:"AUTH_"`

	// Metrics configures the Prometheus endpoint (METRICS_*).
	Metrics configs.Metrics `envPrefix:"METRICS_"`
}

// Load reads configuration from environment variables into a Config. If
// parsing fails, an error is returned. All fields are loaded with their
// specified defaults when no environment variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	return cfg, nil
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.Ledger.Operator == domain.NullAccount {
		errs = append(errs, errors.New("LEDGER_OPERATOR must be a non-zero 0x address"))
	}
	if strings.TrimSpace(c.Auth.HMACSecret) == "" {
		errs = append(errs, errors.New("AUTH_HMAC_SECRET is required"))
	}
	return errors.Join(errs...)
}
