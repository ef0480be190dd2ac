package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/smartnodego/internal/catalog"
)

// DefaultPacing is the pause between two components during boot.
const DefaultPacing = 200 * time.Millisecond

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // component configuration, file or directory
	EnvFile    string

	BaseNamespace string
	Pacing        time.Duration

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.BaseNamespace == "" {
		cfg.BaseNamespace = catalog.DefaultBase
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	var errs []error
	switch cfg.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat))
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of 'debug', 'info', 'warn', 'error'", cfg.LogLevel))
	}
	if cfg.Pacing < 0 {
		errs = append(errs, fmt.Errorf("pacing must not be negative, got %s", cfg.Pacing))
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
