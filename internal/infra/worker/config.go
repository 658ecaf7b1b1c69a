// Package worker runs the scheduled import job. It wraps a cron runner with
// timezone-aware scheduling and run timeouts.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"pixels-dojo/pkg/config"
)

// Config controls when and how the scheduled import runs.
type Config struct {
	// CronSchedule is the cron expression for the weekly import.
	// Default: Monday 09:00.
	CronSchedule string

	// Timezone is the IANA timezone the schedule is evaluated in. The game
	// community's reference timezone, not the server's.
	Timezone string

	// ImportTimeout bounds a single import run.
	ImportTimeout time.Duration

	// HealthPort is the port for the worker's health endpoint.
	HealthPort int
}

// DefaultConfig returns the production schedule: every Monday morning in the
// community's timezone, matching the newsletter's publishing cadence.
func DefaultConfig() Config {
	return Config{
		CronSchedule:  "0 9 * * 1",
		Timezone:      "Africa/Johannesburg",
		ImportTimeout: 10 * time.Minute,
		HealthPort:    9091,
	}
}

// Validate checks all fields, collecting every violation.
func (c *Config) Validate() error {
	var errs []error

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule %q: %w", c.CronSchedule, err))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if c.ImportTimeout <= 0 {
		errs = append(errs, fmt.Errorf("import timeout must be positive, got %v", c.ImportTimeout))
	}
	if c.HealthPort < 1024 || c.HealthPort > 65535 {
		errs = append(errs, fmt.Errorf("health port out of range: %d", c.HealthPort))
	}

	return errors.Join(errs...)
}

// LoadConfigFromEnv reads the worker configuration from environment
// variables, falling back to defaults field by field when a value is missing
// or invalid.
func LoadConfigFromEnv(logger *slog.Logger) Config {
	defaults := DefaultConfig()
	cfg := Config{
		CronSchedule:  config.GetEnvString("IMPORT_CRON_SCHEDULE", defaults.CronSchedule),
		Timezone:      config.GetEnvString("IMPORT_TIMEZONE", defaults.Timezone),
		ImportTimeout: config.GetEnvDuration("IMPORT_TIMEOUT", defaults.ImportTimeout),
		HealthPort:    config.GetEnvInt("WORKER_HEALTH_PORT", defaults.HealthPort),
	}

	if err := cfg.Validate(); err != nil {
		logger.Warn("invalid worker configuration, falling back to defaults",
			slog.Any("error", err))
		return defaults
	}
	return cfg
}
