package worker

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate err=%v", err)
	}
	if cfg.CronSchedule != "0 9 * * 1" {
		t.Errorf("CronSchedule = %q", cfg.CronSchedule)
	}
	if cfg.Timezone != "Africa/Johannesburg" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := Config{
		CronSchedule:  "not a schedule",
		Timezone:      "Mars/Olympus",
		ImportTimeout: -time.Second,
		HealthPort:    80,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation errors")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("IMPORT_CRON_SCHEDULE", "0 7 * * 3")
	t.Setenv("IMPORT_TIMEZONE", "UTC")
	t.Setenv("IMPORT_TIMEOUT", "5m")

	cfg := LoadConfigFromEnv(discardLogger())
	if cfg.CronSchedule != "0 7 * * 3" || cfg.Timezone != "UTC" || cfg.ImportTimeout != 5*time.Minute {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigFromEnv_InvalidFallsBackToDefaults(t *testing.T) {
	t.Setenv("IMPORT_CRON_SCHEDULE", "every tuesday maybe")

	cfg := LoadConfigFromEnv(discardLogger())
	if cfg.CronSchedule != DefaultConfig().CronSchedule {
		t.Fatalf("CronSchedule = %q, want default", cfg.CronSchedule)
	}
}
