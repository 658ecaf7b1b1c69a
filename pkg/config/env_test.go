package config_test

import (
	"testing"
	"time"

	"pixels-dojo/pkg/config"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("PD_TEST_STRING", "hello")
	if got := config.GetEnvString("PD_TEST_STRING", "fallback"); got != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
	if got := config.GetEnvString("PD_TEST_STRING_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("PD_TEST_INT", "42")
	if got := config.GetEnvInt("PD_TEST_INT", 7); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}

	t.Setenv("PD_TEST_INT_BAD", "not-a-number")
	if got := config.GetEnvInt("PD_TEST_INT_BAD", 7); got != 7 {
		t.Fatalf("got %d, want fallback 7", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("PD_TEST_BOOL", "true")
	if !config.GetEnvBool("PD_TEST_BOOL", false) {
		t.Fatal("expected true")
	}

	t.Setenv("PD_TEST_BOOL_BAD", "yes")
	if config.GetEnvBool("PD_TEST_BOOL_BAD", false) {
		t.Fatal("invalid value should fall back to default false")
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("PD_TEST_DUR", "90s")
	if got := config.GetEnvDuration("PD_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("got %v, want 90s", got)
	}

	t.Setenv("PD_TEST_DUR_BAD", "soon")
	if got := config.GetEnvDuration("PD_TEST_DUR_BAD", time.Minute); got != time.Minute {
		t.Fatalf("got %v, want fallback 1m", got)
	}
}

func TestGetEnvDate(t *testing.T) {
	def := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	t.Setenv("PD_TEST_DATE", "2026-01-15")
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if got := config.GetEnvDate("PD_TEST_DATE", def); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	t.Setenv("PD_TEST_DATE_BAD", "January 15")
	if got := config.GetEnvDate("PD_TEST_DATE_BAD", def); !got.Equal(def) {
		t.Fatalf("got %v, want fallback %v", got, def)
	}
}
