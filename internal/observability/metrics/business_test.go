package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordImportRun(t *testing.T) {
	tests := []struct {
		name     string
		trigger  string
		success  bool
		duration time.Duration
	}{
		{
			name:     "successful scheduled run",
			trigger:  "scheduled",
			success:  true,
			duration: 3 * time.Second,
		},
		{
			name:     "failed scheduled run",
			trigger:  "scheduled",
			success:  false,
			duration: 500 * time.Millisecond,
		},
		{
			name:     "successful manual run",
			trigger:  "manual",
			success:  true,
			duration: 2 * time.Second,
		},
		{
			name:     "zero duration",
			trigger:  "manual",
			success:  true,
			duration: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordImportRun(tt.trigger, tt.success, tt.duration)
			})
		})
	}
}

func TestRecordImportEntry(t *testing.T) {
	tests := []struct {
		name    string
		outcome string
	}{
		{
			name:    "imported entry",
			outcome: "imported",
		},
		{
			name:    "skipped entry",
			outcome: "skipped",
		},
		{
			name:    "errored entry",
			outcome: "errored",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordImportEntry(tt.outcome)
			})
		})
	}
}

func TestRecordSearch(t *testing.T) {
	tests := []struct {
		name     string
		consumer string
		hits     int
		duration time.Duration
	}{
		{
			name:     "widget search with hits",
			consumer: "widget",
			hits:     5,
			duration: 20 * time.Millisecond,
		},
		{
			name:     "discord search with no hits",
			consumer: "discord",
			hits:     0,
			duration: 15 * time.Millisecond,
		},
		{
			name:     "api search",
			consumer: "api",
			hits:     1,
			duration: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordSearch(tt.consumer, tt.hits, tt.duration)
			})
		})
	}
}

func TestUpdatePagesTotal(t *testing.T) {
	tests := []struct {
		name  string
		count int64
	}{
		{
			name:  "zero pages",
			count: 0,
		},
		{
			name:  "some pages",
			count: 42,
		},
		{
			name:  "large page count",
			count: 100000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdatePagesTotal(tt.count)
			})
		})
	}
}
