// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import pipeline metrics track the feed-to-wiki ingestion path
var (
	// ImportRunsTotal counts pipeline runs by trigger and result
	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_runs_total",
			Help: "Total number of import pipeline runs",
		},
		[]string{"trigger", "result"},
	)

	// ImportRunDuration measures full pipeline run duration in seconds
	ImportRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "import_run_duration_seconds",
			Help:    "Import pipeline run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ImportEntriesTotal counts processed feed entries by per-entry outcome
	ImportEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_entries_total",
			Help: "Feed entries processed by the import pipeline, by outcome",
		},
		[]string{"outcome"},
	)
)

// Search metrics track the chatbot/bot query path
var (
	// SearchQueriesTotal counts relevance searches by result bucket
	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Total number of relevance search queries",
		},
		[]string{"consumer", "result"},
	)

	// SearchDuration measures search latency in seconds
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Relevance search duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// PagesTotal tracks the total number of wiki pages in the database
var PagesTotal = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "pages_total",
		Help: "Total number of wiki pages in the database",
	},
)
