package metrics

import "time"

// RecordImportRun records the result of one import pipeline run.
// Trigger is "scheduled" or "manual"; result is "success" or "failure".
func RecordImportRun(trigger string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	ImportRunsTotal.WithLabelValues(trigger, result).Inc()
	ImportRunDuration.Observe(duration.Seconds())
}

// RecordImportEntry records the per-entry outcome of the pipeline
// ("imported", "updated", "skipped" or "errored").
func RecordImportEntry(outcome string) {
	ImportEntriesTotal.WithLabelValues(outcome).Inc()
}

// RecordSearch records one relevance search. Consumer identifies the caller
// ("chat" or "discord"); result is "hit" or "miss".
func RecordSearch(consumer string, hits int, duration time.Duration) {
	result := "hit"
	if hits == 0 {
		result = "miss"
	}
	SearchQueriesTotal.WithLabelValues(consumer, result).Inc()
	SearchDuration.Observe(duration.Seconds())
}

// UpdatePagesTotal updates the gauge of stored wiki pages.
// Updated after each successful import run.
func UpdatePagesTotal(count int64) {
	PagesTotal.Set(float64(count))
}
