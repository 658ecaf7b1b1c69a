package importer

import "errors"

var (
	// ErrAlreadyRunning is returned when an import is requested while a
	// previous run is still in progress. Runs are serialized in-process.
	ErrAlreadyRunning = errors.New("an import run is already in progress")

	// ErrFetchFeed wraps a failure to retrieve or parse the source feed.
	// Fetch failures abort the whole run; nothing is partially imported.
	ErrFetchFeed = errors.New("failed to fetch source feed")
)
