// Package feed retrieves and parses the external newsletter feed that the
// import pipeline turns into wiki pages. Two source formats are supported:
// the machine-readable RSS feed (preferred) and the HTML archive page
// (fallback, more brittle to markup changes).
package feed

import (
	"context"
	"time"
)

// Format identifies how a source URL should be parsed.
type Format string

const (
	// FormatRSS parses the source as an RSS/Atom syndication feed.
	FormatRSS Format = "rss"
	// FormatArchive parses the source as an HTML archive/listing page.
	FormatArchive Format = "archive"
)

// Entry is one post extracted from the external feed. Entries are transient:
// they exist only between parsing and the import pipeline.
//
// PublishedAt is nil when no date could be parsed; such entries are treated
// as unscheduled and bypass the cutoff-date filter.
// RawBody may be empty when body extraction failed; the sanitizer substitutes
// a minimal fallback body pointing at URL.
type Entry struct {
	Title       string
	URL         string
	PublishedAt *time.Time
	RawBody     string
	Description string
}

// Parser extracts entries from a source URL. Implementations apply the
// configured title keyword filter during parsing, so entries that do not
// match never reach the pipeline. A parse failure of one item must not abort
// the remaining items.
type Parser interface {
	Parse(ctx context.Context, sourceURL string) ([]Entry, error)
}

// browserUserAgent is sent on every feed request. Substack rejects requests
// carrying default HTTP client user agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
