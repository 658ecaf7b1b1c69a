package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mmcdole/gofeed"
)

// RSSParser implements Parser for the syndication feed endpoint using the
// gofeed library. The full post body travels in the namespaced encoded
// content element, so no per-entry follow-up fetch is needed.
type RSSParser struct {
	client  *http.Client
	keyword string
}

// NewRSSParser creates an RSSParser that keeps only entries whose title
// contains keyword (case-insensitive).
func NewRSSParser(client *http.Client, keyword string) *RSSParser {
	return &RSSParser{client: client, keyword: keyword}
}

// Parse retrieves and parses the RSS feed at sourceURL.
// A fetch or document-level parse failure is fatal to the run; a single
// malformed item is logged and skipped.
func (p *RSSParser) Parse(ctx context.Context, sourceURL string) ([]Entry, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = browserUserAgent
	fp.Client = p.client

	parsed, err := fp.ParseURLWithContext(sourceURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", sourceURL, err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if !matchesKeyword(it.Title, p.keyword) {
			continue
		}

		// content:encoded carries the full body; fall back to the
		// plain description when the feed omits it.
		body := it.Content
		if body == "" {
			body = it.Description
		}

		entry, err := normalize(candidate{
			title:       it.Title,
			url:         it.Link,
			publishedAt: it.PublishedParsed,
			rawBody:     body,
			description: it.Description,
		})
		if err != nil {
			slog.Warn("skipping malformed feed item",
				slog.String("feed_url", sourceURL),
				slog.Any("error", err))
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
