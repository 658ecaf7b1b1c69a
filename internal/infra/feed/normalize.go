package feed

import (
	"fmt"
	"strings"
	"time"
)

// candidate is a partially extracted post before normalization. Parsers hand
// every raw extraction to Normalize so that field defaults live in exactly
// one place and downstream code never re-derives them.
type candidate struct {
	title       string
	url         string
	urlPrefix   string // prepended when url is relative
	publishedAt *time.Time
	rawBody     string
	description string
}

// Normalize turns a candidate into a fully populated Entry or rejects it.
// Rejection reasons are per-entry: the caller logs and skips, it never aborts
// the batch.
func normalize(c candidate) (Entry, error) {
	title := strings.TrimSpace(c.title)
	if title == "" {
		return Entry{}, fmt.Errorf("entry has no title")
	}

	url := strings.TrimSpace(c.url)
	if url == "" {
		return Entry{}, fmt.Errorf("entry %q has no link", title)
	}
	url = absoluteURL(url, c.urlPrefix)

	return Entry{
		Title:       title,
		URL:         url,
		PublishedAt: c.publishedAt,
		RawBody:     strings.TrimSpace(c.rawBody),
		Description: strings.TrimSpace(c.description),
	}, nil
}

// matchesKeyword reports whether the title contains the configured keyword,
// case-insensitively. This is the mechanism for selecting one sub-category of
// posts (e.g. AMAs) from a mixed-content feed.
func matchesKeyword(title, keyword string) bool {
	if keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(keyword))
}

// absoluteURL resolves a relative link against the source prefix.
func absoluteURL(urlStr, prefix string) string {
	if strings.HasPrefix(urlStr, "http://") || strings.HasPrefix(urlStr, "https://") {
		return urlStr
	}
	if prefix == "" {
		return urlStr
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(urlStr, "/")
}
