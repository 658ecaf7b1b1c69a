package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Selector sets for the archive page. Substack has shipped several markup
// generations, so each extraction tries a list of known patterns.
const (
	postContainerSelector = ".post-preview, article, .portable-archive-post"
	postTitleSelector     = "h3, h2, .post-preview-title, .post-title"
	postDateSelector      = ".post-date, time, .pencraft"
	postDescSelector      = "p, .post-preview-description, .subtitle"
	postBodySelector      = ".body, .post-content, article, .available-content"
)

// ArchiveParser implements Parser for the plain HTML archive/listing page.
// Unlike the RSS path, the listing only carries previews, so the full body is
// fetched per entry from the post page itself.
type ArchiveParser struct {
	client  *http.Client
	keyword string

	// urlPrefix absolutizes relative post links, e.g. "https://pixelspost.substack.com".
	urlPrefix string
}

// NewArchiveParser creates an ArchiveParser for the given site prefix and
// title keyword filter.
func NewArchiveParser(client *http.Client, urlPrefix, keyword string) *ArchiveParser {
	return &ArchiveParser{client: client, urlPrefix: urlPrefix, keyword: keyword}
}

// Parse retrieves the archive page and extracts one Entry per matching post
// preview. Errors extracting a single preview are logged and skipped; only
// failure to fetch or parse the page itself aborts the run.
func (p *ArchiveParser) Parse(ctx context.Context, sourceURL string) ([]Entry, error) {
	doc, err := p.fetchDocument(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch archive %s: %w", sourceURL, err)
	}

	var entries []Entry
	doc.Find(postContainerSelector).Each(func(i int, sel *goquery.Selection) {
		entry, err := p.extractEntry(ctx, sel)
		if err != nil {
			slog.Warn("skipping archive post",
				slog.Int("index", i),
				slog.Any("error", err))
			return
		}
		if entry == nil {
			return // filtered out by keyword
		}
		entries = append(entries, *entry)
	})

	return entries, nil
}

func (p *ArchiveParser) extractEntry(ctx context.Context, sel *goquery.Selection) (*Entry, error) {
	title := strings.TrimSpace(sel.Find(postTitleSelector).First().Text())
	if !matchesKeyword(title, p.keyword) {
		return nil, nil
	}

	href, _ := sel.Find("a").First().Attr("href")
	dateText := strings.TrimSpace(sel.Find(postDateSelector).First().Text())
	desc := strings.TrimSpace(sel.Find(postDescSelector).First().Text())

	entry, err := normalize(candidate{
		title:       title,
		url:         href,
		urlPrefix:   p.urlPrefix,
		publishedAt: parseArchiveDate(dateText),
		description: desc,
	})
	if err != nil {
		return nil, err
	}

	// The preview has no body; pull it from the post page. A failed body
	// fetch leaves RawBody empty and the sanitizer substitutes a fallback,
	// so the entry still imports.
	body, err := p.fetchBody(ctx, entry.URL)
	if err != nil {
		slog.Warn("could not extract post body, importing link-only page",
			slog.String("url", entry.URL),
			slog.Any("error", err))
	}
	entry.RawBody = body

	return &entry, nil
}

// fetchBody retrieves the post page and extracts its main content, first via
// the known content selectors, then via readability extraction.
func (p *ArchiveParser) fetchBody(ctx context.Context, postURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, postURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	body, err := get(p.client, req)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parse post HTML: %w", err)
	}

	if html, err := doc.Find(postBodySelector).First().Html(); err == nil && strings.TrimSpace(html) != "" {
		return html, nil
	}

	// Selector miss: the markup generation is unknown, let readability
	// locate the article content instead.
	raw, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serialize post HTML: %w", err)
	}
	parsed, err := url.Parse(postURL)
	if err != nil {
		return "", fmt.Errorf("parse post URL: %w", err)
	}
	article, err := readability.FromReader(strings.NewReader(raw), parsed)
	if err != nil {
		return "", fmt.Errorf("readability extraction: %w", err)
	}
	return article.Content, nil
}

func (p *ArchiveParser) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	body, err := get(p.client, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	return goquery.NewDocumentFromReader(body)
}

var (
	dayMonthYearRe = regexp.MustCompile(`(\d+)\s+([A-Za-z]+)\s+(\d{4})`)
	isoDateRe      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// directDateFormats are tried in order against the raw preview date text.
var directDateFormats = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2",
	time.RFC3339,
	"2006-01-02",
}

// parseArchiveDate parses the free-form date text shown on post previews.
// It tries, in order: a direct parse against known layouts, a
// "<day> <month-name> <year>" pattern reassembled into a standard form, and
// an ISO YYYY-MM-DD literal. Returns nil when every attempt fails; the entry
// is then treated as unscheduled.
func parseArchiveDate(text string) *time.Time {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil
	}

	for _, layout := range directDateFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			// Year-less layouts parse into year 0; reject those.
			if t.Year() > 0 {
				return &t
			}
		}
	}

	if m := dayMonthYearRe.FindStringSubmatch(cleaned); m != nil {
		reassembled := fmt.Sprintf("%s %s, %s", m[2], m[1], m[3])
		for _, layout := range []string{"Jan 2, 2006", "January 2, 2006"} {
			if t, err := time.Parse(layout, reassembled); err == nil {
				return &t
			}
		}
	}

	if iso := isoDateRe.FindString(cleaned); iso != "" {
		if t, err := time.Parse("2006-01-02", iso); err == nil {
			return &t
		}
	}

	slog.Debug("could not parse archive date", slog.String("text", text))
	return nil
}
