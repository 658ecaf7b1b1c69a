// Package importer implements the newsletter import pipeline: it pulls
// entries from the configured source feed, filters and sanitizes them, and
// stores each one as a wiki page exactly once.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"pixels-dojo/internal/domain/entity"
	"pixels-dojo/internal/infra/feed"
	"pixels-dojo/internal/infra/sanitize"
	"pixels-dojo/internal/observability/metrics"
	"pixels-dojo/internal/repository"
)

// Run triggers, recorded on metrics and logs.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

const maxSummaryLen = 280

// Notifier announces newly imported pages to an external channel. A nil or
// failing notifier never affects the import outcome.
type Notifier interface {
	AnnouncePage(ctx context.Context, article *entity.Article) error
}

// Config carries the import pipeline settings.
type Config struct {
	// FeedURL is the newsletter feed or archive page to pull from.
	FeedURL string
	// Category assigned to every imported page.
	Category string
	// SystemAuthorID is the wiki account imported pages are attributed to.
	SystemAuthorID int64
	// Cutoff excludes entries published strictly before this date. Entries
	// without a parseable date always pass.
	Cutoff time.Time
	// NoSnippet stores imported pages without a summary. The AMA feed runs
	// in this mode so search results and chat excerpts always come from the
	// sanitized body.
	NoSnippet bool
}

// Stats summarizes one import run.
type Stats struct {
	Found    int
	Imported int
	Updated  int
	Skipped  int
	Errored  int
	Duration time.Duration
}

// Service runs the import pipeline. All methods are safe for concurrent use;
// overlapping runs are rejected rather than queued.
type Service struct {
	parser    feed.Parser
	repo      repository.ArticleRepository
	sanitizer *sanitize.Sanitizer
	notifier  Notifier
	cfg       Config
	logger    *slog.Logger

	mu sync.Mutex
}

func NewService(
	parser feed.Parser,
	repo repository.ArticleRepository,
	sanitizer *sanitize.Sanitizer,
	notifier Notifier,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		parser:    parser,
		repo:      repo,
		sanitizer: sanitizer,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes one full import pass. It is idempotent: entries already
// imported (by slug) are counted as skipped, and a single entry failure never
// aborts the remaining batch. Only a feed fetch failure is fatal.
func (s *Service) Run(ctx context.Context, trigger string) (*Stats, error) {
	if !s.mu.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer s.mu.Unlock()

	start := time.Now()
	s.logger.Info("import run started",
		slog.String("trigger", trigger),
		slog.String("feed_url", s.cfg.FeedURL))

	entries, err := s.parser.Parse(ctx, s.cfg.FeedURL)
	if err != nil {
		metrics.RecordImportRun(trigger, false, time.Since(start))
		s.logger.Error("import run aborted",
			slog.String("trigger", trigger),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrFetchFeed, err)
	}

	stats := &Stats{Found: len(entries)}
	for _, entry := range entries {
		outcome, err := s.importEntry(ctx, entry)
		switch outcome {
		case outcomeImported:
			stats.Imported++
		case outcomeSkipped:
			stats.Skipped++
		case outcomeErrored:
			stats.Errored++
			s.logger.Warn("entry import failed",
				slog.String("title", entry.Title),
				slog.Any("error", err))
		}
		metrics.RecordImportEntry(outcome)
	}

	stats.Duration = time.Since(start)
	metrics.RecordImportRun(trigger, true, stats.Duration)
	s.refreshPagesGauge(ctx)

	s.logger.Info("import run finished",
		slog.String("trigger", trigger),
		slog.Int("found", stats.Found),
		slog.Int("imported", stats.Imported),
		slog.Int("skipped", stats.Skipped),
		slog.Int("errored", stats.Errored),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

const (
	outcomeImported = "imported"
	outcomeUpdated  = "updated"
	outcomeSkipped  = "skipped"
	outcomeErrored  = "errored"
)

func (s *Service) importEntry(ctx context.Context, entry feed.Entry) (string, error) {
	if entry.PublishedAt != nil && entry.PublishedAt.Before(s.cfg.Cutoff) {
		return outcomeSkipped, nil
	}

	slug := entity.SlugOrFallback(entry.Title)

	exists, err := s.repo.ExistsBySlug(ctx, slug)
	if err != nil {
		return outcomeErrored, fmt.Errorf("check slug %q: %w", slug, err)
	}
	if exists {
		return outcomeSkipped, nil
	}

	article := s.buildArticle(slug, entry)
	if err := s.repo.Create(ctx, article); err != nil {
		// A concurrent or racing insert landing first is the same page
		// already being there, not a failure.
		if errors.Is(err, entity.ErrDuplicateSlug) {
			return outcomeSkipped, nil
		}
		return outcomeErrored, fmt.Errorf("store page %q: %w", slug, err)
	}

	s.announce(ctx, article)
	return outcomeImported, nil
}

// Refresh re-imports every feed entry, rewriting pages that already exist
// instead of skipping them. This is the maintenance pass for propagating
// sanitizer or formatting changes to stored pages; the publish-date cutoff
// does not apply.
func (s *Service) Refresh(ctx context.Context) (*Stats, error) {
	if !s.mu.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer s.mu.Unlock()

	start := time.Now()
	s.logger.Info("refresh run started", slog.String("feed_url", s.cfg.FeedURL))

	entries, err := s.parser.Parse(ctx, s.cfg.FeedURL)
	if err != nil {
		s.logger.Error("refresh run aborted", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrFetchFeed, err)
	}

	stats := &Stats{Found: len(entries)}
	for _, entry := range entries {
		outcome, err := s.ImportOrUpdate(ctx, entry)
		switch outcome {
		case outcomeImported:
			stats.Imported++
		case outcomeUpdated:
			stats.Updated++
		case outcomeErrored:
			stats.Errored++
			s.logger.Warn("entry refresh failed",
				slog.String("title", entry.Title),
				slog.Any("error", err))
		}
		metrics.RecordImportEntry(outcome)
	}

	stats.Duration = time.Since(start)
	s.refreshPagesGauge(ctx)

	s.logger.Info("refresh run finished",
		slog.Int("found", stats.Found),
		slog.Int("imported", stats.Imported),
		slog.Int("updated", stats.Updated),
		slog.Int("errored", stats.Errored),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// ImportOrUpdate imports a single entry, replacing the stored body and
// summary when a page with the same slug already exists. The returned
// outcome reports whether the page was created or rewritten.
func (s *Service) ImportOrUpdate(ctx context.Context, entry feed.Entry) (string, error) {
	slug := entity.SlugOrFallback(entry.Title)
	article := s.buildArticle(slug, entry)

	err := s.repo.Create(ctx, article)
	if err == nil {
		s.announce(ctx, article)
		return outcomeImported, nil
	}
	if !errors.Is(err, entity.ErrDuplicateSlug) {
		return outcomeErrored, fmt.Errorf("store page %q: %w", slug, err)
	}
	if err := s.repo.UpdateBySlug(ctx, article); err != nil {
		return outcomeErrored, fmt.Errorf("update page %q: %w", slug, err)
	}
	s.logger.Info("page updated in place", slog.String("slug", slug))
	return outcomeUpdated, nil
}

func (s *Service) buildArticle(slug string, entry feed.Entry) *entity.Article {
	publishedAt := time.Now().UTC()
	if entry.PublishedAt != nil {
		publishedAt = *entry.PublishedAt
	}
	summary := ""
	if !s.cfg.NoSnippet {
		summary = summarize(entry.Description)
	}
	return &entity.Article{
		Slug:        slug,
		Title:       entry.Title,
		Body:        s.sanitizer.Sanitize(entry.RawBody, entry.URL),
		Summary:     summary,
		Category:    s.cfg.Category,
		AuthorID:    s.cfg.SystemAuthorID,
		PublishedAt: publishedAt,
	}
}

func (s *Service) announce(ctx context.Context, article *entity.Article) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.AnnouncePage(ctx, article); err != nil {
		s.logger.Warn("page announcement failed",
			slog.String("slug", article.Slug),
			slog.Any("error", err))
	}
}

func (s *Service) refreshPagesGauge(ctx context.Context) {
	count, err := s.repo.CountArticles(ctx)
	if err != nil {
		s.logger.Warn("could not count pages", slog.Any("error", err))
		return
	}
	metrics.UpdatePagesTotal(count)
}

func summarize(description string) string {
	summary := strings.TrimSpace(description)
	if len(summary) <= maxSummaryLen {
		return summary
	}
	// Never split a multi-byte rune at the byte limit.
	end := maxSummaryLen
	for end > 0 && !utf8.RuneStart(summary[end]) {
		end--
	}
	cut := summary[:end]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
