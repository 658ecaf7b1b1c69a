package importer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"pixels-dojo/internal/domain/entity"
	"pixels-dojo/internal/infra/feed"
	"pixels-dojo/internal/infra/sanitize"
	"pixels-dojo/internal/repository"
	"pixels-dojo/internal/usecase/importer"
)

/* ───────────────────────── test doubles ───────────────────────── */

type stubParser struct {
	entries []feed.Entry
	err     error
}

func (s *stubParser) Parse(_ context.Context, _ string) ([]feed.Entry, error) {
	return s.entries, s.err
}

type stubRepo struct {
	repository.ArticleRepository

	existing  map[string]bool
	created   []*entity.Article
	updated   []*entity.Article
	createErr map[string]error
	existsErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		existing:  map[string]bool{},
		createErr: map[string]error{},
	}
}

func (s *stubRepo) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.existing[slug], nil
}

func (s *stubRepo) Create(_ context.Context, a *entity.Article) error {
	if err := s.createErr[a.Slug]; err != nil {
		return err
	}
	s.created = append(s.created, a)
	s.existing[a.Slug] = true
	return nil
}

func (s *stubRepo) UpdateBySlug(_ context.Context, a *entity.Article) error {
	if !s.existing[a.Slug] {
		return entity.ErrNotFound
	}
	s.updated = append(s.updated, a)
	return nil
}

func (s *stubRepo) CountArticles(_ context.Context) (int64, error) {
	return int64(len(s.existing)), nil
}

type stubNotifier struct {
	announced []string
	err       error
}

func (s *stubNotifier) AnnouncePage(_ context.Context, a *entity.Article) error {
	s.announced = append(s.announced, a.Slug)
	return s.err
}

/* ───────────────────────── helpers ───────────────────────── */

func datePtr(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

// newService builds the pipeline the way the AMA feed runs it: images
// stripped and no stored summaries.
func newService(parser feed.Parser, repo repository.ArticleRepository, notifier importer.Notifier) *importer.Service {
	return newServiceWithSnippets(parser, repo, notifier, false)
}

func newServiceWithSnippets(parser feed.Parser, repo repository.ArticleRepository, notifier importer.Notifier, snippets bool) *importer.Service {
	cutoff, _ := time.Parse("2006-01-02", "2025-12-01")
	return importer.NewService(
		parser,
		repo,
		sanitize.New("Dojo Newsletter", "https://news.example.com", sanitize.Options{StripImages: true}),
		notifier,
		importer.Config{
			FeedURL:        "https://news.example.com/feed",
			Category:       "amas",
			SystemAuthorID: 1,
			Cutoff:         cutoff,
			NoSnippet:      !snippets,
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

/* ───────────────────────── Run ───────────────────────── */

func TestRun_ImportsNewEntries(t *testing.T) {
	t.Parallel()

	parser := &stubParser{entries: []feed.Entry{
		{Title: "AMA Recap: Pets", URL: "https://news.example.com/p/pets", PublishedAt: datePtr("2026-01-10"), RawBody: "<p>pets body</p>", Description: "All about pets."},
		{Title: "AMA Recap: Land", URL: "https://news.example.com/p/land", PublishedAt: datePtr("2026-01-17"), RawBody: "<p>land body</p>"},
	}}
	repo := newStubRepo()
	notifier := &stubNotifier{}

	stats, err := newService(parser, repo, notifier).Run(context.Background(), importer.TriggerManual)
	if err != nil {
		t.Fatalf("Run err=%v", err)
	}
	if stats.Found != 2 || stats.Imported != 2 || stats.Skipped != 0 || stats.Errored != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(repo.created) != 2 {
		t.Fatalf("created %d pages, want 2", len(repo.created))
	}

	got := repo.created[0]
	if got.Slug != "ama-recap-pets" {
		t.Errorf("Slug = %q", got.Slug)
	}
	if got.Category != "amas" || got.AuthorID != 1 {
		t.Errorf("Category=%q AuthorID=%d", got.Category, got.AuthorID)
	}
	if !strings.Contains(got.Body, "pets body") {
		t.Errorf("Body = %q, want sanitized entry body", got.Body)
	}
	if got.Summary != "" {
		t.Errorf("Summary = %q, want empty in no-snippet mode", got.Summary)
	}
	if len(notifier.announced) != 2 {
		t.Errorf("announced %v, want both new pages", notifier.announced)
	}
}

func TestRun_SnippetModeKeepsDescription(t *testing.T) {
	t.Parallel()

	parser := &stubParser{entries: []feed.Entry{
		{Title: "AMA Recap: Pets", URL: "https://news.example.com/p/pets", PublishedAt: datePtr("2026-01-10"), RawBody: "<p>pets body</p>", Description: "All about pets."},
	}}
	repo := newStubRepo()

	if _, err := newServiceWithSnippets(parser, repo, nil, true).Run(context.Background(), importer.TriggerManual); err != nil {
		t.Fatalf("Run err=%v", err)
	}
	if len(repo.created) != 1 || repo.created[0].Summary != "All about pets." {
		t.Fatalf("created = %+v, want description kept as summary", repo.created)
	}
}

func TestRun_SummaryTruncationKeepsValidUTF8(t *testing.T) {
	t.Parallel()

	// A spaceless multi-byte description forces the cut onto a byte index
	// inside a rune.
	parser := &stubParser{entries: []feed.Entry{
		{Title: "AMA Recap: Pets", URL: "https://news.example.com/p/pets", PublishedAt: datePtr("2026-01-10"), Description: strings.Repeat("日", 120)},
	}}
	repo := newStubRepo()

	if _, err := newServiceWithSnippets(parser, repo, nil, true).Run(context.Background(), importer.TriggerManual); err != nil {
		t.Fatalf("Run err=%v", err)
	}
	summary := repo.created[0].Summary
	if !utf8.ValidString(summary) {
		t.Fatalf("Summary %q is not valid UTF-8", summary)
	}
	if !strings.HasSuffix(summary, "…") {
		t.Fatalf("Summary %q not marked as truncated", summary)
	}
}

func TestRun_SkipsExistingAndStaleEntries(t *testing.T) {
	t.Parallel()

	parser := &stubParser{entries: []feed.Entry{
		{Title: "AMA Recap: Pets", URL: "https://news.example.com/p/pets", PublishedAt: datePtr("2026-01-10")},
		{Title: "Ancient AMA", URL: "https://news.example.com/p/old", PublishedAt: datePtr("2025-11-30")},
		{Title: "Undated AMA", URL: "https://news.example.com/p/undated"},
	}}
	repo := newStubRepo()
	repo.existing["ama-recap-pets"] = true

	stats, err := newService(parser, repo, nil).Run(context.Background(), importer.TriggerScheduled)
	if err != nil {
		t.Fatalf("Run err=%v", err)
	}
	// Existing slug and pre-cutoff entry skip; the undated entry imports.
	if stats.Imported != 1 || stats.Skipped != 2 || stats.Errored != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(repo.created) != 1 || repo.created[0].Slug != "undated-ama" {
		t.Fatalf("created = %+v", repo.created)
	}
}

func TestRun_RerunIsIdempotent(t *testing.T) {
	t.Parallel()

	parser := &stubParser{entries: []feed.Entry{
		{Title: "AMA Recap: Pets", URL: "https://news.example.com/p/pets", PublishedAt: datePtr("2026-01-10")},
	}}
	repo := newStubRepo()
	svc := newService(parser, repo, nil)

	if _, err := svc.Run(context.Background(), importer.TriggerManual); err != nil {
		t.Fatalf("first run err=%v", err)
	}
	stats, err := svc.Run(context.Background(), importer.TriggerManual)
	if err != nil {
		t.Fatalf("second run err=%v", err)
	}
	if stats.Imported != 0 || stats.Skipped != 1 {
		t.Fatalf("second run stats = %+v", stats)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created %d pages across two runs, want 1", len(repo.created))
	}
}

func TestRun_EntryFailureDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	parser := &stubParser{entries: []feed.Entry{
		{Title: "AMA One", URL: "https://news.example.com/p/1", PublishedAt: datePtr("2026-01-10")},
		{Title: "AMA Two", URL: "https://news.example.com/p/2", PublishedAt: datePtr("2026-01-17")},
		{Title: "AMA Three", URL: "https://news.example.com/p/3", PublishedAt: datePtr("2026-01-24")},
	}}
	repo := newStubRepo()
	repo.createErr["ama-two"] = errors.New("connection reset")

	stats, err := newService(parser, repo, nil).Run(context.Background(), importer.TriggerScheduled)
	if err != nil {
		t.Fatalf("Run err=%v", err)
	}
	if stats.Imported != 2 || stats.Errored != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRun_DuplicateInsertCountsAsSkipped(t *testing.T) {
	t.Parallel()

	parser := &stubParser{entries: []feed.Entry{
		{Title: "AMA One", URL: "https://news.example.com/p/1", PublishedAt: datePtr("2026-01-10")},
	}}
	repo := newStubRepo()
	repo.createErr["ama-one"] = entity.ErrDuplicateSlug

	stats, err := newService(parser, repo, nil).Run(context.Background(), importer.TriggerManual)
	if err != nil {
		t.Fatalf("Run err=%v", err)
	}
	if stats.Skipped != 1 || stats.Errored != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRun_FetchFailureIsFatal(t *testing.T) {
	t.Parallel()

	parser := &stubParser{err: errors.New("503 from upstream")}
	_, err := newService(parser, newStubRepo(), nil).Run(context.Background(), importer.TriggerScheduled)
	if !errors.Is(err, importer.ErrFetchFeed) {
		t.Fatalf("err = %v, want ErrFetchFeed", err)
	}
}

func TestRun_NotifierFailureDoesNotFailImport(t *testing.T) {
	t.Parallel()

	parser := &stubParser{entries: []feed.Entry{
		{Title: "AMA One", URL: "https://news.example.com/p/1", PublishedAt: datePtr("2026-01-10")},
	}}
	repo := newStubRepo()
	notifier := &stubNotifier{err: errors.New("webhook 429")}

	stats, err := newService(parser, repo, notifier).Run(context.Background(), importer.TriggerManual)
	if err != nil {
		t.Fatalf("Run err=%v", err)
	}
	if stats.Imported != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

/* ───────────────────────── ImportOrUpdate / Refresh ───────────────────────── */

func TestImportOrUpdate_UpdatesExistingPage(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	repo.existing["ama-one"] = true
	repo.createErr["ama-one"] = entity.ErrDuplicateSlug

	svc := newService(&stubParser{}, repo, nil)
	entry := feed.Entry{Title: "AMA One", URL: "https://news.example.com/p/1", RawBody: "<p>fresh body</p>", PublishedAt: datePtr("2026-01-10")}
	outcome, err := svc.ImportOrUpdate(context.Background(), entry)
	if err != nil {
		t.Fatalf("ImportOrUpdate err=%v", err)
	}
	if outcome != "updated" {
		t.Fatalf("outcome = %q, want updated", outcome)
	}
	if len(repo.updated) != 1 || !strings.Contains(repo.updated[0].Body, "fresh body") {
		t.Fatalf("updated = %+v", repo.updated)
	}
}

func TestImportOrUpdate_CreatesWhenAbsent(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	svc := newService(&stubParser{}, repo, nil)
	entry := feed.Entry{Title: "AMA One", URL: "https://news.example.com/p/1", PublishedAt: datePtr("2026-01-10")}
	outcome, err := svc.ImportOrUpdate(context.Background(), entry)
	if err != nil {
		t.Fatalf("ImportOrUpdate err=%v", err)
	}
	if outcome != "imported" {
		t.Fatalf("outcome = %q, want imported", outcome)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created = %+v", repo.created)
	}
}

func TestRefresh_RewritesExistingPages(t *testing.T) {
	t.Parallel()

	parser := &stubParser{entries: []feed.Entry{
		{Title: "AMA One", URL: "https://news.example.com/p/1", RawBody: "<p>fresh body</p>", PublishedAt: datePtr("2026-01-10")},
		{Title: "AMA Two", URL: "https://news.example.com/p/2", PublishedAt: datePtr("2026-01-17")},
	}}
	repo := newStubRepo()
	repo.existing["ama-one"] = true
	repo.createErr["ama-one"] = entity.ErrDuplicateSlug

	stats, err := newService(parser, repo, nil).Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh err=%v", err)
	}
	if stats.Found != 2 || stats.Imported != 1 || stats.Updated != 1 || stats.Errored != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(repo.updated) != 1 || !strings.Contains(repo.updated[0].Body, "fresh body") {
		t.Fatalf("updated = %+v, want existing page rewritten", repo.updated)
	}
}

func TestRefresh_FetchFailureIsFatal(t *testing.T) {
	t.Parallel()

	parser := &stubParser{err: errors.New("503 from upstream")}
	_, err := newService(parser, newStubRepo(), nil).Refresh(context.Background())
	if !errors.Is(err, importer.ErrFetchFeed) {
		t.Fatalf("err = %v, want ErrFetchFeed", err)
	}
}
