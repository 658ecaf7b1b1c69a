// Package search implements relevance-ranked page search over stored wiki
// pages. Queries are reduced to significant tokens and matched against page
// titles and bodies, with title matches ranked above body matches.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"pixels-dojo/internal/observability/metrics"
	"pixels-dojo/internal/repository"
)

// minTokenLen drops short words ("the", "is", "how") so only significant
// query terms reach the database pattern.
const minTokenLen = 4

const defaultLimit = 5

// Result is one ranked search hit.
type Result struct {
	Slug        string
	Title       string
	Body        string
	Summary     string
	Category    string
	PublishedAt time.Time
	Relevance   int
}

type Service struct {
	repo   repository.ArticleRepository
	logger *slog.Logger
}

func NewService(repo repository.ArticleRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Search returns up to limit pages matching the free-text query, ranked by
// relevance and then recency. A query with no significant tokens returns an
// empty result without touching storage. The consumer label only feeds
// metrics.
func (s *Service) Search(ctx context.Context, query, consumer string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	pattern := buildPattern(query)
	if pattern == "" {
		metrics.RecordSearch(consumer, 0, 0)
		return nil, nil
	}

	start := time.Now()
	ranked, err := s.repo.SearchRelevance(ctx, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search pages: %w", err)
	}
	metrics.RecordSearch(consumer, len(ranked), time.Since(start))

	s.logger.Debug("search executed",
		slog.String("consumer", consumer),
		slog.String("pattern", pattern),
		slog.Int("hits", len(ranked)))

	results := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, Result{
			Slug:        r.Article.Slug,
			Title:       r.Article.Title,
			Body:        r.Article.Body,
			Summary:     r.Article.Summary,
			Category:    r.Article.Category,
			PublishedAt: r.Article.PublishedAt,
			Relevance:   r.Relevance,
		})
	}
	return results, nil
}

// Tokenize splits a query into lowercase words of at least minTokenLen runes.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
		})
		if utf8.RuneCountInString(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// buildPattern joins all significant tokens into one LIKE pattern. Tokens
// must appear in order for a page to match; pages need every token, not any.
func buildPattern(query string) string {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return ""
	}
	return "%" + strings.Join(tokens, "%") + "%"
}
