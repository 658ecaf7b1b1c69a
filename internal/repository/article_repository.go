package repository

import (
	"context"

	"pixels-dojo/internal/domain/entity"
)

// RankedArticle pairs an article with the relevance tier assigned by the
// search query (3 = pattern found in title, 2 = found only in body).
type RankedArticle struct {
	Article   *entity.Article
	Relevance int
}

// ArticleRepository is the persistence boundary for wiki pages.
type ArticleRepository interface {
	// GetBySlug returns the page with the given slug, or nil if absent.
	GetBySlug(ctx context.Context, slug string) (*entity.Article, error)
	// List retrieves all pages ordered by published date (newest first).
	List(ctx context.Context) ([]*entity.Article, error)
	// ListByCategory retrieves pages in one category, newest first.
	ListByCategory(ctx context.Context, category string) ([]*entity.Article, error)
	// SearchRelevance returns up to limit pages whose title or body matches
	// the LIKE pattern case-insensitively, ordered by relevance (title match
	// over body match) and then recency.
	SearchRelevance(ctx context.Context, pattern string, limit int) ([]RankedArticle, error)
	// Create inserts a new page. Returns entity.ErrDuplicateSlug when the
	// storage-level unique index on slug rejects the row.
	Create(ctx context.Context, article *entity.Article) error
	// UpdateBySlug replaces body, summary and updated_at of an existing page.
	// Returns entity.ErrNotFound when no page carries the slug.
	UpdateBySlug(ctx context.Context, article *entity.Article) error
	// ExistsBySlug reports whether a page with the slug is already stored.
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	// CountArticles returns the total number of stored pages.
	CountArticles(ctx context.Context) (int64, error)
	// Delete removes a page by id.
	Delete(ctx context.Context, id int64) error
}
