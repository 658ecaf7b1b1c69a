package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"pixels-dojo/internal/domain/entity"
	"pixels-dojo/internal/repository"
)

// uniqueViolation is the PostgreSQL error code raised by the slug unique
// index on concurrent duplicate inserts.
const uniqueViolation = "23505"

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

const articleColumns = `id, slug, title, body, summary, category, author_id, published_at, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (*entity.Article, error) {
	var a entity.Article
	err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Body, &a.Summary, &a.Category,
		&a.AuthorID, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (repo *ArticleRepo) GetBySlug(ctx context.Context, slug string) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM pages
WHERE slug = $1
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetBySlug: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) List(ctx context.Context) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM pages
ORDER BY published_at DESC, id DESC`
	return repo.queryArticles(ctx, "List", query)
}

func (repo *ArticleRepo) ListByCategory(ctx context.Context, category string) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM pages
WHERE category = $1
ORDER BY published_at DESC, id DESC`
	return repo.queryArticles(ctx, "ListByCategory", query, category)
}

func (repo *ArticleRepo) queryArticles(ctx context.Context, op, query string, args ...any) ([]*entity.Article, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 100)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// SearchRelevance matches a single ordered LIKE pattern against title and
// body case-insensitively. Title matches rank above body-only matches, ties
// break on recency.
func (repo *ArticleRepo) SearchRelevance(ctx context.Context, pattern string, limit int) ([]repository.RankedArticle, error) {
	const query = `
SELECT ` + articleColumns + `,
    CASE
        WHEN title ILIKE $1 THEN 3
        WHEN body  ILIKE $1 THEN 2
        ELSE 0
    END AS relevance
FROM pages
WHERE title ILIKE $1
   OR body  ILIKE $1
ORDER BY relevance DESC, published_at DESC, id DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("SearchRelevance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ranked := make([]repository.RankedArticle, 0, limit)
	for rows.Next() {
		var a entity.Article
		var relevance int
		if err := rows.Scan(&a.ID, &a.Slug, &a.Title, &a.Body, &a.Summary, &a.Category,
			&a.AuthorID, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt, &relevance); err != nil {
			return nil, fmt.Errorf("SearchRelevance: Scan: %w", err)
		}
		ranked = append(ranked, repository.RankedArticle{Article: &a, Relevance: relevance})
	}
	return ranked, rows.Err()
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO pages (slug, title, body, summary, category, author_id, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at`
	err := repo.db.QueryRowContext(ctx, query,
		article.Slug, article.Title, article.Body, article.Summary,
		article.Category, article.AuthorID, article.PublishedAt).
		Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return entity.ErrDuplicateSlug
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) UpdateBySlug(ctx context.Context, article *entity.Article) error {
	const query = `
UPDATE pages
SET title = $2, body = $3, summary = $4, updated_at = now()
WHERE slug = $1`
	result, err := repo.db.ExecContext(ctx, query,
		article.Slug, article.Title, article.Body, article.Summary)
	if err != nil {
		return fmt.Errorf("UpdateBySlug: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBySlug: RowsAffected: %w", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *ArticleRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM pages WHERE slug = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsBySlug: %w", err)
	}
	return exists, nil
}

func (repo *ArticleRepo) CountArticles(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM pages`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountArticles: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM pages WHERE id = $1`
	result, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}
