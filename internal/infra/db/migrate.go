package db

import "database/sql"

// MigrateUp creates the wiki schema. Statements are idempotent so the
// migration can run on every boot.
func MigrateUp(pool *sql.DB) error {
	if _, err := pool.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id           SERIAL PRIMARY KEY,
    username     VARCHAR(50) NOT NULL UNIQUE,
    display_name TEXT NOT NULL DEFAULT '',
    is_admin     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// The slug unique index is the storage-level duplicate-import guard:
	// the pipeline's exists-check narrows the race, the index closes it.
	if _, err := pool.Exec(`
CREATE TABLE IF NOT EXISTS pages (
    id           SERIAL PRIMARY KEY,
    slug         VARCHAR(100) NOT NULL UNIQUE,
    title        TEXT NOT NULL,
    body         TEXT NOT NULL DEFAULT '',
    summary      TEXT NOT NULL DEFAULT '',
    category     VARCHAR(50) NOT NULL DEFAULT '',
    author_id    INTEGER NOT NULL REFERENCES users(id),
    published_at TIMESTAMPTZ NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_pages_published_at ON pages(published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_category ON pages(category)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_author_id ON pages(author_id)`,
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(idx); err != nil {
			return err
		}
	}

	// pg_trgm speeds up the ILIKE relevance search. Ignore failures: the
	// extension needs superuser and the queries work without it.
	_, _ = pool.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	searchIndexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_pages_title_gin ON pages USING gin(title gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_body_gin ON pages USING gin(body gin_trgm_ops)`,
	}
	for _, idx := range searchIndexes {
		_, _ = pool.Exec(idx)
	}

	// Imported pages need an author to attribute to.
	if _, err := pool.Exec(`
INSERT INTO users (username, display_name, is_admin)
VALUES ('dojo-bot', 'Dojo Bot', FALSE)
ON CONFLICT (username) DO NOTHING`); err != nil {
		return err
	}

	return nil
}
