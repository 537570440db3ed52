package db

import (
	"database/sql"
)

// MigrateUp creates the schema if it does not exist. Statements are
// idempotent so the API and worker can both run them at startup.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id            SERIAL PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    display_name  TEXT NOT NULL DEFAULT '',
    role          VARCHAR(10) NOT NULL DEFAULT 'user',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS movies (
    id               SERIAL PRIMARY KEY,
    title            TEXT NOT NULL,
    title_lao        TEXT NOT NULL DEFAULT '',
    description      TEXT NOT NULL DEFAULT '',
    poster_url       TEXT NOT NULL DEFAULT '',
    tmdb_id          BIGINT,
    rental_price_lak BIGINT NOT NULL DEFAULT 0,
    rental_days      INTEGER NOT NULL DEFAULT 3,
    published        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS rentals (
    id             SERIAL PRIMARY KEY,
    transaction_id TEXT NOT NULL UNIQUE,
    movie_id       INTEGER NOT NULL REFERENCES movies(id),
    user_id        INTEGER REFERENCES users(id),
    anonymous_id   TEXT,
    amount_lak     BIGINT NOT NULL,
    provider       VARCHAR(20) NOT NULL,
    status         VARCHAR(10) NOT NULL DEFAULT 'pending',
    failure_reason TEXT,
    paid_at        TIMESTAMPTZ,
    expires_at     TIMESTAMPTZ,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// status lookups drive the rental cap and the worker sweep
		`CREATE INDEX IF NOT EXISTS idx_rentals_movie_status ON rentals(movie_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_rentals_status_created ON rentals(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_rentals_user_id ON rentals(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_published ON movies(published) WHERE published = TRUE`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// ILIKE search index for the catalogue; ignore errors when pg_trgm is
	// unavailable (requires superuser on some hosts).
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	searchIndexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_movies_title_gin ON movies USING gin(title gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_title_lao_gin ON movies USING gin(title_lao gin_trgm_ops)`,
	}
	for _, idx := range searchIndexes {
		_, _ = db.Exec(idx)
	}

	// One of user_id / anonymous_id must be present.
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_rental_owner'
    ) THEN
        ALTER TABLE rentals ADD CONSTRAINT chk_rental_owner
        CHECK (user_id IS NOT NULL OR anonymous_id IS NOT NULL);
    END IF;
END $$;
`)

	return nil
}
