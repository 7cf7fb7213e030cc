package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS generations (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	user_photo      TEXT NOT NULL,
	clothing_photos TEXT NOT NULL DEFAULT '[]',
	generated_image TEXT NOT NULL,
	prompt          TEXT NOT NULL,
	scene           TEXT NOT NULL DEFAULT '',
	model           TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL DEFAULT '',
	error_code      TEXT NOT NULL DEFAULT '',
	processing_ms   INTEGER NOT NULL DEFAULT 0,
	quality         INTEGER NOT NULL DEFAULT 0,
	feedback        TEXT NOT NULL DEFAULT '',
	is_public       INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generations_user_created
	ON generations (user_id, created_at DESC);
`

// GenerationStore persists saved try-on results.
type GenerationStore struct {
	db *sqlx.DB
}

// Open connects to the sqlite database at path and bootstraps the schema.
func Open(path string) (*GenerationStore, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &GenerationStore{db: db}, nil
}

func (s *GenerationStore) Close() error {
	return s.db.Close()
}
