package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// comments.item_id carries no foreign key: deleting an item leaves its
// comments in place. Item and comment ids are AUTOINCREMENT so a deleted id
// is never handed to a new row, which would otherwise adopt the orphans.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    student_id    TEXT NOT NULL UNIQUE,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    full_name     TEXT NOT NULL,
    phone         TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id         INTEGER REFERENCES users(id),
    title           TEXT NOT NULL,
    description     TEXT,
    category        TEXT NOT NULL,
    location        TEXT NOT NULL,
    date_lost_found TEXT NOT NULL,
    item_type       TEXT NOT NULL CHECK (item_type IN ('lost', 'found')),
    status          TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'claimed', 'archived')),
    contact_email   TEXT,
    contact_phone   TEXT,
    image_url       TEXT,
    emoji           TEXT,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS comments (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id    INTEGER NOT NULL,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    text       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_items_listing
	     ON items(status, item_type, date_lost_found, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item ON comments(item_id, created_at)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
