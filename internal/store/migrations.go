package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "users: per-user scheduling state",
		SQL: `
CREATE TABLE users (
    user_id               TEXT PRIMARY KEY,
    enrolled              INTEGER NOT NULL DEFAULT 0,
    themes                TEXT NOT NULL DEFAULT '[]',
    subject               TEXT NOT NULL DEFAULT 'puppet',
    controller            TEXT NOT NULL DEFAULT 'Master',
    frequency             REAL NOT NULL DEFAULT 1.0,
    consecutive_failures  INTEGER NOT NULL DEFAULT 0,

    -- Scheduling policy
    delivery_mode         TEXT NOT NULL DEFAULT 'adaptive',
    legacy_interval_hours INTEGER NOT NULL DEFAULT 4,
    fixed_times           TEXT NOT NULL DEFAULT '["09:00","14:00","19:00"]',

    -- Learned availability (24 floats, 3-decimal)
    distribution          TEXT,

    -- Two-timestamp delivery cycle. While sent_at is set, next_delivery_at
    -- is the response deadline rather than the next send time.
    next_delivery_at      INTEGER,
    sent_at               INTEGER,
    current_mantra        TEXT,
    delivered_mantra      TEXT,

    favorites             TEXT NOT NULL DEFAULT '[]',
    created_at            INTEGER NOT NULL,
    updated_at            INTEGER NOT NULL
);

CREATE INDEX idx_users_enrolled ON users(enrolled);
`,
	},
	{
		Version:     2,
		Description: "encounters: append-only delivery/response log",
		SQL: `
CREATE TABLE encounters (
    id               TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL,
    sent_at          INTEGER NOT NULL,
    mantra           TEXT NOT NULL,
    template         TEXT NOT NULL,
    theme            TEXT NOT NULL,
    difficulty       TEXT NOT NULL,
    base_points      INTEGER NOT NULL,
    speed_bonus      INTEGER NOT NULL DEFAULT 0,
    public_bonus     INTEGER NOT NULL DEFAULT 0,
    completed        INTEGER NOT NULL,
    response_seconds INTEGER,
    was_public       INTEGER NOT NULL DEFAULT 0,
    created_at       INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES users(user_id)
);

CREATE INDEX idx_encounters_user    ON encounters(user_id, sent_at DESC);
CREATE INDEX idx_encounters_created ON encounters(created_at DESC);
`,
	},
}

// migrate applies all pending migrations inside a schema_version guard.
func (db *DB) migrate() error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version    INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("schema version: %w", err)
	}
	return v, nil
}
