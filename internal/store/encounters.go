package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Encounter is one append-only log entry: a delivered mantra and its
// eventual resolution. Records are never mutated after creation.
type Encounter struct {
	ID              string
	UserID          string
	SentAt          int64 // unix ms
	Mantra          string
	Template        string
	Theme           string
	Difficulty      string
	BasePoints      int
	SpeedBonus      int
	PublicBonus     int
	Completed       bool
	ResponseSeconds *int64
	WasPublic       bool
	CreatedAt       int64
}

// TotalPoints is the full points breakdown for the encounter.
func (e *Encounter) TotalPoints() int {
	if !e.Completed {
		return 0
	}
	return e.BasePoints + e.SpeedBonus + e.PublicBonus
}

// AppendEncounter writes a new encounter record. The id is assigned here.
func (db *DB) AppendEncounter(e *Encounter) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}
	_, err := db.Exec(`
		INSERT INTO encounters (
			id, user_id, sent_at, mantra, template, theme, difficulty,
			base_points, speed_bonus, public_bonus, completed,
			response_seconds, was_public, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.UserID, e.SentAt, e.Mantra, e.Template, e.Theme, e.Difficulty,
		e.BasePoints, e.SpeedBonus, e.PublicBonus, e.Completed,
		e.ResponseSeconds, e.WasPublic, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append encounter for %s: %w", e.UserID, err)
	}
	return nil
}

// RecentEncounters returns up to limit encounters for a user, newest first.
func (db *DB) RecentEncounters(userID string, limit int) ([]*Encounter, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, user_id, sent_at, mantra, template, theme, difficulty,
		       base_points, speed_bonus, public_bonus, completed,
		       response_seconds, was_public, created_at
		FROM encounters
		WHERE user_id = ?
		ORDER BY sent_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent encounters for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []*Encounter
	for rows.Next() {
		var e Encounter
		var responseSeconds sql.NullInt64
		err := rows.Scan(
			&e.ID, &e.UserID, &e.SentAt, &e.Mantra, &e.Template, &e.Theme, &e.Difficulty,
			&e.BasePoints, &e.SpeedBonus, &e.PublicBonus, &e.Completed,
			&responseSeconds, &e.WasPublic, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		if responseSeconds.Valid {
			e.ResponseSeconds = &responseSeconds.Int64
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// EncounterStats is the per-user summary exposed by the status surfaces.
type EncounterStats struct {
	Total       int
	Completed   int
	TotalPoints int
}

// EncounterStats aggregates a user's encounter history.
func (db *DB) EncounterStats(userID string) (*EncounterStats, error) {
	var s EncounterStats
	err := db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(completed), 0),
		       COALESCE(SUM(CASE WHEN completed = 1
		                THEN base_points + speed_bonus + public_bonus
		                ELSE 0 END), 0)
		FROM encounters
		WHERE user_id = ?
	`, userID).Scan(&s.Total, &s.Completed, &s.TotalPoints)
	if err != nil {
		return nil, fmt.Errorf("encounter stats for %s: %w", userID, err)
	}
	return &s, nil
}
