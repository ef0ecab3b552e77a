package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/EcstasyEngineer/mantrad/internal/scheduler"
)

// Mantra is a pre-selected (or delivered) prompt, stored as a raw template
// so subject/controller changes take effect at display time.
type Mantra struct {
	Template   string `json:"template"`
	Theme      string `json:"theme"`
	Difficulty string `json:"difficulty"`
	BasePoints int    `json:"base_points"`
}

// User is the full per-user scheduling state.
//
// The delivery cycle is encoded by the SentAt/NextDeliveryAt pair:
// while SentAt is nil, NextDeliveryAt is the next send time; while SentAt
// is set, NextDeliveryAt is the response deadline. The engine exposes this
// as an explicit tagged state.
type User struct {
	ID                  string
	Enrolled            bool
	Themes              []string
	Subject             string
	Controller          string
	Frequency           float64
	ConsecutiveFailures int

	DeliveryMode        string
	LegacyIntervalHours int
	FixedTimes          []string

	Distribution []float64 // nil until first learned update

	NextDeliveryAt  *int64 // unix ms
	SentAt          *int64 // unix ms
	CurrentMantra   *Mantra
	DeliveredMantra *Mantra

	Favorites []string

	CreatedAt int64
	UpdatedAt int64
}

// NewUser returns the not-yet-enrolled default state for an id.
func NewUser(id string) *User {
	now := time.Now().UnixMilli()
	return &User{
		ID:                  id,
		Subject:             "puppet",
		Controller:          "Master",
		Frequency:           scheduler.DefaultFrequency,
		DeliveryMode:        scheduler.DefaultMode,
		LegacyIntervalHours: scheduler.DefaultLegacyIntervalHours,
		FixedTimes:          append([]string(nil), scheduler.DefaultFixedTimes...),
		Themes:              []string{},
		Favorites:           []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

const userColumns = `user_id, enrolled, themes, subject, controller, frequency,
	consecutive_failures, delivery_mode, legacy_interval_hours, fixed_times,
	distribution, next_delivery_at, sent_at, current_mantra, delivered_mantra,
	favorites, created_at, updated_at`

// GetUser loads a user's scheduling state. A missing row returns
// not-yet-enrolled defaults rather than an error, per the load contract.
func (db *DB) GetUser(id string) (*User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return NewUser(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// SaveUser upserts the full scheduling state. The frequency clamp is
// enforced here as a last line of defense: a frequency outside its bounds
// must never reach persisted state.
func (db *DB) SaveUser(u *User) error {
	if u.Frequency < scheduler.MinFrequency {
		u.Frequency = scheduler.MinFrequency
	}
	if u.Frequency > scheduler.MaxFrequency {
		u.Frequency = scheduler.MaxFrequency
	}
	u.UpdatedAt = time.Now().UnixMilli()
	if u.CreatedAt == 0 {
		u.CreatedAt = u.UpdatedAt
	}

	_, err := db.Exec(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			enrolled = excluded.enrolled,
			themes = excluded.themes,
			subject = excluded.subject,
			controller = excluded.controller,
			frequency = excluded.frequency,
			consecutive_failures = excluded.consecutive_failures,
			delivery_mode = excluded.delivery_mode,
			legacy_interval_hours = excluded.legacy_interval_hours,
			fixed_times = excluded.fixed_times,
			distribution = excluded.distribution,
			next_delivery_at = excluded.next_delivery_at,
			sent_at = excluded.sent_at,
			current_mantra = excluded.current_mantra,
			delivered_mantra = excluded.delivered_mantra,
			favorites = excluded.favorites,
			updated_at = excluded.updated_at
	`,
		u.ID, u.Enrolled, marshalJSON(u.Themes), u.Subject, u.Controller, u.Frequency,
		u.ConsecutiveFailures, u.DeliveryMode, u.LegacyIntervalHours, marshalJSON(u.FixedTimes),
		marshalNullable(u.Distribution), u.NextDeliveryAt, u.SentAt,
		marshalMantra(u.CurrentMantra), marshalMantra(u.DeliveredMantra),
		marshalJSON(u.Favorites), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user %s: %w", u.ID, err)
	}
	return nil
}

// ListEnrolled returns all enrolled users, oldest first. A row that fails
// to scan is logged and skipped so one corrupt record never aborts the
// delivery scan.
func (db *DB) ListEnrolled() ([]*User, error) {
	rows, err := db.Query(`SELECT ` + userColumns + ` FROM users WHERE enrolled = 1 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list enrolled: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			log.Printf("store: skipping corrupt user row: %v", err)
			continue
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanUser(row scannable) (*User, error) {
	var u User
	var themes, fixedTimes, favorites string
	var distribution, currentMantra, deliveredMantra sql.NullString
	var nextDelivery, sentAt sql.NullInt64

	err := row.Scan(
		&u.ID, &u.Enrolled, &themes, &u.Subject, &u.Controller, &u.Frequency,
		&u.ConsecutiveFailures, &u.DeliveryMode, &u.LegacyIntervalHours, &fixedTimes,
		&distribution, &nextDelivery, &sentAt, &currentMantra, &deliveredMantra,
		&favorites, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Malformed JSON columns heal to safe defaults; a half-broken record
	// is still usable and the next save repairs it.
	u.Themes = unmarshalStrings(u.ID, "themes", themes)
	u.FixedTimes = unmarshalStrings(u.ID, "fixed_times", fixedTimes)
	u.Favorites = unmarshalStrings(u.ID, "favorites", favorites)
	if distribution.Valid {
		if err := json.Unmarshal([]byte(distribution.String), &u.Distribution); err != nil {
			log.Printf("store: user %s: malformed distribution, resetting: %v", u.ID, err)
			u.Distribution = nil
		}
	}
	if nextDelivery.Valid {
		u.NextDeliveryAt = &nextDelivery.Int64
	}
	if sentAt.Valid {
		u.SentAt = &sentAt.Int64
	}
	u.CurrentMantra = unmarshalMantra(u.ID, "current_mantra", currentMantra)
	u.DeliveredMantra = unmarshalMantra(u.ID, "delivered_mantra", deliveredMantra)
	return &u, nil
}

func marshalJSON(v []string) string {
	if v == nil {
		v = []string{}
	}
	data, _ := json.Marshal(v)
	return string(data)
}

func marshalNullable(v []float64) any {
	if v == nil {
		return nil
	}
	data, _ := json.Marshal(v)
	return string(data)
}

func marshalMantra(m *Mantra) any {
	if m == nil {
		return nil
	}
	data, _ := json.Marshal(m)
	return string(data)
}

func unmarshalStrings(userID, column, raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Printf("store: user %s: malformed %s, resetting: %v", userID, column, err)
		return []string{}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func unmarshalMantra(userID, column string, raw sql.NullString) *Mantra {
	if !raw.Valid {
		return nil
	}
	var m Mantra
	if err := json.Unmarshal([]byte(raw.String), &m); err != nil {
		log.Printf("store: user %s: malformed %s, clearing: %v", userID, column, err)
		return nil
	}
	return &m
}
