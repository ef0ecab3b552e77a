// Package notify carries delivery events out of the engine. The daemon
// does not render or push prompts itself; a notifier hands the event to
// whatever presentation layer is attached.
package notify

import (
	"log"
	"time"
)

// Delivery is one outbound prompt, ready for display.
type Delivery struct {
	UserID     string    `json:"user_id"`
	Text       string    `json:"text"`
	Theme      string    `json:"theme"`
	Difficulty string    `json:"difficulty"`
	BasePoints int       `json:"base_points"`
	SentAt     time.Time `json:"sent_at"`
	Deadline   time.Time `json:"deadline"`
}

// Notifier receives delivery events. A failed notification must not block
// the delivery cycle; the engine logs and moves on.
type Notifier interface {
	NotifyDelivery(d Delivery) error
}

// LogNotifier writes deliveries to the daemon log. It is the default sink
// when no webhook is configured.
type LogNotifier struct{}

func (LogNotifier) NotifyDelivery(d Delivery) error {
	log.Printf("deliver user=%s theme=%s points=%d deadline=%s text=%q",
		d.UserID, d.Theme, d.BasePoints, d.Deadline.Format(time.RFC3339), d.Text)
	return nil
}
