package engine

import (
	"log"
	"time"

	"github.com/EcstasyEngineer/mantrad/internal/store"
)

// CycleKind tags the user's position in the delivery loop.
type CycleKind int

const (
	// WaitingToSend: nothing outstanding; NextSendAt is the next delivery
	// time (zero if unscheduled).
	WaitingToSend CycleKind = iota
	// AwaitingResponse: a mantra is out; Deadline is the response cutoff.
	AwaitingResponse
)

// Cycle is the tagged delivery state, derived from the persisted
// SentAt/NextDeliveryAt pair so invalid combinations cannot leak into the
// scheduling logic.
type Cycle struct {
	Kind       CycleKind
	NextSendAt time.Time     // WaitingToSend
	SentAt     time.Time     // AwaitingResponse
	Deadline   time.Time     // AwaitingResponse
	Delivered  *store.Mantra // AwaitingResponse
}

// cycleOf derives the cycle from a user record, self-healing violations
// of the sent⇒delivered invariant back to the waiting state.
func cycleOf(u *store.User) Cycle {
	if u.SentAt == nil {
		c := Cycle{Kind: WaitingToSend}
		if u.NextDeliveryAt != nil {
			c.NextSendAt = time.UnixMilli(*u.NextDeliveryAt)
		}
		return c
	}

	if u.DeliveredMantra == nil || u.NextDeliveryAt == nil {
		log.Printf("user %s: sent mantra with no snapshot or deadline, resetting cycle", u.ID)
		u.SentAt = nil
		u.DeliveredMantra = nil
		return Cycle{Kind: WaitingToSend}
	}

	return Cycle{
		Kind:      AwaitingResponse,
		SentAt:    time.UnixMilli(*u.SentAt),
		Deadline:  time.UnixMilli(*u.NextDeliveryAt),
		Delivered: u.DeliveredMantra,
	}
}
