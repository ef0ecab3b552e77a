// Package engine orchestrates the delivery cycle: a periodic tick loop
// that scans enrolled users, delivers due mantras, expires missed ones,
// and processes responses, learning each user's availability as it goes.
//
// All timing decisions compare persisted timestamps to "now"; there are
// no in-memory timers, so the cycle survives process restarts.
package engine

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/EcstasyEngineer/mantrad/internal/catalog"
	"github.com/EcstasyEngineer/mantrad/internal/notify"
	"github.com/EcstasyEngineer/mantrad/internal/store"
)

// Store is the persistence surface the engine needs. *store.DB satisfies
// it; tests may substitute their own.
type Store interface {
	GetUser(id string) (*store.User, error)
	SaveUser(u *store.User) error
	ListEnrolled() ([]*store.User, error)
	AppendEncounter(e *store.Encounter) error
}

// Engine drives the delivery state machine for all enrolled users.
type Engine struct {
	store    Store
	catalog  *catalog.Catalog
	notifier notify.Notifier
	rng      *rand.Rand

	tickMu sync.Mutex
	stopCh chan struct{}
}

// New creates an engine. The random source is injected so content
// selection is deterministic under test; pass nil for a time-seeded one.
func New(st Store, cat *catalog.Catalog, n notify.Notifier, rng *rand.Rand) *Engine {
	if n == nil {
		n = notify.LogNotifier{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		store:    st,
		catalog:  cat,
		notifier: n,
		rng:      rng,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one tick immediately and then on every interval until Stop.
func (e *Engine) Start(interval time.Duration) {
	e.Tick(time.Now())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.Tick(time.Now())
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the tick loop.
func (e *Engine) Stop() {
	close(e.stopCh)
}

// Tick scans all enrolled users once: timeouts first, then deliveries.
// Single-flight: if a previous tick is still running, this one is skipped
// rather than overlapping it.
func (e *Engine) Tick(now time.Time) {
	if !e.tickMu.TryLock() {
		log.Printf("tick: previous scan still running, skipping")
		return
	}
	defer e.tickMu.Unlock()

	users, err := e.store.ListEnrolled()
	if err != nil {
		log.Printf("tick: list enrolled: %v", err)
		return
	}

	for _, u := range users {
		if cycleOf(u).Kind == AwaitingResponse {
			if _, err := e.CheckTimeout(u, now); err != nil {
				log.Printf("tick: user %s: timeout check: %v", u.ID, err)
				continue
			}
		}
		if e.ShouldDeliver(u, now) {
			if _, err := e.Deliver(u, now); err != nil {
				log.Printf("tick: user %s: deliver: %v", u.ID, err)
			}
		}
	}
}
