package registry

import (
	"context"
	"sync"
	"time"

	"github.com/huddle-rtc/huddle/internal/domain"
	"github.com/huddle-rtc/huddle/internal/infrastructure/logging"
	"github.com/huddle-rtc/huddle/internal/infrastructure/metrics"
)

// entry pairs a room with the mutex that makes every mutation on it
// single-writer. evicted marks entries removed from the map so a caller that
// raced the sweep retries instead of mutating an orphan.
type entry struct {
	mu      sync.Mutex
	room    *domain.Room
	evicted bool
}

// Registry owns all room state. Rooms are created lazily on first resolve and
// evicted by the sweep after the inactivity timeout. The registry is an
// explicit dependency of the router and the sweep; there is no package-level
// instance.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*entry

	inactivityTimeout time.Duration
	sweepInterval     time.Duration

	logger  logging.Logger
	metrics *metrics.Relay
}

func New(inactivityTimeout, sweepInterval time.Duration, logger logging.Logger, m *metrics.Relay) *Registry {
	if inactivityTimeout == 0 {
		inactivityTimeout = 30 * time.Minute
	}
	if sweepInterval == 0 {
		sweepInterval = time.Minute
	}

	return &Registry{
		rooms:             make(map[string]*entry),
		inactivityTimeout: inactivityTimeout,
		sweepInterval:     sweepInterval,
		logger:            logger,
		metrics:           m,
	}
}

// WithRoom resolves the room, creating it when absent, and runs fn while
// holding the room's lock. LastActivity is stamped on every resolve,
// including reads used for routing.
func (r *Registry) WithRoom(id string, fn func(*domain.Room)) {
	for {
		r.mu.Lock()
		e, ok := r.rooms[id]
		if !ok {
			e = &entry{room: domain.NewRoom(id)}
			r.rooms[id] = e
			r.setGauge(len(r.rooms))
		}
		r.mu.Unlock()

		e.mu.Lock()
		if e.evicted {
			e.mu.Unlock()
			continue
		}
		e.room.LastActivity = time.Now()
		fn(e.room)
		e.mu.Unlock()
		return
	}
}

// WithExistingRoom is WithRoom without the create path. Returns false when
// the room is absent, in which case fn never runs.
func (r *Registry) WithExistingRoom(id string, fn func(*domain.Room)) bool {
	r.mu.RLock()
	e, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.evicted {
		return false
	}
	e.room.LastActivity = time.Now()
	fn(e.room)
	return true
}

// DeleteIfEmpty drops the room when it has no members left. A join that
// raced the last disconnect keeps the room alive.
func (r *Registry) DeleteIfEmpty(id string) bool {
	r.mu.RLock()
	e, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.evicted || e.room.MemberCount() > 0 {
		return false
	}
	e.evicted = true

	r.mu.Lock()
	if r.rooms[id] == e {
		delete(r.rooms, id)
	}
	r.setGauge(len(r.rooms))
	r.mu.Unlock()
	return true
}

// Sweep evicts every room idle longer than the inactivity timeout,
// unconditionally. Connections still pointing at an evicted id will re-create
// a fresh room on their next join; that resurrection is accepted behavior.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.RLock()
	snapshot := make(map[string]*entry, len(r.rooms))
	for id, e := range r.rooms {
		snapshot[id] = e
	}
	r.mu.RUnlock()

	evicted := 0
	cutoff := now.Add(-r.inactivityTimeout)
	for id, e := range snapshot {
		e.mu.Lock()
		if !e.evicted && e.room.LastActivity.Before(cutoff) {
			e.evicted = true

			r.mu.Lock()
			if r.rooms[id] == e {
				delete(r.rooms, id)
			}
			r.setGauge(len(r.rooms))
			r.mu.Unlock()

			evicted++
		}
		e.mu.Unlock()
	}
	return evicted
}

// Run drives the eviction sweep until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(time.Now()); n > 0 && r.logger != nil {
				r.logger.Info(logging.General, logging.Eviction, "evicted idle rooms", map[logging.ExtraKey]any{
					"count": n,
				})
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) setGauge(n int) {
	if r.metrics != nil {
		r.metrics.RoomsActive.Set(float64(n))
	}
}
