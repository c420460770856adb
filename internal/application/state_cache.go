package application

import (
	"context"
	"sync"
	"time"

	"github.com/example/reservation-scheduler/internal/lifecycle"
)

const initialStateKey = "\x00initial"

// CachedStateCatalog is a read-through cache in front of a StateCatalog.
// Entries are populated on first use and live until they expire or
// Invalidate is called. Concurrent misses may each query the catalog; the
// lookups are idempotent so the last writer wins harmlessly.
type CachedStateCatalog struct {
	source  StateCatalog
	mu      sync.RWMutex
	now     func() time.Time
	ttl     time.Duration
	entries map[string]stateCacheEntry
}

type stateCacheEntry struct {
	state     ReservationState
	expiresAt time.Time
}

// NewCachedStateCatalog wraps source. A non-positive ttl defaults to five minutes.
func NewCachedStateCatalog(source StateCatalog, ttl time.Duration, now func() time.Time) *CachedStateCatalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStateCatalog{
		source:  source,
		now:     nowOr(now),
		ttl:     ttl,
		entries: make(map[string]stateCacheEntry),
	}
}

// InitialState returns the catalog's initial state.
func (c *CachedStateCatalog) InitialState(ctx context.Context) (ReservationState, error) {
	return c.lookup(initialStateKey, func() (ReservationState, error) {
		return c.source.InitialState(ctx)
	})
}

// FindByCode returns the catalog entry for code.
func (c *CachedStateCatalog) FindByCode(ctx context.Context, code lifecycle.State) (ReservationState, error) {
	return c.lookup(string(code), func() (ReservationState, error) {
		return c.source.FindByCode(ctx, code)
	})
}

// Invalidate drops every cached entry.
func (c *CachedStateCatalog) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]stateCacheEntry)
	c.mu.Unlock()
}

func (c *CachedStateCatalog) lookup(key string, load func() (ReservationState, error)) (ReservationState, error) {
	if state, ok := c.get(key); ok {
		return state, nil
	}
	state, err := load()
	if err != nil {
		return ReservationState{}, err
	}
	c.store(key, state)
	return state, nil
}

func (c *CachedStateCatalog) get(key string) (ReservationState, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return ReservationState{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return ReservationState{}, false
	}
	return entry.state, true
}

func (c *CachedStateCatalog) store(key string, state ReservationState) {
	c.mu.Lock()
	c.entries[key] = stateCacheEntry{state: state, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
