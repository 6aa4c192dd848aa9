package deck

import (
	"context"
	"sync"
	"time"
)

// DefaultLockTimeout bounds how long a mutation waits for a session's lock
// before surfacing a retryable ConcurrencyError.
const DefaultLockTimeout = 10 * time.Second

// sessionEntry holds one session's committed state. gate serializes
// mutations; state guards the committed snapshot so readers never observe a
// half-applied deck.
type sessionEntry struct {
	gate  chan struct{}
	state sync.RWMutex
	deck  *SlideDeck
	html  string
}

// SessionCache keys committed deck models by session id. It is an explicit
// keyed store with a per-key mutation lock, never process-global state:
// sessions stay independent and testable in isolation.
type SessionCache struct {
	builder     *Builder
	lockTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewSessionCache creates a cache. A nil builder selects the default; a
// non-positive timeout selects DefaultLockTimeout.
func NewSessionCache(b *Builder, lockTimeout time.Duration) *SessionCache {
	if b == nil {
		b = NewBuilder(nil)
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &SessionCache{
		builder:     b,
		lockTimeout: lockTimeout,
		sessions:    make(map[string]*sessionEntry),
	}
}

func (c *SessionCache) entry(sessionID string) *sessionEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sessions[sessionID]
	if !ok {
		e = &sessionEntry{gate: make(chan struct{}, 1)}
		c.sessions[sessionID] = e
	}
	return e
}

// acquire takes the session's mutation lock, bounded by the configured
// timeout and the caller's context.
func (c *SessionCache) acquire(ctx context.Context, sessionID string, e *sessionEntry) error {
	timer := time.NewTimer(c.lockTimeout)
	defer timer.Stop()
	select {
	case e.gate <- struct{}{}:
		return nil
	case <-timer.C:
		return &ConcurrencyError{SessionID: sessionID, Timeout: c.lockTimeout}
	case <-ctx.Done():
		return &ConcurrencyError{SessionID: sessionID, Timeout: c.lockTimeout}
	}
}

// WithSessionLock runs one mutation under the session's exclusive lock.
// fn receives the currently committed deck (nil if the session has none
// yet) and returns the deck to commit plus any advisory violations. The
// commit covers the model and the canonical HTML together and happens only
// when fn succeeds; on error the previous state is untouched. A fn that
// returns a nil deck with a nil error leaves the state as-is.
func (c *SessionCache) WithSessionLock(ctx context.Context, sessionID string, fn func(current *SlideDeck) (*SlideDeck, []Violation, error)) ([]Violation, error) {
	e := c.entry(sessionID)
	if err := c.acquire(ctx, sessionID, e); err != nil {
		return nil, err
	}
	defer func() { <-e.gate }()

	e.state.RLock()
	current := e.deck
	e.state.RUnlock()

	next, advisories, err := fn(current)
	if err != nil {
		return advisories, err
	}
	if next == nil {
		return advisories, nil
	}

	html := ToHTML(next)
	e.state.Lock()
	e.deck = next
	e.html = html
	e.state.Unlock()
	return advisories, nil
}

// Snapshot returns the committed deck and its canonical HTML without taking
// the mutation lock. The returned deck must be treated as immutable; every
// mutation path produces a new model, so concurrent readers always see a
// fully committed snapshot.
func (c *SessionCache) Snapshot(sessionID string) (*SlideDeck, string, bool) {
	c.mu.Lock()
	e, ok := c.sessions[sessionID]
	c.mu.Unlock()
	if !ok {
		return nil, "", false
	}
	e.state.RLock()
	defer e.state.RUnlock()
	if e.deck == nil {
		return nil, "", false
	}
	return e.deck, e.html, true
}

// Load reconstructs a session's model from a persisted snapshot, replacing
// whatever the cache held for that session. Used on session resume.
func (c *SessionCache) Load(ctx context.Context, sessionID, persistedHTML string) (*SlideDeck, error) {
	d, err := c.builder.Parse(persistedHTML)
	if err != nil {
		return nil, err
	}
	_, err = c.WithSessionLock(ctx, sessionID, func(*SlideDeck) (*SlideDeck, []Violation, error) {
		return d, nil, nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Drop discards a session's cached state when the session ends.
func (c *SessionCache) Drop(sessionID string) {
	c.mu.Lock()
	delete(c.sessions, sessionID)
	c.mu.Unlock()
}

// Sessions returns the ids of all sessions currently holding a committed
// deck.
func (c *SessionCache) Sessions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.sessions))
	for id, e := range c.sessions {
		e.state.RLock()
		has := e.deck != nil
		e.state.RUnlock()
		if has {
			ids = append(ids, id)
		}
	}
	return ids
}
