// internal/store/memory.go
//
// In-memory session store for the HTTP session API.
//
// Characteristics:
//   - Stores *session.Session objects keyed by anonymous session ID.
//   - Sessions are created on first mutating use (Do) by the configured
//     factory; View and Get never create one.
//   - Each session has its own mutex, so actions on one session run one at a
//     time while different sessions proceed in parallel.
//   - Sessions idle longer than a TTL are dropped by Sweep.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/emojiquest/internal/session"
)

var ErrNotFound = errors.New("session not found")

// Store defines access to play sessions.
type Store interface {
	// Do runs fn with exclusive access to the session id, creating it first
	// if needed. fn's error is returned as is.
	Do(ctx context.Context, id string, fn func(*session.Session) error) error
	// View runs fn with exclusive access to an existing session, or returns
	// ErrNotFound.
	View(ctx context.Context, id string, fn func(*session.Session) error) error
	// Get looks up an existing session without locking it.
	Get(ctx context.Context, id string) (*session.Session, error)
	// Sweep drops sessions unused for longer than idle and reports how many.
	Sweep(idle time.Duration) int
	// Len reports how many sessions are held.
	Len() int
}

type slot struct {
	mu       sync.Mutex
	sess     *session.Session
	lastUsed time.Time
	dead     bool // removed by Sweep; holders must look the id up again
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex     // guards slots map
	slots map[string]*slot // keyed by session ID

	newSession func(id string) *session.Session
	now        func() time.Time
}

// NewMemoryStore constructs a Store that builds missing sessions with newSession.
func NewMemoryStore(newSession func(id string) *session.Session) Store {
	return &memory{slots: make(map[string]*slot), newSession: newSession, now: time.Now}
}

func (m *memory) Do(ctx context.Context, id string, fn func(*session.Session) error) error {
	return m.run(ctx, id, true, fn)
}

func (m *memory) View(ctx context.Context, id string, fn func(*session.Session) error) error {
	return m.run(ctx, id, false, fn)
}

func (m *memory) run(ctx context.Context, id string, create bool, fn func(*session.Session) error) error {
	for {
		sl := m.slot(id, create)
		if sl == nil {
			return ErrNotFound
		}
		sl.mu.Lock()
		if sl.dead {
			sl.mu.Unlock()
			continue
		}
		defer sl.mu.Unlock()
		if err := ctx.Err(); err != nil {
			return err
		}
		sl.lastUsed = m.now()
		return fn(sl.sess)
	}
}

func (m *memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sl, ok := m.slots[id]; ok {
		return sl.sess, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, sl := range m.slots {
		// busy sessions are in use, so not idle
		if !sl.mu.TryLock() {
			continue
		}
		if sl.lastUsed.Before(cutoff) {
			sl.dead = true
			delete(m.slots, id)
			n++
		}
		sl.mu.Unlock()
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots)
}

// slot returns the slot for id. When create is set a missing session is
// built; otherwise a missing id yields nil.
func (m *memory) slot(id string, create bool) *slot {
	m.mu.RLock()
	sl, ok := m.slots[id]
	m.mu.RUnlock()
	if ok || !create {
		return sl
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sl, ok := m.slots[id]; ok {
		return sl
	}
	sl = &slot{sess: m.newSession(id), lastUsed: m.now()}
	m.slots[id] = sl
	return sl
}
