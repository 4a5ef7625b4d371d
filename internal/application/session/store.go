package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/petmoji/internal/application"
)

// Store keeps sessions in memory. Idle sessions are dropped by Sweep.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idleTTL  time.Duration
	clock    application.Clock
}

func NewStore(idleTTL time.Duration, clock application.Clock) *Store {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Store{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		clock:    clock,
	}
}

// NewID returns a fresh random session id.
func NewID() string { return uuid.New().String() }

// Get returns the session for id, creating it when unknown. A malformed id
// gets a new session with a new id, so callers must use the returned ID.
func (st *Store) Get(id string) *Session {
	if _, err := uuid.Parse(id); err != nil {
		id = NewID()
	}

	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	// double-check after acquiring write lock
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s = newSession(id, st.clock.Now())
	st.sessions[id] = s
	return s
}

// Len reports how many sessions are live.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions untouched for longer than the idle TTL and returns
// how many were removed.
func (st *Store) Sweep() int {
	if st.idleTTL <= 0 {
		return 0
	}
	cut := st.clock.Now().Add(-st.idleTTL)

	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.lastTouched().Before(cut) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps on every tick until ctx is done.
func (st *Store) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			st.Sweep()
		}
	}
}
