package reactive

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is how long an idle session survives a sweep.
const DefaultTTL = 30 * time.Minute

// Store keeps live sessions by ID and evicts idle ones.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	graph    *Graph
	widgets  Widgets
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a Store whose sessions share graph and widgets.
// A non-positive ttl uses DefaultTTL; a nil now uses time.Now.
func NewStore(graph *Graph, widgets Widgets, ttl time.Duration, now func() time.Time) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: make(map[string]*Session),
		graph:    graph,
		widgets:  widgets,
		ttl:      ttl,
		now:      now,
	}
}

// Create starts a new session with default selections and registers it.
func (st *Store) Create() (*Session, error) {
	s, err := NewSession(st.graph, st.widgets, st.now)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s, nil
}

// Get returns the session with id and marks it active.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.Touch()
	}
	return s, ok
}

// Lookup is Get returning ErrSessionNotFound for unknown ids.
func (st *Store) Lookup(id string) (*Session, error) {
	s, ok := st.Get(id)
	if !ok {
		return nil, fmt.Errorf("reactive: %w: %q", ErrSessionNotFound, id)
	}
	return s, nil
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.idleSince()) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// TTL returns the idle timeout.
func (st *Store) TTL() time.Duration { return st.ttl }
