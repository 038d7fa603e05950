package session

import (
	"context"
	"sync"
)

// Manager tracks the open session per page ID so the editing surface can ask
// whether re-opening a page would clobber unsaved work. Sessions it hands out
// remain fully independent of each other.
type Manager struct {
	store Store
	opts  []Option

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions are backed by store and built
// with opts.
func NewManager(store Store, opts ...Option) *Manager {
	return &Manager{
		store:    store,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Open pulls the page and returns its session. If a session for the page is
// already tracked, that same session is re-pulled (its confirm callback
// guards unsaved content); otherwise a fresh one is created and tracked under
// the canonical ID from the store's response.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok {
		s = New(m.store, m.opts...)
	}

	if err := s.Pull(ctx, id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the tracked session for id, if any.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// HasUnsavedSession reports whether a bound session for id holds edits that
// have not been pushed. Callers use this to decide whether to prompt before
// re-pulling.
func (m *Manager) HasUnsavedSession(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return s.State() == StateBound && s.Dirty()
}

// Close discards the session for id and stops tracking it.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}
