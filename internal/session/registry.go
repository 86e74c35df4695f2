package session

import "sync"

// Registry owns every live session, keyed by opaque user identity. Lookups
// are insert-if-absent under one mutex so two near-simultaneous first
// touches by the same user cannot create duplicate sessions. Sessions live
// until Clear or process exit; there is no expiry and no persistence.
type Registry struct {
	mu        sync.Mutex
	maxLength int
	sessions  map[string]*Session
}

// NewRegistry creates an empty registry whose sessions cap their expression
// buffers at maxLength characters.
func NewRegistry(maxLength int) *Registry {
	return &Registry{
		maxLength: maxLength,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the user's session, creating it on first access.
func (r *Registry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		s = newSession(r.maxLength)
		r.sessions[userID] = s
	}
	return s
}

// Clear drops the user's session entirely. The next Get starts fresh.
func (r *Registry) Clear(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
