package bucketlist

import (
	"strings"
	"sync"

	models "bucketlist/internal/domain/models/bucketlist"
)

// SessionRegistry keeps one session per signed-in actor, keyed by email
type SessionRegistry struct {
	deps Dependencies

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry creates an empty registry whose sessions share deps
func NewSessionRegistry(deps Dependencies) *SessionRegistry {
	return &SessionRegistry{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Session returns the actor's session, creating it on first use.
// Anonymous actors get a fresh, unregistered session every time.
func (r *SessionRegistry) Session(actor models.Actor) *Session {
	if !actor.Authenticated() {
		return NewSession(actor, r.deps)
	}

	key := sessionKey(actor.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok && s.Actor() == actor {
		return s
	}

	// A changed display name starts a new session so snapshots stay current.
	s := NewSession(actor, r.deps)
	r.sessions[key] = s
	return s
}

// Drop forgets the actor's session; reports whether one existed
func (r *SessionRegistry) Drop(email string) bool {
	key := sessionKey(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[key]; !ok {
		return false
	}
	delete(r.sessions, key)
	return true
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func sessionKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
