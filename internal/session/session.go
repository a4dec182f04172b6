// Package session holds the in-process session-token store. Tokens are
// opaque UUIDs mapped to an identity plus expiry; expiry is checked on
// every read so a stale token can never authenticate.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one authenticated login.
type Session struct {
	Token    string
	Username string
	UserID   string
	Role     string
	Expires  time.Time
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Store maps tokens to sessions. Safe for concurrent use.
type Store struct {
	ttl   time.Duration
	clock Clock

	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore creates a Store whose sessions live for ttl.
func NewStore(ttl time.Duration) *Store {
	return NewStoreWithClock(ttl, realClock{})
}

// NewStoreWithClock creates a Store with a custom clock (for testing).
func NewStoreWithClock(ttl time.Duration, clock Clock) *Store {
	return &Store{
		ttl:      ttl,
		clock:    clock,
		sessions: make(map[string]Session),
	}
}

// Create registers a new session and returns it with a fresh token.
func (s *Store) Create(username, userID, role string) Session {
	sess := Session{
		Token:    uuid.New().String(),
		Username: username,
		UserID:   userID,
		Role:     role,
		Expires:  s.clock.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session for token if it exists and has not expired.
// Expired sessions are removed on access.
func (s *Store) Get(token string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if !s.clock.Now().Before(sess.Expires) {
		s.Delete(token)
		return Session{}, false
	}
	return sess, true
}

// Delete removes the session for token, if any.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
