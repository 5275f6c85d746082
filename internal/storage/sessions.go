package storage

import (
	"sync"
	"time"
)

// SessionStorage keeps live quiz sessions by id, at most one per user.
// Every Save and Get marks the session as used; Sweep drops the idle ones.
type SessionStorage[T any] struct {
	mu       sync.Mutex
	sessions map[string]T
	owners   map[string]int64
	byUser   map[int64]string
	touched  map[string]time.Time

	now func() time.Time
}

// NewSessionStorage creates a new SessionStorage.
func NewSessionStorage[T any]() *SessionStorage[T] {
	return &SessionStorage[T]{
		sessions: make(map[string]T),
		owners:   make(map[string]int64),
		byUser:   make(map[int64]string),
		touched:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// Save stores a session under id and discards the user's previous one.
func (s *SessionStorage[T]) Save(userID int64, id string, session T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byUser[userID]; ok && prev != id {
		s.remove(prev)
	}

	s.sessions[id] = session
	s.owners[id] = userID
	s.byUser[userID] = id
	s.touched[id] = s.now()
}

// Get retrieves the session stored under id.
func (s *SessionStorage[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if ok {
		s.touched[id] = s.now()
	}
	return session, ok
}

// Delete removes the session stored under id.
func (s *SessionStorage[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(id)
}

// Sweep removes sessions not used for longer than maxIdle and returns how
// many were removed. A non-positive maxIdle removes nothing.
func (s *SessionStorage[T]) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, at := range s.touched {
		if at.Before(cutoff) {
			s.remove(id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *SessionStorage[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// remove must be called with mu held.
func (s *SessionStorage[T]) remove(id string) {
	if userID, ok := s.owners[id]; ok && s.byUser[userID] == id {
		delete(s.byUser, userID)
	}
	delete(s.sessions, id)
	delete(s.owners, id)
	delete(s.touched, id)
}
