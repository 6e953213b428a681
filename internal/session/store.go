package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastUsed time.Time
}

// Store keeps sessions of the HTTP service apart. Every session has its own
// table and its own lock; nothing is shared between ids.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewStore creates a store. Sessions idle for longer than ttl are removed by
// Sweep; ttl <= 0 keeps them forever.
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Create registers a session and returns its id
func (s *Store) Create(sess *Session) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.entries[id] = &entry{session: sess, lastUsed: s.now()}
	count := len(s.entries)
	s.mu.Unlock()

	s.logger.Info("Session created",
		zap.String("session_id", id),
		zap.Int("sessions", count))
	return id
}

// With runs fn while holding the session's lock
func (s *Store) With(id string, fn func(*Session) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = s.now()
	return fn(e.session)
}

// Get returns the session with id. The caller must not use it concurrently
// with With; prefer With for anything that mutates.
func (s *Store) Get(id string) (*Session, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.session, nil
}

// Delete removes a session
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.entries, id)

	s.logger.Info("Session deleted", zap.String("session_id", id))
	return nil
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes sessions idle for longer than the ttl and returns how many
// were removed
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.ttl)
	removed := 0

	s.mu.Lock()
	for id, e := range s.entries {
		// a session busy in With is not idle
		if !e.mu.TryLock() {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
		e.mu.Unlock()
	}
	remaining := len(s.entries)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("Expired sessions removed",
			zap.Int("removed", removed),
			zap.Int("remaining", remaining),
			zap.Duration("ttl", s.ttl))
	}
	return removed
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}
