package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
)

var (
	// ErrNotFound is returned when no session exists for a given id.
	ErrNotFound = errors.New("no dashboard session for id")
)

// session holds a dashboard controller and when it was last used.
type session struct {
	controller *dashboard.Controller
	lastSeen   time.Time
}

// SessionStore is a concurrency-safe in-memory registry of dashboard sessions.
type SessionStore struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*session

	// retention configuration
	maxSessions int           // max number of live sessions
	maxIdle     time.Duration // optional max idle time

	now func() time.Time
}

// NewSessionStore creates a new SessionStore with optional limits.
// If maxSessions or maxIdle is <= 0, it is treated as unlimited.
func NewSessionStore(maxSessions int, maxIdle time.Duration) *SessionStore {
	return &SessionStore{
		data:        make(map[string]*session),
		maxSessions: maxSessions,
		maxIdle:     maxIdle,
		now:         time.Now,
	}
}

// Create registers a controller under a fresh id and enforces retention by
// count, evicting the least recently seen sessions.
func (s *SessionStore) Create(c *dashboard.Controller) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[id] = &session{controller: c, lastSeen: s.now()}

	for s.maxSessions > 0 && len(s.data) > s.maxSessions {
		oldestID := ""
		var oldest time.Time
		for k, sess := range s.data {
			if oldestID == "" || sess.lastSeen.Before(oldest) {
				oldestID, oldest = k, sess.lastSeen
			}
		}
		delete(s.data, oldestID)
	}
	return id
}

// Get returns the controller for id and marks the session as seen.
func (s *SessionStore) Get(id string) (*dashboard.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok || s.expired(sess) {
		return nil, ErrNotFound
	}
	sess.lastSeen = s.now()
	return sess.controller, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return ErrNotFound
	}
	delete(s.data, id)
	return nil
}

// Prune enforces retention by idle age and returns how many sessions were
// removed.
func (s *SessionStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.data {
		if s.expired(sess) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *SessionStore) expired(sess *session) bool {
	return s.maxIdle > 0 && s.now().Sub(sess.lastSeen) > s.maxIdle
}
