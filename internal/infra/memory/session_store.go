package memory

import (
	"context"
	"sync"
	"time"

	"brainquiz/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]domain.Session),
	}
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if !sess.ExpiresAt.IsZero() && !sess.ExpiresAt.After(s.clock()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

// Save stores a copy of sess and slides its expiry forward.
func (s *SessionStore) Save(_ context.Context, sess domain.Session) error {
	if s.ttl > 0 {
		sess.ExpiresAt = s.clock().Add(s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if !sess.ExpiresAt.IsZero() && !sess.ExpiresAt.After(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// cloneSession copies the quiz and flash slices so callers never share state with the map.
func cloneSession(sess domain.Session) domain.Session {
	if sess.Quiz != nil {
		quiz := *sess.Quiz
		quiz.QuestionIDs = append([]int64(nil), quiz.QuestionIDs...)
		sess.Quiz = &quiz
	}
	if sess.Flashes != nil {
		sess.Flashes = append([]string(nil), sess.Flashes...)
	}
	return sess
}
