// Package memory provides the in-memory session store.
package memory

import (
	"context"
	"sync"
	"time"

	"chamber/internal/session"
	id "chamber/pkg/domain"
	"chamber/pkg/platform/sentinel"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*session.Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[id.SessionID]*session.Session)}
}

func (s *Store) Save(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	s.sessions[sess.ID] = &copied
	return nil
}

func (s *Store) FindByID(_ context.Context, sessionID id.SessionID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (s *Store) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *Store) Touch(_ context.Context, sessionID id.SessionID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	sess.LastVerifiedAt = at
	sess.AccessCount++
	return nil
}

func (s *Store) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for sessionID, sess := range s.sessions {
		if sess.ExpiredAt(now) {
			delete(s.sessions, sessionID)
			removed++
		}
	}
	return removed, nil
}
