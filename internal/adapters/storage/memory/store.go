// Package memory provides an in-process Store. It backs development runs
// without Redis and the app-level tests. The daily gate it persists lasts
// only as long as the process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hexapod/packs-go/internal/domain"
)

type sessionEntry struct {
	session   domain.Session
	expiresAt time.Time
}

// Store keeps sessions and daily-open records in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	opened   map[string]time.Time
}

func New() *Store {
	return &Store{
		sessions: make(map[string]sessionEntry),
		opened:   make(map[string]time.Time),
	}
}

func (s *Store) PutSession(_ context.Context, session domain.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = sessionEntry{
		session:   session,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	session := entry.session
	return &session, nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Store) SetLastOpened(_ context.Context, identityID string, openedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened[identityID] = openedAt
	return nil
}

func (s *Store) GetLastOpened(_ context.Context, identityID string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opened[identityID], nil
}

func (s *Store) DeleteLastOpened(_ context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.opened, identityID)
	return nil
}
