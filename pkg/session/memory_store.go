package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation for tests and
// single-process deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	byAccess  map[string]*Session
	byRefresh map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byAccess:  make(map[string]*Session),
		byRefresh: make(map[string]*Session),
	}
}

func (s *MemoryStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.byAccess[session.AccessToken] = &cp
	s.byRefresh[session.RefreshToken] = &cp
	return nil
}

func (s *MemoryStore) GetByAccessToken(_ context.Context, accessToken string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.byAccess[accessToken]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *MemoryStore) GetByRefreshToken(_ context.Context, refreshToken string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.byRefresh[refreshToken]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *MemoryStore) Delete(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byAccess, session.AccessToken)
	delete(s.byRefresh, session.RefreshToken)
	return nil
}
