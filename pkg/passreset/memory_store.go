package passreset

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of both UserStorage and
// CodeStorage for tests and single-process use.
type MemoryStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
	hashes  map[uuid.UUID][]byte
	codes   map[string]*ResetCode
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
		hashes:  make(map[uuid.UUID][]byte),
		codes:   make(map[string]*ResetCode),
	}
}

// PutUser adds or replaces a user record.
func (s *MemoryStore) PutUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[strings.ToLower(user.Email)] = user.ID
}

// PasswordHash returns the stored hash for a user, nil if none was set.
func (s *MemoryStore) PasswordHash(userID uuid.UUID) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hashes[userID]
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *MemoryStore) UpdatePasswordHash(_ context.Context, userID uuid.UUID, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return ErrUserNotFound
	}
	s.hashes[userID] = append([]byte(nil), hash...)
	return nil
}

func (s *MemoryStore) SaveCode(_ context.Context, code *ResetCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *code
	s.codes[code.Hash] = &cp
	return nil
}

func (s *MemoryStore) GetCodeByHash(_ context.Context, hash string) (*ResetCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.codes[hash]
	if !ok {
		return nil, ErrCodeNotFound
	}
	cp := *code
	return &cp, nil
}

// ConsumeCode removes and returns the code under the store lock, so exactly
// one concurrent redemption can succeed.
func (s *MemoryStore) ConsumeCode(_ context.Context, hash string) (*ResetCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.codes[hash]
	if !ok {
		return nil, ErrCodeNotFound
	}
	delete(s.codes, hash)
	return code, nil
}
