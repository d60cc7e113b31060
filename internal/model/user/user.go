package user

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already registered")
)

// User is an identity record, immutable after signup. The password hash is
// owned by the auth service; nothing else reads it.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Store persists identity records.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
}

// MemoryStore keeps users in process memory. Used in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]User
}

// NewMemoryStore bootstraps an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, users: make(map[string]User)}
}

// Create stores a user, rejecting duplicate usernames.
func (s *MemoryStore) Create(_ context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; ok {
		return User{}, ErrUsernameTaken
	}

	u.ID = s.nextID
	s.nextID++
	s.users[u.Username] = u
	return u, nil
}

// FindByUsername looks a user up by exact username.
func (s *MemoryStore) FindByUsername(_ context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}
