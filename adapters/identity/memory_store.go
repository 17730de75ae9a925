package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/campuslink/warden/core"
	"github.com/campuslink/warden/ports"
)

// MemoryStore is an in-memory implementation of the IdentityStore interface,
// used in tests and single-process development.
type MemoryStore struct {
	byID         map[string]*core.User
	byIdentifier map[string]*core.User
	mu           sync.RWMutex
}

// NewMemoryStore creates a new in-memory identity store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:         make(map[string]*core.User),
		byIdentifier: make(map[string]*core.User),
	}
}

var _ ports.IdentityStore = (*MemoryStore)(nil)

// Create inserts a new user, assigning an id when the caller left it empty.
func (s *MemoryStore) Create(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byIdentifier[user.Identifier]; exists {
		return core.ErrDuplicateIdentifier
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	c := *user
	s.byID[c.ID] = &c
	s.byIdentifier[c.Identifier] = &c
	return nil
}

// FindByIdentifier returns the user with the given login identifier.
func (s *MemoryStore) FindByIdentifier(ctx context.Context, identifier string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byIdentifier[identifier]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := *u
	return &out, nil
}

// FindByID returns the user with the given id.
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	out := *u
	return &out, nil
}
