package store

import (
	"context"
	"sync"
	"time"

	"github.com/campuslink/warden/core"
	"github.com/campuslink/warden/ports"
)

// MemoryStore is an in-memory implementation of the ChallengeStore interface.
// All coordination happens under one mutex, which makes MarkUsed trivially
// atomic. Intended for tests and single-process development.
type MemoryStore struct {
	challenges map[string]*core.Challenge
	mu         sync.RWMutex
}

// NewMemoryStore creates a new in-memory challenge store.
func NewMemoryStore() ports.ChallengeStore {
	return &MemoryStore{
		challenges: make(map[string]*core.Challenge),
	}
}

// Create inserts a new challenge row.
func (s *MemoryStore) Create(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *challenge
	s.challenges[c.Token] = &c
	return nil
}

// FetchByToken returns a copy of the challenge for the given token.
func (s *MemoryStore) FetchByToken(ctx context.Context, token string) (*core.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.challenges[token]
	if !ok {
		return nil, core.ErrNotFound
	}

	out := *c
	return &out, nil
}

// MarkUsed flips the used flag under the store lock. Exactly one concurrent
// caller for a token observes the unused state.
func (s *MemoryStore) MarkUsed(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[token]
	if !ok {
		return core.ErrNotFound
	}
	if c.Used {
		return core.ErrAlreadyUsed
	}

	c.Used = true
	return nil
}

// CountRecent counts challenges issued for the contact since the cutoff.
func (s *MemoryStore) CountRecent(ctx context.Context, contact string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, c := range s.challenges {
		if c.Contact == contact && !c.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
