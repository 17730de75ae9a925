package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/warden/core"
	"github.com/campuslink/warden/internal/otc"
	"github.com/campuslink/warden/ports"
)

// Both adapters must satisfy the same contract, so every test runs against
// both the memory store and a miniredis-backed redis store.
func forEachStore(t *testing.T, fn func(t *testing.T, s ports.ChallengeStore)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		fn(t, NewRedisStore(client))
	})
}

func newChallenge(contact string, createdAt time.Time) *core.Challenge {
	token, _ := otc.SessionToken()
	return &core.Challenge{
		Token:     token,
		UserID:    "user-1",
		Contact:   contact,
		CodeHash:  otc.HashCode("123456"),
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(5 * time.Minute),
	}
}

func TestCreateAndFetch(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.ChallengeStore) {
		ctx := context.Background()
		c := newChallenge("+15550001111", time.Now())
		require.NoError(t, s.Create(ctx, c))

		got, err := s.FetchByToken(ctx, c.Token)
		require.NoError(t, err)
		assert.Equal(t, c.Token, got.Token)
		assert.Equal(t, c.UserID, got.UserID)
		assert.Equal(t, c.Contact, got.Contact)
		assert.Equal(t, c.CodeHash, got.CodeHash)
		assert.False(t, got.Used)
	})
}

func TestFetchUnknownToken(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.ChallengeStore) {
		_, err := s.FetchByToken(context.Background(), "no-such-token")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestMarkUsedTransitions(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.ChallengeStore) {
		ctx := context.Background()
		c := newChallenge("+15550001111", time.Now())
		require.NoError(t, s.Create(ctx, c))

		require.NoError(t, s.MarkUsed(ctx, c.Token))

		got, err := s.FetchByToken(ctx, c.Token)
		require.NoError(t, err)
		assert.True(t, got.Used)

		assert.ErrorIs(t, s.MarkUsed(ctx, c.Token), core.ErrAlreadyUsed)
		assert.ErrorIs(t, s.MarkUsed(ctx, "no-such-token"), core.ErrNotFound)
	})
}

func TestMarkUsedSingleWinnerUnderConcurrency(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.ChallengeStore) {
		ctx := context.Background()
		c := newChallenge("+15550001111", time.Now())
		require.NoError(t, s.Create(ctx, c))

		const attempts = 32
		var wg sync.WaitGroup
		results := make([]error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = s.MarkUsed(ctx, c.Token)
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range results {
			switch {
			case err == nil:
				winners++
			case errors.Is(err, core.ErrAlreadyUsed):
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, winners, "exactly one concurrent MarkUsed must win")
	})
}

func TestCountRecentWindow(t *testing.T) {
	forEachStore(t, func(t *testing.T, s ports.ChallengeStore) {
		ctx := context.Background()
		now := time.Now()
		contact := "+15550002222"

		// Two inside the window, one well before it, one for another contact.
		require.NoError(t, s.Create(ctx, newChallenge(contact, now.Add(-time.Minute))))
		require.NoError(t, s.Create(ctx, newChallenge(contact, now.Add(-9*time.Minute))))
		require.NoError(t, s.Create(ctx, newChallenge(contact, now.Add(-11*time.Minute))))
		require.NoError(t, s.Create(ctx, newChallenge("+15550003333", now)))

		n, err := s.CountRecent(ctx, contact, now.Add(-10*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.CountRecent(ctx, contact, now.Add(-20*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = s.CountRecent(ctx, "+15550009999", now.Add(-10*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestStoredRecordNeverContainsPlaintextCode(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client)

	ctx := context.Background()
	code := "482913"
	token, err := otc.SessionToken()
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, s.Create(ctx, &core.Challenge{
		Token:     token,
		UserID:    "user-1",
		Contact:   "+15550001111",
		CodeHash:  otc.HashCode(code),
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}))

	raw := mr.Dump()
	assert.NotContains(t, raw, code, "plaintext code must never be persisted")
}
