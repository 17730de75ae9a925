package ports

import (
	"context"
	"time"

	"github.com/campuslink/warden/core"
)

// ChallengeStore persists one-time-code challenges. Expiry is enforced by
// comparison against ExpiresAt, never by deleting rows; backends may reap
// old rows as storage hygiene.
type ChallengeStore interface {
	// Create inserts a new challenge row.
	Create(ctx context.Context, challenge *core.Challenge) error

	// FetchByToken returns the challenge for the given opaque token,
	// or core.ErrNotFound.
	FetchByToken(ctx context.Context, token string) (*core.Challenge, error)

	// MarkUsed flips the used flag exactly once. It must be atomic with
	// respect to concurrent calls for the same token: one caller wins,
	// every other caller gets core.ErrAlreadyUsed. Missing tokens return
	// core.ErrNotFound.
	MarkUsed(ctx context.Context, token string) error

	// CountRecent returns how many challenges were issued for the contact
	// since the given cutoff. Used for sliding-window rate limiting.
	CountRecent(ctx context.Context, contact string, since time.Time) (int, error)
}
