package service

import (
	"context"
	"fmt"
	"time"

	"github.com/campuslink/warden/core"
	"github.com/campuslink/warden/ports"
)

// RateLimiter gates challenge issuance per contact over a sliding window.
// The count is taken over existing challenge rows, so it is automatically
// consistent with the challenge store; a concurrent burst may transiently
// overshoot the limit, which is acceptable for an anti-abuse control.
type RateLimiter struct {
	store  ports.ChallengeStore
	limit  int
	window time.Duration
}

// NewRateLimiter creates a rate limiter counting against the given store.
func NewRateLimiter(store ports.ChallengeStore, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{store: store, limit: limit, window: window}
}

// Check returns nil when issuance for the contact is allowed, or a
// *core.RateLimitError with a retry hint bounded by the window.
func (r *RateLimiter) Check(ctx context.Context, contact string) error {
	now := time.Now()
	count, err := r.store.CountRecent(ctx, contact, now.Add(-r.window))
	if err != nil {
		return fmt.Errorf("failed to count recent challenges: %w", err)
	}

	if count >= r.limit {
		return &core.RateLimitError{RetryAfter: r.window}
	}
	return nil
}
