package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitErrorRounding(t *testing.T) {
	cases := []struct {
		retryAfter time.Duration
		minutes    int
	}{
		{10 * time.Minute, 10},
		{9*time.Minute + time.Second, 10},
		{30 * time.Second, 1},
		{0, 1},
	}

	for _, tc := range cases {
		err := &RateLimitError{RetryAfter: tc.retryAfter}
		assert.Equal(t, tc.minutes, err.RetryAfterMinutes(), "retryAfter=%v", tc.retryAfter)
	}
}

func TestRateLimitErrorMatchesAs(t *testing.T) {
	var rl *RateLimitError
	wrapped := fmt.Errorf("gate: %w", &RateLimitError{RetryAfter: time.Minute})
	assert.True(t, errors.As(wrapped, &rl))
	assert.Equal(t, 1, rl.RetryAfterMinutes())
}

func TestChallengeExpired(t *testing.T) {
	now := time.Now()
	c := &Challenge{ExpiresAt: now.Add(5 * time.Minute)}

	assert.False(t, c.Expired(now))
	assert.True(t, c.Expired(now.Add(5*time.Minute)), "boundary counts as expired")
	assert.True(t, c.Expired(now.Add(6*time.Minute)))
}
