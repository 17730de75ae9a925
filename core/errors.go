package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials covers both unknown identifier and wrong
	// password. The two are never distinguished to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidSession means no challenge exists for the presented token.
	ErrInvalidSession = errors.New("invalid session")

	// ErrAlreadyUsed means the challenge was already redeemed.
	ErrAlreadyUsed = errors.New("code already used")

	// ErrExpired means the challenge is past its expiry.
	ErrExpired = errors.New("code expired")

	// ErrInvalidCode means the submitted code does not match the challenge.
	ErrInvalidCode = errors.New("invalid code")

	// ErrInvalidToken means a session token failed signature or expiry checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNotFound is returned by stores for missing records.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateIdentifier means signup collided with an existing identifier.
	ErrDuplicateIdentifier = errors.New("identifier already registered")

	// ErrValidation covers missing or malformed request input.
	ErrValidation = errors.New("invalid request")
)

// RateLimitError signals that challenge issuance for a contact exceeded the
// sliding-window budget. It carries the retry hint surfaced to the caller.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many attempts, retry after %d minutes", e.RetryAfterMinutes())
}

// RetryAfterMinutes rounds the retry hint up to whole minutes, minimum 1.
func (e *RateLimitError) RetryAfterMinutes() int {
	m := int((e.RetryAfter + time.Minute - 1) / time.Minute)
	if m < 1 {
		m = 1
	}
	return m
}
