// Package otc generates one-time codes and the opaque session tokens that
// reference their challenges.
package otc

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// tokenBytes is the entropy of a challenge session token. 32 bytes renders
// to 64 hex characters.
const tokenBytes = 32

// Code draws a numeric code uniformly over [0, 10^length), zero-padded to
// length digits. Leading zeros are expected; collisions across sessions are
// harmless because uniqueness lives in the session token.
func Code(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("invalid code length %d", length)
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// SessionToken draws the unguessable capability a client uses to reference
// a pending challenge.
func SessionToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashCode returns the hash persisted in place of the plaintext code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
