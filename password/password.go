// Package password wraps the adaptive password hashing used for first-factor
// verification. Comparison cost is borne by bcrypt; callers never see or log
// plaintext beyond this boundary.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor for newly hashed passwords.
const DefaultCost = 12

// Hash returns the salted bcrypt hash of the plaintext.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext matches the stored hash. The
// comparison is constant-time inside bcrypt.
func Verify(plain, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}
