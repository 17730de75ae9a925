package core

import "time"

// Challenge tracks one issued one-time code: who it was issued to, where it
// was delivered, and whether it has been redeemed. The plaintext code is
// never stored; only its hash is.
type Challenge struct {
	Token     string    // Opaque unguessable capability handed to the client
	UserID    string    // Identity the challenge belongs to
	Contact   string    // Delivery address, also the rate-limit key
	CodeHash  string    // One-way hash of the numeric code
	CreatedAt time.Time // When the challenge was issued
	ExpiresAt time.Time // CreatedAt + OTC TTL
	Used      bool      // Set exactly once, on successful verification
}

// Expired reports whether the challenge is past its expiry at the given time.
func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// AccessGrant is what a verified session token decodes to. Validity is
// determined purely by signature and expiry; there is no store lookup.
type AccessGrant struct {
	UserID    string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
