package ports

import "github.com/campuslink/warden/core"

// Tokenizer issues and verifies signed session tokens. Verification is
// stateless: signature and expiry only, no store lookup.
type Tokenizer interface {
	Issue(userID string, role core.Role) (string, error)
	Verify(token string) (*core.AccessGrant, error)
}
