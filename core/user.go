package core

// Role is the coarse role attached to an identity. The core only ever
// compares roles for equality; permission modeling lives elsewhere.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// User is an identity record as the identity store returns it.
// The core never mutates it.
type User struct {
	ID           string // Unique identifier, assigned by the store
	Identifier   string // Login identifier (email or login-id)
	DisplayName  string // Human-readable name
	PasswordHash string // Salted adaptive hash, never the plaintext
	Role         Role   // Role carried into issued session tokens
	Contact      string // Phone number or email the one-time code goes to
}
