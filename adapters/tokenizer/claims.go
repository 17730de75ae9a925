package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with the role carried by a
// session token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}
