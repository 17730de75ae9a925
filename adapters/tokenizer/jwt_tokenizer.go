package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campuslink/warden/core"
	"github.com/campuslink/warden/ports"
)

// AudienceAccess marks a token as a session access token. The opaque
// challenge-phase session token is not a JWT and never passes through here.
const AudienceAccess = "warden:access"

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs signed
// with a server-held secret. Verification is pure: signature and expiry,
// no store lookup, so revocation is eventual (token expiry) by design.
type JWTTokenizer struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer.
func NewJWTTokenizer(secret []byte, ttl time.Duration) ports.Tokenizer {
	return &JWTTokenizer{secret: secret, ttl: ttl}
}

// Issue signs a session token for the given identity and role.
func (j *JWTTokenizer) Issue(userID string, role core.Role) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
		Role: string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify parses a session token and returns the grant it carries.
// Any signature, audience, or expiry failure maps to core.ErrInvalidToken.
func (j *JWTTokenizer) Verify(tokenStr string) (*core.AccessGrant, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceAccess))

	if err != nil {
		return nil, errors.Join(core.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	return &core.AccessGrant{
		UserID:    claims.Subject,
		Role:      core.Role(claims.Role),
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
