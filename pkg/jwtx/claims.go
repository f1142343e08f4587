package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTokenTTL is the lifetime of an admin access token. Admin
	// sessions are long lived; there is no separate refresh token.
	DefaultAccessTokenTTL = 7 * 24 * time.Hour

	// DefaultRefreshWindow is how recently a token must have been issued for
	// a refresh request to hand the same token back.
	DefaultRefreshWindow = 30 * time.Minute
)

// Authentication method references carried in the "amr" claim.
const (
	AMRPassword = "pwd"
	AMROTP      = "otp"
)

// Claims are the admin access-token claims. Subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated admin. The security filter reloads the
	// user by this name on every request.
	Username string `json:"username,omitempty"`

	// Authentication Methods Reference ["pwd","otp"]
	AMR []string `json:"amr,omitempty"`
}

// NewAccessClaims builds minimally-correct claims.
func NewAccessClaims(subject, username string, amr []string, ttl time.Duration, issuer string, now time.Time) Claims {
	now = now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
		AMR:      amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// IssuedWithin reports whether the token was issued less than window ago.
// Tokens without an iat claim are never considered fresh.
func (c *Claims) IssuedWithin(window time.Duration, now time.Time) bool {
	if c.IssuedAt == nil {
		return false
	}
	return now.Sub(c.IssuedAt.Time) < window
}

// HasAMR reports whether the token was issued after the given method.
func (c *Claims) HasAMR(method string) bool {
	for _, m := range c.AMR {
		if m == method {
			return true
		}
	}
	return false
}
