package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACSecretSize is the shortest shared secret accepted for HS512.
const MinHMACSecretSize = 32

// HS512Signer signs tokens with a shared HMAC-SHA512 secret. The secret is
// never published.
type HS512Signer struct {
	kid    string
	secret []byte
}

// NewSignerHS512 creates an HS512 signer from a shared secret.
func NewSignerHS512(kid string, secret []byte) (*HS512Signer, error) {
	s := &HS512Signer{kid: kid, secret: append([]byte(nil), secret...)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HS512Signer) Alg() string          { return jwt.SigningMethodHS512.Alg() }
func (s *HS512Signer) KID() string          { return s.kid }
func (s *HS512Signer) VerificationKey() any { return s.secret }

// Sign turns claims into a signed JWT string.
func (s *HS512Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.secret)
}

// Validate checks the secret is long enough to be worth using.
func (s *HS512Signer) Validate() error {
	if s.kid == "" {
		return errors.New("jwtx: HS512 signer requires a kid")
	}
	if len(s.secret) < MinHMACSecretSize {
		return fmt.Errorf("jwtx: HS512 secret must be at least %d bytes, got %d", MinHMACSecretSize, len(s.secret))
	}
	return nil
}
