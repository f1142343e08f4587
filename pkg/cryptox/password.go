package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the strength most existing admin databases were
// hashed with, so stored hashes keep verifying without a rehash.
const DefaultBcryptCost = 10

var (
	ErrPasswordMismatch = errors.New("password does not match")
	ErrInvalidHash      = errors.New("invalid hash format: not bcrypt")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
)

// PasswordEncoder hashes and verifies passwords with bcrypt. The zero value
// uses DefaultBcryptCost.
type PasswordEncoder struct {
	cost int
}

// NewPasswordEncoder returns an encoder with the given cost. Costs outside
// bcrypt's accepted range fall back to DefaultBcryptCost.
func NewPasswordEncoder(cost int) *PasswordEncoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordEncoder{cost: cost}
}

// Cost reports the bcrypt cost new hashes are generated with.
func (e *PasswordEncoder) Cost() int {
	if e == nil || e.cost == 0 {
		return DefaultBcryptCost
	}
	return e.cost
}

// Encode returns a salted bcrypt hash of raw in modular crypt format ($2a$...).
func (e *PasswordEncoder) Encode(raw string) (string, error) {
	if len(raw) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), e.Cost())
	if err != nil {
		return "", fmt.Errorf("cryptox: bcrypt: %w", err)
	}
	return string(hash), nil
}

// Matches compares raw against a stored bcrypt hash. It returns nil on a
// match, ErrPasswordMismatch on a wrong password and ErrInvalidHash when the
// stored value is not a bcrypt hash at all.
func (e *PasswordEncoder) Matches(raw, encoded string) error {
	if encoded == "" {
		return ErrInvalidHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(raw))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
}

// UpgradeEncoding reports whether a stored hash was produced with a lower
// cost than the encoder is configured for.
func (e *PasswordEncoder) UpgradeEncoding(encoded string) bool {
	cost, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return false
	}
	return cost < e.Cost()
}

// GeneratePassword returns a random 12 character alphanumeric password.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 12
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
