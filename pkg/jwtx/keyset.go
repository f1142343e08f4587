package jwtx

import (
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

type verificationKey struct {
	alg string
	key any
}

// KeySet holds every verification key in memory, indexed by kid. Shared
// HMAC secrets live here too but are never part of the published JWKS.
type KeySet struct {
	mu   sync.RWMutex
	jwks JWKS
	keys map[string]verificationKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]verificationKey)}
}

// AddSigner registers a signer's verification key. Keys from a PublicSigner
// are also published in the JWKS.
func (k *KeySet) AddSigner(s Signer) error {
	if err := s.Validate(); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if _, exists := k.keys[s.KID()]; exists {
		return errors.New("jwtx: duplicate kid " + s.KID())
	}
	k.keys[s.KID()] = verificationKey{alg: s.Alg(), key: s.VerificationKey()}
	if ps, ok := s.(PublicSigner); ok {
		k.jwks.Keys = append(k.jwks.Keys, ps.PublicJWK())
	}
	return nil
}

// Get returns the algorithm and verification key for the given kid.
func (k *KeySet) Get(kid string) (string, any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if vk, ok := k.keys[kid]; ok {
		return vk.alg, vk.key, nil
	}
	return "", nil, ErrNoKey
}

// PublicJWKS returns a snapshot of the published keys for HTTP serving.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	keys := make([]JWK, len(k.jwks.Keys))
	copy(keys, k.jwks.Keys)
	return JWKS{Keys: keys}
}

// IsReady returns true if the KeySet has at least one key loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}
