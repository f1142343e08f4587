package jwtx

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/aussiebroadwan/blogadmin/pkg/cryptox"
)

// KeyManager owns the signing keys of an instance. Tokens are signed with a
// randomly selected key and verified by kid through the shared KeySet.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	mu      sync.RWMutex
	signers []Signer
}

// KeyManagerOptions configures the KeyManager for a specific use case.
type KeyManagerOptions struct {
	// Algorithms lists which signing algorithms to mint keys for.
	// Supported values: "HS512", "EdDSA". Defaults to both.
	Algorithms []string

	// Issuer is the issuer claim (iss) that will be validated in tokens.
	Issuer string

	// HMACSecret pins the HS512 key. When empty, NumKeys ephemeral secrets
	// are generated instead and tokens die with the process.
	HMACSecret []byte

	// EdDSAKey pins the EdDSA key. When nil, NumKeys ephemeral keys are
	// generated.
	EdDSAKey ed25519.PrivateKey

	// NumKeys is the number of ephemeral keys per algorithm. Defaults to 2,
	// capped at 10.
	NumKeys int
}

// NewKeyManager builds a KeyManager from the given options.
func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	algorithms := opts.Algorithms
	if len(algorithms) == 0 {
		algorithms = []string{AlgorithmHS512, AlgorithmEdDSA}
	}

	numKeys := opts.NumKeys
	if numKeys <= 0 {
		numKeys = 2
	}
	if numKeys > 10 {
		numKeys = 10
	}

	keyset := NewKeySet()
	km := &KeyManager{
		Verifier: NewVerifier(keyset, opts.Issuer),
		KeySet:   keyset,
	}

	for _, alg := range slices.Compact(slices.Clone(algorithms)) {
		signers, err := buildSigners(alg, opts, numKeys)
		if err != nil {
			return nil, err
		}
		for _, s := range signers {
			if err := km.AddSigner(s); err != nil {
				return nil, err
			}
		}
	}

	return km, nil
}

func buildSigners(alg string, opts KeyManagerOptions, numKeys int) ([]Signer, error) {
	switch alg {
	case AlgorithmHS512:
		if len(opts.HMACSecret) > 0 {
			s, err := NewSignerHS512(stableKID("hs512", opts.HMACSecret), opts.HMACSecret)
			if err != nil {
				return nil, err
			}
			return []Signer{s}, nil
		}

		signers := make([]Signer, 0, numKeys)
		for i := 0; i < numKeys; i++ {
			secret, err := cryptox.GenerateToken(cryptox.TokenSize512)
			if err != nil {
				return nil, err
			}
			kid, err := randomKID("hs512")
			if err != nil {
				return nil, err
			}
			s, err := NewSignerHS512(kid, []byte(secret))
			if err != nil {
				return nil, err
			}
			signers = append(signers, s)
		}
		return signers, nil

	case AlgorithmEdDSA:
		if opts.EdDSAKey != nil {
			if len(opts.EdDSAKey) != ed25519.PrivateKeySize {
				return nil, fmt.Errorf("jwtx: invalid Ed25519 private key size")
			}
			pub, _ := opts.EdDSAKey.Public().(ed25519.PublicKey)
			s, err := NewSignerEdDSA(stableKID("ed25519", pub), opts.EdDSAKey)
			if err != nil {
				return nil, err
			}
			return []Signer{s}, nil
		}

		signers := make([]Signer, 0, numKeys)
		for i := 0; i < numKeys; i++ {
			key, err := cryptox.GenerateEd25519Key()
			if err != nil {
				return nil, err
			}
			kid, err := randomKID("ed25519")
			if err != nil {
				return nil, err
			}
			s, err := NewSignerEdDSA(kid, key)
			if err != nil {
				return nil, err
			}
			signers = append(signers, s)
		}
		return signers, nil

	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: HS512, EdDSA)", alg)
	}
}

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.NumSigners() > 0 && km.KeySet.IsReady()
}

// GetSigner returns a randomly selected signer from the available keys.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	}
	return km.signers[rand.IntN(len(km.signers))]
}

// Sign signs claims with a randomly selected key.
func (km *KeyManager) Sign(claims Claims) (string, error) {
	s := km.GetSigner()
	if s == nil {
		return "", ErrNoKey
	}
	return s.Sign(claims)
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// GetSigners returns a copy of all active signing keys.
func (km *KeyManager) GetSigners() []Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return slices.Clone(km.signers)
}

// AddSigner adds a signing key to both the active list and the KeySet.
func (km *KeyManager) AddSigner(signer Signer) error {
	if signer == nil {
		return fmt.Errorf("signer cannot be nil")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return fmt.Errorf("failed to add signer to keyset: %w", err)
	}
	km.signers = append(km.signers, signer)
	return nil
}

// randomKID creates a random key identifier, e.g. "blogadmin-ed25519-<token>".
func randomKID(prefix string) (string, error) {
	token, err := cryptox.GenerateToken(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate random key ID: %w", err)
	}
	return fmt.Sprintf("blogadmin-%s-%s", prefix, token), nil
}

// stableKID derives a kid from key material so configured keys keep the
// same id across restarts.
func stableKID(prefix string, material []byte) string {
	sum := sha256.Sum256(material)
	return fmt.Sprintf("blogadmin-%s-%s", prefix, base64.RawURLEncoding.EncodeToString(sum[:12]))
}
