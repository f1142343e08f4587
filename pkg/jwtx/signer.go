package jwtx

// Supported JWT signing algorithms
const (
	AlgorithmHS512 = "HS512"
	AlgorithmEdDSA = "EdDSA"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)

	// VerificationKey is the key a verifier needs for tokens from this
	// signer: the shared secret for HMAC, the public key otherwise.
	VerificationKey() any
	Validate() error
}

// PublicSigner is a Signer whose verification key may be published in a JWKS.
type PublicSigner interface {
	Signer
	PublicJWK() JWK
}
