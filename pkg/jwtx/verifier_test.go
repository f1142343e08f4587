package jwtx_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestKeySet(t *testing.T) (*jwtx.KeySet, *jwtx.HS512Signer, *jwtx.EdDSASigner) {
	t.Helper()

	hs, err := jwtx.NewSignerHS512("hs-1", []byte(strings.Repeat("k", 64)))
	require.NoError(t, err)

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	ed, err := jwtx.NewSignerEdDSA("ed-1", key)
	require.NoError(t, err)

	ks := jwtx.NewKeySet()
	require.NoError(t, ks.AddSigner(hs))
	require.NoError(t, ks.AddSigner(ed))
	return ks, hs, ed
}

func TestVerifier_RoundTrip(t *testing.T) {
	ks, hs, ed := newTestKeySet(t)
	v := jwtx.NewVerifier(ks, "blogadmin")

	for _, signer := range []jwtx.Signer{hs, ed} {
		t.Run(signer.Alg(), func(t *testing.T) {
			claims := jwtx.NewAccessClaims("user-1", "admin", []string{jwtx.AMRPassword}, time.Hour, "blogadmin", time.Now())
			token, err := signer.Sign(claims)
			require.NoError(t, err)

			got, err := v.Verify(token)
			require.NoError(t, err)
			require.Equal(t, "user-1", got.Subject)
			require.Equal(t, "admin", got.Username)
			require.Equal(t, claims.ID, got.ID)
			require.Equal(t, []string{jwtx.AMRPassword}, got.AMR)
		})
	}
}

func TestVerifier_Rejections(t *testing.T) {
	ks, hs, ed := newTestKeySet(t)
	v := jwtx.NewVerifier(ks, "blogadmin")
	now := time.Now()

	sign := func(s jwtx.Signer, c jwtx.Claims) string {
		token, err := s.Sign(c)
		require.NoError(t, err)
		return token
	}

	otherHS, err := jwtx.NewSignerHS512("hs-1", []byte(strings.Repeat("x", 64)))
	require.NoError(t, err)
	unknown, err := jwtx.NewSignerHS512("hs-unknown", []byte(strings.Repeat("k", 64)))
	require.NoError(t, err)

	valid := jwtx.NewAccessClaims("user-1", "admin", nil, time.Hour, "blogadmin", now)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-jwt", jwtx.ErrMalformed},
		{"wrong issuer", sign(ed, jwtx.NewAccessClaims("user-1", "admin", nil, time.Hour, "blog-web", now)), jwtx.ErrIssuer},
		{"expired", sign(hs, jwtx.NewAccessClaims("user-1", "admin", nil, time.Hour, "blogadmin", now.Add(-2*time.Hour))), jwtx.ErrExpired},
		{"forged secret", sign(otherHS, valid), jwtx.ErrInvalidSig},
		{"unknown kid", sign(unknown, valid), jwtx.ErrUnknownKID},
		{"missing username", sign(hs, jwtx.NewAccessClaims("user-1", "", nil, time.Hour, "blogadmin", now)), jwtx.ErrInvalidClaim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerifier_AlgorithmMismatch(t *testing.T) {
	ks, _, ed := newTestKeySet(t)
	v := jwtx.NewVerifier(ks, "blogadmin")

	// An HS512 token claiming the EdDSA kid must not be checked against the
	// public key bytes.
	claims := jwtx.NewAccessClaims("user-1", "admin", nil, time.Hour, "blogadmin", time.Now())
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	tok.Header["kid"] = ed.KID()
	forged, err := tok.SignedString([]byte(ed.VerificationKey().(ed25519.PublicKey)))
	require.NoError(t, err)

	_, err = v.Verify(forged)
	require.ErrorIs(t, err, jwtx.ErrAlgMismatch)
}

func TestVerifier_NoneAlgorithm(t *testing.T) {
	ks, _, _ := newTestKeySet(t)
	v := jwtx.NewVerifier(ks, "blogadmin")

	claims := jwtx.NewAccessClaims("user-1", "admin", nil, time.Hour, "blogadmin", time.Now())
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tok.Header["kid"] = "hs-1"
	unsigned, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Verify(unsigned)
	require.Error(t, err)
}

func TestVerifier_Clock(t *testing.T) {
	ks, hs, _ := newTestKeySet(t)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	token, err := hs.Sign(jwtx.NewAccessClaims("user-1", "admin", nil, time.Hour, "blogadmin", issued))
	require.NoError(t, err)

	inside := jwtx.NewVerifier(ks, "blogadmin").WithClock(func() time.Time { return issued.Add(30 * time.Minute) })
	_, err = inside.Verify(token)
	require.NoError(t, err)

	after := jwtx.NewVerifier(ks, "blogadmin").WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = after.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}
