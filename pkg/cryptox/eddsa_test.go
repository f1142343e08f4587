package cryptox_test

import (
	"crypto/ed25519"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/blogadmin/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateEd25519Key(t *testing.T) {
	key, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	require.Len(t, key, ed25519.PrivateKeySize)
}

func TestEd25519PEMRoundTrip(t *testing.T) {
	key, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	encoded, err := cryptox.EncodeEd25519PEM(key)
	require.NoError(t, err)

	block, _ := pem.Decode(encoded)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	parsed, err := cryptox.ParseEd25519PEM(encoded)
	require.NoError(t, err)
	require.True(t, key.Equal(parsed))
}

func TestParseEd25519PEM_Invalid(t *testing.T) {
	_, err := cryptox.ParseEd25519PEM([]byte("not-a-pem-key"))
	require.ErrorContains(t, err, "invalid PEM")

	wrongType := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: []byte{1, 2, 3}})
	_, err = cryptox.ParseEd25519PEM(wrongType)
	require.ErrorContains(t, err, "expected PRIVATE KEY")
}

func TestLoadOrGenerateEd25519Key(t *testing.T) {
	file := filepath.Join(t.TempDir(), "keys", "jwt.pem")

	first, err := cryptox.LoadOrGenerateEd25519Key(file)
	require.NoError(t, err)

	info, err := os.Stat(file)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, err := cryptox.LoadOrGenerateEd25519Key(file)
	require.NoError(t, err)
	require.True(t, first.Equal(second), "existing key file should be reused")
}
