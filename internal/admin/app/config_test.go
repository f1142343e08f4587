package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// isolate points ENV_FILE at an empty temp dir so a developer's .env does
// not leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, ".env"))
	return dir
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, DriverSQLite, cfg.DBDriver)
	require.Equal(t, "blogadmin.db", cfg.DatabaseFile)
	require.Equal(t, "blogadmin", cfg.Issuer)
	require.Equal(t, []string{jwtx.AlgorithmHS512, jwtx.AlgorithmEdDSA}, cfg.Algorithms)
	require.Equal(t, 7*24*time.Hour, cfg.AccessTTL)
	require.Equal(t, 30*time.Minute, cfg.RefreshWindow)
	require.Equal(t, 10, cfg.BcryptCost)
	require.Equal(t, "admin", cfg.AdminUsername)
	require.False(t, cfg.PermitAll)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Empty(t, cfg.TrustedProxies)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_DSN", "root:pw@tcp(localhost:3306)/blog")
	t.Setenv("JWT_ALGORITHMS", " EdDSA , ")
	t.Setenv("JWT_EXPIRATION", "604800")
	t.Setenv("JWT_REFRESH_WINDOW", "15m")
	t.Setenv("SECURITY_PERMIT_ALL", "true")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, DriverMySQL, cfg.DBDriver)
	require.Equal(t, []string{jwtx.AlgorithmEdDSA}, cfg.Algorithms)
	require.Equal(t, 7*24*time.Hour, cfg.AccessTTL, "plain integers are seconds")
	require.Equal(t, 15*time.Minute, cfg.RefreshWindow)
	require.True(t, cfg.PermitAll)
	require.Equal(t, 12, cfg.BcryptCost)
	require.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.TrustedProxies)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("JWT_ISSUER=from-file\nADMIN_USERNAME=root\n"), 0600))

	// Real environment wins over the file.
	t.Setenv("ADMIN_USERNAME", "operator")
	// godotenv sets what it loads; Setenv registers the restore.
	t.Setenv("JWT_ISSUER", "")
	require.NoError(t, os.Unsetenv("JWT_ISSUER"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "from-file", cfg.Issuer)
	require.Equal(t, "operator", cfg.AdminUsername)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			DBDriver:             DriverSQLite,
			DatabaseFile:         "blogadmin.db",
			Algorithms:           []string{jwtx.AlgorithmHS512},
			AccessTTL:            time.Hour,
			RefreshWindow:        time.Minute,
			HousekeepingInterval: time.Hour,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "postgres" }, "unknown DB_DRIVER"},
		{"mysql without dsn", func(c *Config) { c.DBDriver = DriverMySQL }, "DB_DSN"},
		{"unsupported algorithm", func(c *Config) { c.Algorithms = []string{"RS256"} }, "unsupported JWT algorithm"},
		{"no algorithms", func(c *Config) { c.Algorithms = nil }, "at least one algorithm"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"refresh window too long", func(c *Config) { c.RefreshWindow = 2 * time.Hour }, "JWT_REFRESH_WINDOW"},
		{"bad trusted proxy", func(c *Config) { c.TrustedProxies = []string{"lb.internal"} }, "TRUSTED_PROXIES"},
		{"zero interval", func(c *Config) { c.HousekeepingInterval = 0 }, "HOUSEKEEPING_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitKeys_PinnedSecret(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Issuer:       "blogadmin",
		Algorithms:   []string{jwtx.AlgorithmHS512, jwtx.AlgorithmEdDSA},
		JWTSecret:    strings.Repeat("k", jwtx.MinHMACSecretSize),
		EdDSAKeyFile: filepath.Join(dir, "keys", "eddsa.pem"),
		NumKeys:      2,
	}

	first, err := InitKeys(cfg, discardLogger())
	require.NoError(t, err)
	require.FileExists(t, cfg.EdDSAKeyFile)

	claims := jwtx.NewAccessClaims("u-1", "admin", []string{jwtx.AMRPassword}, time.Hour, cfg.Issuer, time.Now())
	token, err := first.Sign(claims)
	require.NoError(t, err)

	// A restart with the same secret and key file still accepts the token.
	second, err := InitKeys(cfg, discardLogger())
	require.NoError(t, err)
	got, err := second.Verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "admin", got.Username)
}
