package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/internal/admin/metrics"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store/drivers/sqlite"
	"github.com/aussiebroadwan/blogadmin/pkg/cryptox"
	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testIssuer        = "blogadmin-test"
	testAdminUsername = "admin"
	testAdminPassword = "Admin123!"
)

// testEnv wires the services against an in-memory store.
type testEnv struct {
	Store     store.Store
	Encoder   *cryptox.PasswordEncoder
	Keys      *jwtx.KeyManager
	Metrics   *metrics.Metrics
	Users     *UserService
	Details   *UserDetailsService
	TOTP      *TOTPService
	Auth      *AuthService
	Bootstrap *BootstrapService

	clock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Algorithms: []string{jwtx.AlgorithmHS512},
		Issuer:     testIssuer,
		NumKeys:    1,
	})
	require.NoError(t, err)

	env := &testEnv{
		Store:   s,
		Encoder: cryptox.NewPasswordEncoder(bcrypt.MinCost),
		Keys:    km,
		Metrics: metrics.New(),
		clock:   time.Now().UTC().Truncate(time.Second),
	}
	now := func() time.Time { return env.clock }

	env.Users = &UserService{Store: s, Encoder: env.Encoder}
	env.Details = &UserDetailsService{Users: env.Users}
	env.TOTP = &TOTPService{Store: s, Issuer: "Blog Admin", Now: now}
	env.Auth = &AuthService{
		Details:    env.Details,
		Store:      s,
		Encoder:    env.Encoder,
		KeyManager: km,
		TOTP:       env.TOTP,
		Metrics:    env.Metrics,
		Issuer:     testIssuer,
		Now:        now,
	}
	env.Bootstrap = &BootstrapService{Store: s, Encoder: env.Encoder}
	return env
}

// bootstrap creates the admin account and returns its id.
func (e *testEnv) bootstrap(t *testing.T) string {
	t.Helper()
	res, err := e.Bootstrap.Bootstrap(context.Background(), testAdminUsername, testAdminPassword)
	require.NoError(t, err)
	require.True(t, res.Created)
	return res.UserID
}

// createUser adds a user with the given roles and password.
func (e *testEnv) createUser(t *testing.T, username, password string, roles ...string) domain.User {
	t.Helper()
	u, err := e.Users.CreateUser(context.Background(), CreateUserInput{
		Username: username,
		Password: password,
		Roles:    roles,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}
