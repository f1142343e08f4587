package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bootstrapped, err := env.Bootstrap.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, bootstrapped)

	res, err := env.Bootstrap.Bootstrap(ctx, "root", "")
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, "root", res.Username)
	require.Len(t, res.GeneratedPassword, 12, "a password is generated when none is configured")

	details, err := env.Details.LoadUserByUsername(ctx, "root")
	require.NoError(t, err)
	require.True(t, details.Enabled())
	require.Equal(t, []string{AuthorityAll}, details.Authorities())
	require.NoError(t, env.Encoder.Matches(res.GeneratedPassword, details.PasswordHash()))

	perms, err := env.Users.ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, len(defaultPermissions))

	roles, err := env.Users.RoleNames(ctx, res.UserID)
	require.NoError(t, err)
	require.Equal(t, []string{AdminRoleName}, roles)

	t.Run("second run is a no-op", func(t *testing.T) {
		again, err := env.Bootstrap.Bootstrap(ctx, "other", "secret")
		require.NoError(t, err)
		require.False(t, again.Created)

		_, err = env.Details.LoadUserByUsername(ctx, "other")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestBootstrap_ConfiguredPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.Bootstrap.Bootstrap(ctx, "", testAdminPassword)
	require.NoError(t, err)
	require.Equal(t, "admin", res.Username)
	require.Empty(t, res.GeneratedPassword)

	_, err = env.Auth.Login(ctx, LoginInput{Username: "admin", Password: testAdminPassword})
	require.NoError(t, err)
}
