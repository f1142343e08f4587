// Package storetest holds the behaviour tests every store.Store driver must
// pass. Driver packages call Run from their own tests with a freshly
// migrated, empty store.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
	"github.com/aussiebroadwan/blogadmin/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Run exercises s. Subtests share the store, so each one works on its own
// usernames and role names.
func Run(t *testing.T, s store.Store) {
	t.Helper()

	t.Run("users", func(t *testing.T) { testUsers(t, s) })
	t.Run("duplicate username", func(t *testing.T) { testDuplicateUsername(t, s) })
	t.Run("missing rows", func(t *testing.T) { testMissingRows(t, s) })
	t.Run("totp lifecycle", func(t *testing.T) { testTOTP(t, s) })
	t.Run("permissions through roles", func(t *testing.T) { testPermissionsThroughRoles(t, s) })
	t.Run("login logs", func(t *testing.T) { testLoginLogs(t, s) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, s) })
}

// NewUser returns an enabled user with a fresh id.
func NewUser(username string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: "$2a$10$7JB720yubVSZvUI0rEqK/.VqGOZTH.ulu33dHOiBE8ByOhJIrdAu2",
		Nickname:     username,
		Email:        username + "@example.com",
		Status:       domain.StatusEnabled,
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	empty, err := users.IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty, "store should start empty")

	u := NewUser("alice")
	u.Note = "first admin"
	require.NoError(t, users.CreateUser(ctx, u))

	empty, err = users.IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	got, err := users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, u.PasswordHash, got.PasswordHash)
	require.Equal(t, "first admin", got.Note)
	require.Equal(t, "alice@example.com", got.Email)
	require.True(t, got.Enabled())
	require.Nil(t, got.LoginAt)
	require.Nil(t, got.TOTPSecret)
	require.False(t, got.CreatedAt.IsZero())
	require.Equal(t, time.UTC, got.CreatedAt.Location())

	byID, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	require.NoError(t, users.UpdatePasswordHash(ctx, u.ID, "$2a$10$other"))
	require.NoError(t, users.UpdateStatus(ctx, u.ID, domain.StatusDisabled))

	loginAt := time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	require.NoError(t, users.UpdateLoginAt(ctx, u.ID, loginAt))

	got, err = users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "$2a$10$other", got.PasswordHash)
	require.False(t, got.Enabled())
	require.NotNil(t, got.LoginAt)
	require.True(t, got.LoginAt.Equal(loginAt.Truncate(time.Second)), "login_at is stored at second precision")

	// Idempotent updates still count as a match.
	require.NoError(t, users.UpdateStatus(ctx, u.ID, domain.StatusDisabled))

	list, err := users.ListUsers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)
}

func testDuplicateUsername(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.Users().CreateUser(ctx, NewUser("bob")))
	err := s.Users().CreateUser(ctx, NewUser("bob"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func testMissingRows(t *testing.T, s store.Store) {
	ctx := context.Background()
	missing := idx.New().String()

	_, err := s.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByID(ctx, missing)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Roles().GetRoleByName(ctx, "no-such-role")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, missing, "x"), store.ErrNotFound)
	require.ErrorIs(t, s.Users().UpdateLoginAt(ctx, missing, time.Now()), store.ErrNotFound)
}

func testTOTP(t *testing.T, s store.Store) {
	ctx := context.Background()
	users := s.Users()

	u := NewUser("carol")
	require.NoError(t, users.CreateUser(ctx, u))

	// Nothing to enable before a secret is set.
	require.ErrorIs(t, users.EnableTOTP(ctx, u.ID, time.Now()), store.ErrNotFound)

	require.NoError(t, users.SetTOTPSecret(ctx, u.ID, "JBSWY3DPEHPK3PXP"))
	got, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TOTPSecret)
	require.Equal(t, "JBSWY3DPEHPK3PXP", *got.TOTPSecret)
	require.False(t, got.TOTPEnabled(), "pending secret is not enabled yet")

	require.NoError(t, users.EnableTOTP(ctx, u.ID, time.Now()))
	got, err = users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.TOTPEnabled())

	require.NoError(t, users.DisableTOTP(ctx, u.ID))
	got, err = users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.TOTPSecret)
	require.Nil(t, got.TOTPEnabledAt)
	require.False(t, got.TOTPEnabled())
}

func testPermissionsThroughRoles(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser("dave")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	editor := domain.Role{ID: idx.New().String(), Name: "editor", Status: domain.StatusEnabled}
	retired := domain.Role{ID: idx.New().String(), Name: "retired", Status: domain.StatusDisabled}
	require.NoError(t, s.Roles().CreateRole(ctx, editor))
	require.NoError(t, s.Roles().CreateRole(ctx, retired))
	require.ErrorIs(t, s.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), Name: "editor"}), store.ErrAlreadyExists)

	create := domain.Permission{ID: idx.New().String(), Name: "Create article", Value: "blog:article:create", Type: domain.PermissionButton, Status: domain.StatusEnabled}
	publish := domain.Permission{ID: idx.New().String(), Name: "Publish article", Value: "blog:article:publish", Type: domain.PermissionButton, Status: domain.StatusEnabled}
	purge := domain.Permission{ID: idx.New().String(), Name: "Purge article", Value: "blog:article:purge", Type: domain.PermissionButton, Status: domain.StatusEnabled}
	for _, p := range []domain.Permission{create, publish, purge} {
		require.NoError(t, s.Permissions().CreatePermission(ctx, p))
	}

	require.NoError(t, s.Roles().GrantPermission(ctx, editor.ID, create.ID))
	require.NoError(t, s.Roles().GrantPermission(ctx, editor.ID, publish.ID))
	require.NoError(t, s.Roles().GrantPermission(ctx, retired.ID, publish.ID))
	require.NoError(t, s.Roles().GrantPermission(ctx, retired.ID, purge.ID))

	require.NoError(t, s.Roles().AssignToUser(ctx, u.ID, editor.ID))
	require.NoError(t, s.Roles().AssignToUser(ctx, u.ID, retired.ID))
	require.ErrorIs(t, s.Roles().AssignToUser(ctx, u.ID, editor.ID), store.ErrAlreadyExists)

	roles, err := s.Roles().ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, roles, 2)

	perms, err := s.Permissions().ListByUserID(ctx, u.ID)
	require.NoError(t, err)

	values := make([]string, 0, len(perms))
	for _, p := range perms {
		values = append(values, p.Value)
	}
	// publish is reachable twice but listed once; purge only via the
	// disabled role.
	require.ElementsMatch(t, []string{"blog:article:create", "blog:article:publish"}, values)

	none, err := s.Permissions().ListByUserID(ctx, idx.New().String())
	require.NoError(t, err)
	require.Empty(t, none)

	all, err := s.Permissions().ListAll(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 3)
}

func testLoginLogs(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser("erin")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	old := domain.LoginLog{ID: idx.New().String(), UserID: u.ID, IP: "10.0.0.1", UserAgent: "curl/8", CreatedAt: now.Add(-48 * time.Hour)}
	recent := domain.LoginLog{ID: idx.New().String(), UserID: u.ID, IP: "10.0.0.2", UserAgent: "firefox", CreatedAt: now.Add(-time.Minute)}
	require.NoError(t, s.LoginLogs().CreateLoginLog(ctx, old))
	require.NoError(t, s.LoginLogs().CreateLoginLog(ctx, recent))

	logs, err := s.LoginLogs().ListByUserID(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, recent.ID, logs[0].ID, "newest entry first")

	deleted, err := s.LoginLogs().DeleteBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	logs, err = s.LoginLogs().ListByUserID(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "10.0.0.2", logs[0].IP)
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, NewUser("frank")); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = s.Users().GetUserByUsername(ctx, "frank")
	require.ErrorIs(t, err, store.ErrNotFound, "rolled back insert must not be visible")

	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, NewUser("grace"))
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByUsername(ctx, "grace")
	require.NoError(t, err)
}
