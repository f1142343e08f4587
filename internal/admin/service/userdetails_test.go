package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
	"github.com/stretchr/testify/require"
)

// stubLookup records the calls made to it.
type stubLookup struct {
	users    map[string]domain.User
	perms    map[string][]domain.Permission
	userErr  error
	permErr  error
	permReqs []string
}

func (s *stubLookup) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	if s.userErr != nil {
		return domain.User{}, s.userErr
	}
	u, ok := s.users[username]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *stubLookup) GetPermissionList(_ context.Context, userID string) ([]domain.Permission, error) {
	s.permReqs = append(s.permReqs, userID)
	if s.permErr != nil {
		return nil, s.permErr
	}
	return s.perms[userID], nil
}

func TestLoadUserByUsername(t *testing.T) {
	t.Parallel()

	alice := domain.User{ID: "u-alice", Username: "alice", PasswordHash: "$2a$10$hash", Status: domain.StatusEnabled}
	lookup := &stubLookup{
		users: map[string]domain.User{"alice": alice},
		perms: map[string][]domain.Permission{
			"u-alice": {
				{Value: "blog:article:create", Status: domain.StatusEnabled},
				{Value: "blog:article:delete", Status: domain.StatusEnabled},
			},
		},
	}
	svc := &UserDetailsService{Users: lookup}

	t.Run("combines user and permissions", func(t *testing.T) {
		details, err := svc.LoadUserByUsername(context.Background(), "alice")
		require.NoError(t, err)
		require.Equal(t, "u-alice", details.UserID())
		require.Equal(t, "$2a$10$hash", details.PasswordHash())
		require.Equal(t, []string{"blog:article:create", "blog:article:delete"}, details.Authorities())
		require.Contains(t, lookup.permReqs, "u-alice", "permissions are looked up by user id")
	})

	t.Run("unknown user carries the username", func(t *testing.T) {
		before := len(lookup.permReqs)

		_, err := svc.LoadUserByUsername(context.Background(), "mallory")
		require.ErrorIs(t, err, ErrUserNotFound)

		var notFound *UsernameNotFoundError
		require.ErrorAs(t, err, &notFound)
		require.Equal(t, "mallory", notFound.Username)
		require.Contains(t, err.Error(), "mallory")
		require.Len(t, lookup.permReqs, before, "no permission lookup for a missing user")
	})
}

func TestLoadUserByUsername_PropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	errDown := errors.New("database is down")

	t.Run("user lookup", func(t *testing.T) {
		svc := &UserDetailsService{Users: &stubLookup{userErr: errDown}}
		_, err := svc.LoadUserByUsername(context.Background(), "alice")
		require.ErrorIs(t, err, errDown)
		require.NotErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("permission lookup", func(t *testing.T) {
		svc := &UserDetailsService{Users: &stubLookup{
			users:   map[string]domain.User{"alice": {ID: "u-alice", Username: "alice"}},
			permErr: errDown,
		}}
		_, err := svc.LoadUserByUsername(context.Background(), "alice")
		require.ErrorIs(t, err, errDown)
	})
}
