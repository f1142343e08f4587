package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
)

// ErrUserNotFound is matched by every *UsernameNotFoundError.
var ErrUserNotFound = errors.New("user not found")

// UsernameNotFoundError reports a lookup for a username that does not exist.
type UsernameNotFoundError struct {
	Username string
}

func (e *UsernameNotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.Username)
}

func (e *UsernameNotFoundError) Is(target error) bool {
	return target == ErrUserNotFound
}

// UserDetailsService resolves a username into the security view of the
// account. The user and its permissions are two separate reads.
type UserDetailsService struct {
	Users UserLookup
}

// LoadUserByUsername returns the user and its permissions, or a
// *UsernameNotFoundError when the user does not exist.
func (s *UserDetailsService) LoadUserByUsername(ctx context.Context, username string) (domain.UserDetails, error) {
	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.UserDetails{}, &UsernameNotFoundError{Username: username}
		}
		return domain.UserDetails{}, fmt.Errorf("load user %q: %w", username, err)
	}

	perms, err := s.Users.GetPermissionList(ctx, user.ID)
	if err != nil {
		return domain.UserDetails{}, fmt.Errorf("load permissions for %q: %w", username, err)
	}

	return domain.NewUserDetails(user, perms), nil
}
