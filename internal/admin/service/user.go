package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
	"github.com/aussiebroadwan/blogadmin/pkg/cryptox"
	"github.com/aussiebroadwan/blogadmin/pkg/idx"
	"github.com/aussiebroadwan/blogadmin/pkg/slogx"
)

var (
	ErrInvalidUser  = errors.New("invalid user")
	ErrUnknownRole  = errors.New("unknown role")
	ErrUserConflict = errors.New("username already taken")
)

// UserLookup is what authentication needs from the user store.
type UserLookup interface {
	// GetUserByUsername returns store.ErrNotFound when no user has that name.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetPermissionList returns the permissions granted to the user through
	// its enabled roles.
	GetPermissionList(ctx context.Context, userID string) ([]domain.Permission, error)
}

type UserService struct {
	Store   store.Store
	Encoder *cryptox.PasswordEncoder
}

var _ UserLookup = (*UserService)(nil)

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.Store.Users().GetUserByUsername(ctx, username)
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

func (s *UserService) GetPermissionList(ctx context.Context, userID string) ([]domain.Permission, error) {
	return s.Store.Permissions().ListByUserID(ctx, userID)
}

// ListUsers returns every admin user.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// ListPermissions returns every permission, enabled or not.
func (s *UserService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return s.Store.Permissions().ListAll(ctx)
}

// CreateUserInput describes a new admin account.
type CreateUserInput struct {
	Username string
	Password string
	Nickname string
	Email    string
	Note     string
	Roles    []string
}

// CreateUser hashes the password and stores the user together with its role
// assignments. Every role must already exist.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return domain.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidUser)
	}

	hash, err := s.Encoder.Encode(in.Password)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return domain.User{}, fmt.Errorf("%w: %v", ErrInvalidUser, err)
		}
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     in.Username,
		PasswordHash: hash,
		Nickname:     in.Nickname,
		Email:        in.Email,
		Note:         in.Note,
		Status:       domain.StatusEnabled,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUserConflict
			}
			return err
		}

		for _, name := range in.Roles {
			role, err := tx.Roles().GetRoleByName(ctx, name)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("%w: %q", ErrUnknownRole, name)
				}
				return err
			}
			if err := tx.Roles().AssignToUser(ctx, user.ID, role.ID); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("created admin user", "user_id", user.ID, "username", user.Username, "roles", in.Roles)
	return s.Store.Users().GetUserByID(ctx, user.ID)
}

// RoleNames lists the names of the roles assigned to a user.
func (s *UserService) RoleNames(ctx context.Context, userID string) ([]string, error) {
	roles, err := s.Store.Roles().ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}
