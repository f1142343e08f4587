package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
	"github.com/aussiebroadwan/blogadmin/pkg/cryptox"
	"github.com/aussiebroadwan/blogadmin/pkg/idx"
	"github.com/aussiebroadwan/blogadmin/pkg/slogx"
)

const (
	AdminRoleName = "admin"

	// AuthorityAll grants every authority.
	AuthorityAll = "*"

	AuthorityUserCreate     = "admin:user:create"
	AuthorityUserRead       = "admin:user:read"
	AuthorityPermissionRead = "admin:permission:read"
)

var ErrBootstrapFailed = errors.New("failed to bootstrap admin account")

// defaultPermissions are seeded on first start. Only AuthorityAll is
// granted to the admin role; the rest are there to be assigned to narrower
// roles.
var defaultPermissions = []domain.Permission{
	{Name: "All permissions", Value: AuthorityAll, Type: domain.PermissionButton},
	{Name: "Create admin user", Value: AuthorityUserCreate, Type: domain.PermissionButton, URI: "/v1/admin/users"},
	{Name: "List admin users", Value: AuthorityUserRead, Type: domain.PermissionMenu, URI: "/v1/admin/users"},
	{Name: "List permissions", Value: AuthorityPermissionRead, Type: domain.PermissionMenu, URI: "/v1/admin/permissions"},
}

// BootstrapResult describes what Bootstrap did.
type BootstrapResult struct {
	Created  bool
	UserID   string
	Username string

	// GeneratedPassword is set when no password was configured. It is
	// never stored in clear and must be shown to the operator once.
	GeneratedPassword string
}

type BootstrapService struct {
	Store   store.Store
	Encoder *cryptox.PasswordEncoder
}

// IsBootstrapped reports whether any user exists.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap seeds the admin role, the default permissions and the first
// admin user when the user table is empty. It does nothing otherwise.
func (s *BootstrapService) Bootstrap(ctx context.Context, username, password string) (BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	bootstrapped, err := s.IsBootstrapped(ctx)
	if err != nil {
		return BootstrapResult{}, err
	}
	if bootstrapped {
		l.Debug("admin account already present, skipping bootstrap")
		return BootstrapResult{}, nil
	}

	if username == "" {
		username = "admin"
	}

	var generated string
	if password == "" {
		generated, err = cryptox.GeneratePassword()
		if err != nil {
			return BootstrapResult{}, err
		}
		password = generated
	}

	passHash, err := s.Encoder.Encode(password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return BootstrapResult{}, fmt.Errorf("%w: %v", ErrBootstrapFailed, err)
	}

	adminUserID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		adminRole := domain.Role{
			ID:          idx.New().String(),
			Name:        AdminRoleName,
			Description: "Full access to the blog admin",
			Status:      domain.StatusEnabled,
		}
		if err := tx.Roles().CreateRole(ctx, adminRole); err != nil {
			return fmt.Errorf("create role %q: %w", adminRole.Name, err)
		}

		for _, p := range defaultPermissions {
			p.ID = idx.New().String()
			p.Status = domain.StatusEnabled
			if err := tx.Permissions().CreatePermission(ctx, p); err != nil {
				return fmt.Errorf("create permission %q: %w", p.Value, err)
			}
			if p.Value != AuthorityAll {
				continue
			}
			if err := tx.Roles().GrantPermission(ctx, adminRole.ID, p.ID); err != nil {
				return fmt.Errorf("grant %q: %w", p.Value, err)
			}
		}

		err := tx.Users().CreateUser(ctx, domain.User{
			ID:           adminUserID,
			Username:     username,
			PasswordHash: passHash,
			Nickname:     "Administrator",
			Status:       domain.StatusEnabled,
		})
		if err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		return tx.Roles().AssignToUser(ctx, adminUserID, adminRole.ID)
	})
	if err != nil {
		l.Error("bootstrap failed", slog.Any("error", err))
		return BootstrapResult{}, fmt.Errorf("%w: %v", ErrBootstrapFailed, err)
	}

	l.Info("bootstrapped admin account",
		slog.String("admin_user_id", adminUserID),
		slog.String("username", username),
	)
	return BootstrapResult{
		Created:           true,
		UserID:            adminUserID,
		Username:          username,
		GeneratedPassword: generated,
	}, nil
}
