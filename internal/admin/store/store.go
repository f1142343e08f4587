package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, mysql)
// implement this. Sub-repositories are reached through methods so a Tx can
// hand out the same repos bound to the transaction.
type Store interface {
	Users() Users
	Roles() Roles
	Permissions() Permissions
	LoginLogs() LoginLogs

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername backs the user lookup done on login and on every
	// authenticated request.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	ListUsers(ctx context.Context) ([]domain.User, error)

	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	UpdateStatus(ctx context.Context, userID string, status int) error
	UpdateLoginAt(ctx context.Context, userID string, at time.Time) error

	// SetTOTPSecret stores a pending secret and clears totp_enabled_at.
	SetTOTPSecret(ctx context.Context, userID, secret string) error

	// EnableTOTP marks the pending secret as active.
	EnableTOTP(ctx context.Context, userID string, at time.Time) error

	// DisableTOTP clears both the secret and totp_enabled_at.
	DisableTOTP(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)
	ListAll(ctx context.Context) ([]domain.Role, error)
	CreateRole(ctx context.Context, r domain.Role) error

	// ListByUserID returns the roles assigned to a user, enabled or not.
	ListByUserID(ctx context.Context, userID string) ([]domain.Role, error)

	AssignToUser(ctx context.Context, userID, roleID string) error
	GrantPermission(ctx context.Context, roleID, permissionID string) error
}

type Permissions interface {
	CreatePermission(ctx context.Context, p domain.Permission) error
	ListAll(ctx context.Context) ([]domain.Permission, error)

	// ListByUserID returns every permission reachable through the user's
	// enabled roles, without duplicates.
	ListByUserID(ctx context.Context, userID string) ([]domain.Permission, error)
}

type LoginLogs interface {
	CreateLoginLog(ctx context.Context, l domain.LoginLog) error

	// ListByUserID returns the most recent entries first.
	ListByUserID(ctx context.Context, userID string, limit int) ([]domain.LoginLog, error)

	// DeleteBefore removes entries created before cutoff and reports how
	// many went.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
