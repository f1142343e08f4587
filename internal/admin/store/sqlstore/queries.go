package sqlstore

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so repositories run the
// same queries inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Both supported drivers use "?" placeholders, so the SQL below is shared.
const (
	userColumns = `id, username, password_hash, nickname, email, note, status,
		totp_secret, totp_enabled_at, login_at, created_at, updated_at`

	getUserByID       = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	listUsers         = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	countUsers        = `SELECT COUNT(*) FROM users`

	createUser = `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	updateUserPasswordHash = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`
	updateUserStatus       = `UPDATE users SET status = ?, updated_at = ? WHERE id = ?`
	updateUserLoginAt      = `UPDATE users SET login_at = ? WHERE id = ?`
	setUserTOTPSecret      = `UPDATE users SET totp_secret = ?, totp_enabled_at = NULL, updated_at = ? WHERE id = ?`
	enableUserTOTP         = `UPDATE users SET totp_enabled_at = ?, updated_at = ? WHERE id = ? AND totp_secret IS NOT NULL`
	disableUserTOTP        = `UPDATE users SET totp_secret = NULL, totp_enabled_at = NULL, updated_at = ? WHERE id = ?`

	roleColumns = `id, name, description, status, created_at`

	getRoleByName = `SELECT ` + roleColumns + ` FROM roles WHERE name = ?`
	listRoles     = `SELECT ` + roleColumns + ` FROM roles ORDER BY name`
	createRole    = `INSERT INTO roles (` + roleColumns + `) VALUES (?, ?, ?, ?, ?)`

	listRolesByUserID = `SELECT r.id, r.name, r.description, r.status, r.created_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.name`

	assignRole      = `INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`
	grantPermission = `INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)`

	permissionColumns = `id, name, value, type, uri, status, created_at`

	createPermission = `INSERT INTO permissions (` + permissionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	listPermissions  = `SELECT ` + permissionColumns + ` FROM permissions ORDER BY id`

	listPermissionsByUserID = `SELECT DISTINCT p.id, p.name, p.value, p.type, p.uri, p.status, p.created_at
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN roles r ON r.id = rp.role_id
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ? AND r.status = 1
		ORDER BY p.id`

	createLoginLog = `INSERT INTO login_logs (id, user_id, ip, user_agent, created_at) VALUES (?, ?, ?, ?, ?)`

	listLoginLogsByUserID = `SELECT id, user_id, ip, user_agent, created_at
		FROM login_logs WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	deleteLoginLogsBefore = `DELETE FROM login_logs WHERE created_at < ?`
)
