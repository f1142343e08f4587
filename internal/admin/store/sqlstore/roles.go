package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
)

type rolesRepo struct {
	db DBTX
	d  Dialect
}

func scanRole(row rowScanner) (domain.Role, error) {
	var r domain.Role
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Status, &r.CreatedAt); err != nil {
		return domain.Role{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	role, err := scanRole(r.db.QueryRowContext(ctx, getRoleByName, name))
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	return r.list(ctx, listRoles)
}

func (r *rolesRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Role, error) {
	return r.list(ctx, listRolesByUserID, userID)
}

func (r *rolesRepo) list(ctx context.Context, query string, args ...any) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	if role.CreatedAt.IsZero() {
		role.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, createRole,
		role.ID, role.Name, role.Description, role.Status, dbTime(role.CreatedAt),
	)
	return mapInsert(r.d, err)
}

func (r *rolesRepo) AssignToUser(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx, assignRole, userID, roleID)
	return mapInsert(r.d, err)
}

func (r *rolesRepo) GrantPermission(ctx context.Context, roleID, permissionID string) error {
	_, err := r.db.ExecContext(ctx, grantPermission, roleID, permissionID)
	return mapInsert(r.d, err)
}
