package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
)

type permissionsRepo struct {
	db DBTX
	d  Dialect
}

func scanPermission(row rowScanner) (domain.Permission, error) {
	var p domain.Permission
	if err := row.Scan(&p.ID, &p.Name, &p.Value, &p.Type, &p.URI, &p.Status, &p.CreatedAt); err != nil {
		return domain.Permission{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (r *permissionsRepo) CreatePermission(ctx context.Context, p domain.Permission) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, createPermission,
		p.ID, p.Name, p.Value, int(p.Type), p.URI, p.Status, dbTime(p.CreatedAt),
	)
	return mapInsert(r.d, err)
}

func (r *permissionsRepo) ListAll(ctx context.Context) ([]domain.Permission, error) {
	return r.list(ctx, listPermissions)
}

func (r *permissionsRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Permission, error) {
	return r.list(ctx, listPermissionsByUserID, userID)
}

func (r *permissionsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
