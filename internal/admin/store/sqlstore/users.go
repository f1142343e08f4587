package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
)

type usersRepo struct {
	db DBTX
	d  Dialect
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u             domain.User
		totpSecret    sql.NullString
		totpEnabledAt sql.NullTime
		loginAt       sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Nickname, &u.Email, &u.Note, &u.Status,
		&totpSecret, &totpEnabledAt, &loginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.TOTPSecret = mapNullStringPtr(totpSecret)
	u.TOTPEnabledAt = mapNullTimePtr(totpEnabledAt)
	u.LoginAt = mapNullTimePtr(loginAt)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByID, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByUsername, username))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := dbTime(time.Now())
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, createUser,
		u.ID, u.Username, u.PasswordHash, u.Nickname, u.Email, u.Note, u.Status,
		mapOptionalString(u.TOTPSecret), mapOptionalTime(u.TOTPEnabledAt), mapOptionalTime(u.LoginAt),
		dbTime(u.CreatedAt), dbTime(u.UpdatedAt),
	)
	return mapInsert(r.d, err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return requireAffected(r.db.ExecContext(ctx, updateUserPasswordHash, newHash, dbTime(time.Now()), userID))
}

func (r *usersRepo) UpdateStatus(ctx context.Context, userID string, status int) error {
	return requireAffected(r.db.ExecContext(ctx, updateUserStatus, status, dbTime(time.Now()), userID))
}

func (r *usersRepo) UpdateLoginAt(ctx context.Context, userID string, at time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, updateUserLoginAt, dbTime(at), userID))
}

func (r *usersRepo) SetTOTPSecret(ctx context.Context, userID, secret string) error {
	return requireAffected(r.db.ExecContext(ctx, setUserTOTPSecret, secret, dbTime(time.Now()), userID))
}

func (r *usersRepo) EnableTOTP(ctx context.Context, userID string, at time.Time) error {
	return requireAffected(r.db.ExecContext(ctx, enableUserTOTP, dbTime(at), dbTime(time.Now()), userID))
}

func (r *usersRepo) DisableTOTP(ctx context.Context, userID string) error {
	return requireAffected(r.db.ExecContext(ctx, disableUserTOTP, dbTime(time.Now()), userID))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, countUsers).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
