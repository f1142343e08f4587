package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
)

type loginLogsRepo struct {
	db DBTX
	d  Dialect
}

func (r *loginLogsRepo) CreateLoginLog(ctx context.Context, l domain.LoginLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, createLoginLog, l.ID, l.UserID, l.IP, l.UserAgent, dbTime(l.CreatedAt))
	return mapInsert(r.d, err)
}

func (r *loginLogsRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.LoginLog, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, listLoginLogsByUserID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.LoginLog
	for rows.Next() {
		var l domain.LoginLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.IP, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.CreatedAt = l.CreatedAt.UTC()
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *loginLogsRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteLoginLogsBefore, dbTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
