package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/blogadmin/internal/admin/store"
)

type txStore struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil } // the outer DB stays open
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil } // applied before any tx starts

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }
func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users             { return &usersRepo{db: t.tx, d: t.dialect} }
func (t *txStore) Roles() store.Roles             { return &rolesRepo{db: t.tx, d: t.dialect} }
func (t *txStore) Permissions() store.Permissions { return &permissionsRepo{db: t.tx, d: t.dialect} }
func (t *txStore) LoginLogs() store.LoginLogs     { return &loginLogsRepo{db: t.tx, d: t.dialect} }
