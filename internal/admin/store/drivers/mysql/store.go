// Package mysql provides the MySQL storage driver (go-sql-driver/mysql).
// It targets the same database the blog front end uses.
package mysql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/aussiebroadwan/blogadmin/internal/admin/store/sqlstore"
)

// Error numbers from the MySQL server reference.
const (
	erDupEntry = 1062
)

// NewStore connects to the MySQL database described by dsn, e.g.
// "blog:secret@tcp(localhost:3306)/blog".
func NewStore(dsn string) (*sqlstore.Store, error) {
	cfg, err := mysqldrv.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}

	// DATETIME columns scan into time.Time; migrations hold several
	// statements; UPDATEs report matched rather than changed rows.
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = true
	cfg.ClientFoundRows = true

	connector, err := mysqldrv.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return sqlstore.New(db, sqlstore.Dialect{
		Name:              "mysql",
		Migrate:           applyMigrations,
		IsUniqueViolation: isUniqueViolation,
	}), nil
}

func isUniqueViolation(err error) bool {
	var myErr *mysqldrv.MySQLError
	return errors.As(err, &myErr) && myErr.Number == erDupEntry
}
