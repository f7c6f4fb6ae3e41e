// Package database owns the relational store handle shared by every service.
//
// postgres:// URLs are opened with GORM on top of pgx; sqlite:// URLs open a
// SQLite database (file or ":memory:") for local development and tests.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ghuser/invoiceledger/pkg/logger"
)

// Dialect names as reported by Database.Dialect.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const sqliteScheme = "sqlite://"

// Database wraps a GORM handle and its underlying connection pool.
type Database struct {
	gdb *gorm.DB
	sql *sql.DB
}

// Open connects to the database at url, applies pool settings and verifies
// connectivity with a 5s ping.
func Open(ctx context.Context, url string, log logger.Logger) (*Database, error) {
	dialector, err := dialectorFor(url)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 NewGormLogger(log, 200*time.Millisecond),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("database: pool: %w", err)
	}

	if dialector.Name() == DialectSQLite {
		// A single connection keeps ":memory:" databases alive and serialises writers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return &Database{gdb: gdb, sql: sqlDB}, nil
}

func dialectorFor(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, sqliteScheme):
		dsn := strings.TrimPrefix(url, sqliteScheme)
		if dsn == "" {
			return nil, errors.New("database: empty sqlite path")
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("database: unsupported url scheme in %q", redact(url))
	}
}

// redact strips credentials from a connection URL before it is logged or returned.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return "<invalid>"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}

// Gorm returns the GORM handle bound to ctx.
func (d *Database) Gorm(ctx context.Context) *gorm.DB {
	return d.gdb.WithContext(ctx)
}

// DB returns the underlying *sql.DB.
func (d *Database) DB() *sql.DB {
	return d.sql
}

// Dialect returns DialectPostgres or DialectSQLite.
func (d *Database) Dialect() string {
	return d.gdb.Dialector.Name()
}

// WithTx runs fn inside a transaction. fn's error (or a panic) rolls back;
// nil commits.
func (d *Database) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.gdb.WithContext(ctx).Transaction(fn)
}

// ForUpdate adds a row lock to the next query on Postgres. SQLite has no row
// locks (writers are already serialised), so tx is returned unchanged.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == DialectPostgres {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// SQLTx returns the *sql.Tx backing a GORM transaction so other libraries
// (the Watermill outbox publisher) can write within the same transaction.
func SQLTx(tx *gorm.DB) (*sql.Tx, error) {
	sqlTx, ok := tx.Statement.ConnPool.(*sql.Tx)
	if !ok {
		return nil, fmt.Errorf("database: not inside a transaction (conn pool is %T)", tx.Statement.ConnPool)
	}
	return sqlTx, nil
}

// Ping checks the database connection health.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.sql.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (d *Database) Close() error {
	return d.sql.Close()
}
