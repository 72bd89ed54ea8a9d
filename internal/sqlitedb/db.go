// Package sqlitedb opens the SQLite databases chorus keeps under its state
// directory. It applies connection pragmas, versions schemas through
// PRAGMA user_version and retries writes that hit SQLITE_BUSY.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrSchemaMismatch is returned by Open when the database was written by a
// newer schema version than the caller knows.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// sqliteBusy is the SQLITE_BUSY primary result code.
const sqliteBusy = 5

// retryDelays bounds how long a write waits on SQLITE_BUSY beyond the
// driver's own busy_timeout.
var retryDelays = []time.Duration{10 * time.Millisecond, 40 * time.Millisecond, 160 * time.Millisecond}

// DB is a pooled SQLite handle bound to one file.
type DB struct {
	*sql.DB
	path string
}

// Open connects to the database at path and brings its schema to version.
// schema must be idempotent (CREATE ... IF NOT EXISTS): it is applied
// whenever the stored user_version is lower than version.
func Open(ctx context.Context, path, schema string, version int) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	// Pragmas in the DSN are applied to every pooled connection.
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	db := &DB{DB: conn, path: path}
	if err := db.migrate(ctx, schema, version); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file location.
func (db *DB) Path() string {
	return db.path
}

// Write runs a write statement, retrying while the database is busy.
func (db *DB) Write(ctx context.Context, query string, args ...any) (sql.Result, error) {
	for attempt := 0; ; attempt++ {
		res, err := db.ExecContext(ctx, query, args...)
		if err == nil || !IsBusy(err) || attempt == len(retryDelays) {
			return res, err
		}
		select {
		case <-time.After(retryDelays[attempt]):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Version reports the stored PRAGMA user_version.
func (db *DB) Version(ctx context.Context) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) migrate(ctx context.Context, schema string, version int) error {
	current, err := db.Version(ctx)
	if err != nil {
		return err
	}
	switch {
	case current == version:
		return nil
	case current > version:
		return fmt.Errorf("%w: %s has version %d, want %d", ErrSchemaMismatch, db.path, current, version)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// IsBusy reports whether err is SQLITE_BUSY or one of its extended codes.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		// Extended codes such as SQLITE_BUSY_SNAPSHOT keep the primary code in the low byte.
		return coded.Code()&0xff == sqliteBusy
	}
	return strings.Contains(err.Error(), "database is locked")
}
