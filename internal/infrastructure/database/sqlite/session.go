// Package sqlite provides scoped transactional sessions over the embedded
// SQLite store.  A session is a short-lived acquisition of a connection with
// foreign-key enforcement enabled, guaranteed commit-or-rollback, and
// guaranteed release.  The ingestion core opens one session per schema setup,
// one per data record, and one per failure-log write; sessions are never
// shared across operations.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

// Session wraps one open transaction.  Mappers receive a *Session and issue
// statements through it; they never see the underlying *sql.DB, which keeps
// commit/rollback authority with the session scope alone.
type Session struct {
	tx *sql.Tx
}

// Exec executes a statement inside the session's transaction.
func (s *Session) Exec(query string, args ...interface{}) (sql.Result, error) {
	return s.tx.Exec(query, args...)
}

// Query runs a query inside the session's transaction.
func (s *Session) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return s.tx.Query(query, args...)
}

// QueryRow runs a single-row query inside the session's transaction.
func (s *Session) QueryRow(query string, args ...interface{}) *sql.Row {
	return s.tx.QueryRow(query, args...)
}

// open creates the parent directory and the database file if absent and
// returns a connection with foreign-key enforcement on.  The pool is capped
// at a single connection: the DSN pragma applies per connection, and the
// ingestion model is strictly sequential anyway.
func open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeStorageOpenFailed,
				fmt.Sprintf("create database directory %q", dir))
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageOpenFailed,
			fmt.Sprintf("open database %q", path))
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// WithSession opens the store at path, begins a transaction, and invokes fn
// with the scoped session.  When fn returns nil the transaction is committed;
// when fn returns an error the transaction is rolled back and the original
// error is returned unchanged.  The connection is closed on every exit path,
// including commit and rollback failures.
func WithSession(path string, fn func(*Session) error) error {
	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorageTxFailed, "begin transaction")
	}

	if err := fn(&Session{tx: tx}); err != nil {
		// The caller's error wins; a rollback failure cannot be acted on
		// beyond releasing the connection, which the defer guarantees.
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorageTxFailed, "commit transaction")
	}
	return nil
}

// WithReadOnlySession opens the store at path for queries that must not
// mutate it.  The transaction is always rolled back on exit, so any write
// attempted through it is discarded.
func WithReadOnlySession(path string, fn func(*Session) error) error {
	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorageTxFailed, "begin transaction")
	}
	defer tx.Rollback()

	return fn(&Session{tx: tx})
}
