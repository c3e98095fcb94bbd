package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store is a scoped session over one assignment database (staging or
// production). All mutations ride a single transaction: Commit persists
// them as one atomic unit, Close discards anything uncommitted.
//
// A Store is not safe for concurrent use; each caller opens its own
// handle and the on-disk file is the only state shared across processes.
type Store struct {
	db       *sql.DB
	tx       *sql.Tx
	path     string
	readOnly bool
	edits    []Edit
}

// Option configures Open.
type Option func(*Store)

// ReadOnly opens the store for queries only. Mutations and Commit
// return ErrReadOnly. Used when resolving against production.
func ReadOnly() Option {
	return func(s *Store) { s.readOnly = true }
}

// Exists reports whether a store file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Open creates or opens a store at the given path and begins the
// session transaction. The database is configured with WAL mode,
// NORMAL synchronous mode, a 5-second busy timeout and foreign key
// enforcement. Schema creation is deferred to Initialize.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}

	dsn := path
	if s.readOnly {
		if !Exists(path) {
			return nil, &PersistenceError{Op: "open", Path: path, Err: os.ErrNotExist}
		}
		dsn = "file:" + path + "?mode=ro"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}

	// SQLite supports one writer at a time; a single connection keeps
	// the session transaction and all queries on the same handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, s.readOnly); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	s.db = db

	if !s.readOnly {
		if err := s.begin(); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Path returns the on-disk location of the store file.
func (s *Store) Path() string {
	return s.path
}

// Close rolls back any uncommitted mutations and releases the
// connection. Safe to call on every exit path.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if s.tx != nil {
		s.tx.Rollback() // no-op if already committed
		s.tx = nil
	}
	s.edits = nil
	err := s.db.Close()
	s.db = nil
	return err
}

// Initialize creates the tables and seeds the studio context row, then
// persists immediately. Idempotent.
func (s *Store) Initialize(ctx context.Context) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if _, err := s.tx.ExecContext(ctx, schemaSQL); err != nil {
		return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("create schema: %w", err)}
	}
	if _, err := s.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO contexts (project, category, entity) VALUES ('', '', '')
	`); err != nil {
		return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("seed studio context: %w", err)}
	}
	return s.commitTx()
}

// Initialized reports whether the schema has been created.
func (s *Store) Initialized(ctx context.Context) (bool, error) {
	var name string
	err := s.queryRow(ctx, `
		SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'assignments'
	`).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: "query", Path: s.path, Err: err}
	}
	return true, nil
}

// begin starts a fresh session transaction.
func (s *Store) begin() error {
	tx, err := s.db.Begin()
	if err != nil {
		return &PersistenceError{Op: "open", Path: s.path, Err: fmt.Errorf("begin transaction: %w", err)}
	}
	s.tx = tx
	return nil
}

// commitTx commits the session transaction and starts the next one.
// On failure the transaction is rolled back and the pending edits kept
// by the caller are lost with it.
func (s *Store) commitTx() error {
	if err := s.tx.Commit(); err != nil {
		s.tx.Rollback()
		if beginErr := s.begin(); beginErr != nil {
			return beginErr
		}
		return &PersistenceError{Op: "commit", Path: s.path, Err: err}
	}
	return s.begin()
}

// queryRow routes reads through the session transaction when one is
// open so uncommitted mutations are visible to the same handle.
func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	if s.tx != nil {
		return s.tx.QueryRowContext(ctx, query, args...)
	}
	return s.db.QueryRowContext(ctx, query, args...)
}

// query is the multi-row counterpart of queryRow.
func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.tx != nil {
		return s.tx.QueryContext(ctx, query, args...)
	}
	return s.db.QueryContext(ctx, query, args...)
}

// applyPragmas sets required SQLite configuration. Journal and
// synchronous modes are writer concerns and skipped on read-only
// handles, which cannot change them anyway.
func applyPragmas(db *sql.DB, readOnly bool) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if !readOnly {
		pragmas = append(pragmas,
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
		)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
