package store

import (
	"errors"
	"fmt"
)

// PersistenceError reports a store open or commit failure. The session
// transaction has been rolled back when one is returned from Commit.
type PersistenceError struct {
	Op   string // "open", "commit", "query", "exec"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err is a PersistenceError.
// Uses errors.As to handle wrapped errors.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// ErrReadOnly is returned by mutations on a read-only store handle.
var ErrReadOnly = errors.New("store is read-only")
