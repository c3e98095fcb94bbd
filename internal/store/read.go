package store

import (
	"context"
	"fmt"
	"time"

	"github.com/packstage/packstage/internal/hierarchy"
)

// Assignment is one stored row: a package attached to a context,
// optionally scoped to a step and/or a software.
type Assignment struct {
	Context hierarchy.Context
	Package string
	Scope   hierarchy.Scope
}

// Record is one deploy history row. Snapshot references the full copy
// of the pre-deploy production store, empty when history was disabled.
type Record struct {
	ID       string
	At       time.Time
	Comment  string
	Snapshot string
}

// LogEntry is one committed change-log row.
type LogEntry struct {
	ID      int64
	User    string
	Context string
	Package string
	Scope   hierarchy.Scope
	Op      Op
	At      time.Time
	Comment string
}

// ListAssignments returns the rows stored exactly at the given context
// matching the scope. No inheritance; the resolver walks ancestors
// itself. A stored empty step/software is a wildcard and matches any
// requested value; a stored concrete value matches only a request for
// exactly that value. An unscoped request matches wildcard rows only.
func (s *Store) ListAssignments(ctx context.Context, c hierarchy.Context, sc hierarchy.Scope) ([]Assignment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `
		SELECT a.package, a.step, a.software
		FROM assignments a
		JOIN contexts c ON c.id = a.context_id
		WHERE c.project = ? AND c.category = ? AND c.entity = ?
		  AND (a.step = '' OR a.step = ?)
		  AND (a.software = '' OR a.software = ?)
		ORDER BY a.rowid ASC
	`, c.Project, c.Category, c.Entity, sc.Step, sc.Software)
	if err != nil {
		return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("list assignments: %w", err)}
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		a := Assignment{Context: c}
		if err := rows.Scan(&a.Package, &a.Scope.Step, &a.Scope.Software); err != nil {
			return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("scan assignment: %w", err)}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("list assignments: %w", err)}
	}
	return out, nil
}

// Assignments dumps every stored row with its context, in insertion
// order. Used when deploying staging wholesale into production.
func (s *Store) Assignments(ctx context.Context) ([]Assignment, error) {
	rows, err := s.query(ctx, `
		SELECT c.project, c.category, c.entity, a.package, a.step, a.software
		FROM assignments a
		JOIN contexts c ON c.id = a.context_id
		ORDER BY a.rowid ASC
	`)
	if err != nil {
		return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("dump assignments: %w", err)}
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(
			&a.Context.Project, &a.Context.Category, &a.Context.Entity,
			&a.Package, &a.Scope.Step, &a.Scope.Software,
		); err != nil {
			return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("scan assignment: %w", err)}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("dump assignments: %w", err)}
	}
	return out, nil
}

// ChangeLog returns the committed edit rows, oldest first.
func (s *Store) ChangeLog(ctx context.Context) ([]LogEntry, error) {
	rows, err := s.query(ctx, `
		SELECT id, user, context, package, step, software, op, at, comment
		FROM change_log
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("read change log: %w", err)}
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var e LogEntry
		var op int
		if err := rows.Scan(&e.ID, &e.User, &e.Context, &e.Package, &e.Scope.Step, &e.Scope.Software, &op, &e.At, &e.Comment); err != nil {
			return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("scan change log: %w", err)}
		}
		e.Op = Op(op)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("read change log: %w", err)}
	}
	return out, nil
}

// DeployHistory returns the deploy records, newest first.
func (s *Store) DeployHistory(ctx context.Context) ([]Record, error) {
	rows, err := s.query(ctx, `
		SELECT id, at, comment, snapshot
		FROM deploy_history
		ORDER BY at DESC
	`)
	if err != nil {
		return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("read deploy history: %w", err)}
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.At, &r.Comment, &r.Snapshot); err != nil {
			return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("scan deploy history: %w", err)}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("read deploy history: %w", err)}
	}
	return out, nil
}
