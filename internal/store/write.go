package store

import (
	"context"
	"fmt"
	"os/user"
	"time"

	"github.com/packstage/packstage/internal/hierarchy"
)

// Op is the kind of change-log edit.
type Op int

const (
	OpInstall   Op = 1
	OpUninstall Op = 2
)

// String returns the display name of the operation.
func (o Op) String() string {
	switch o {
	case OpInstall:
		return "install"
	case OpUninstall:
		return "uninstall"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Edit is one pending install/uninstall, buffered until Commit flushes
// it to the change log.
type Edit struct {
	Context hierarchy.Context
	Package string
	Scope   hierarchy.Scope
	Op      Op
}

// AddAssignment inserts the assignment row if absent. Idempotent: an
// identical (context, package, step, software) tuple already present is
// a silent no-op and no edit is buffered.
func (s *Store) AddAssignment(ctx context.Context, c hierarchy.Context, pkg string, sc hierarchy.Scope) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if err := c.Validate(); err != nil {
		return err
	}

	contextID, err := s.ensureContext(ctx, c)
	if err != nil {
		return err
	}

	res, err := s.tx.ExecContext(ctx, `
		INSERT INTO assignments (context_id, package, step, software)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (context_id, package, step, software) DO NOTHING
	`, contextID, pkg, sc.Step, sc.Software)
	if err != nil {
		return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("add assignment: %w", err)}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("add assignment: %w", err)}
	}
	if affected > 0 {
		s.edits = append(s.edits, Edit{Context: c, Package: pkg, Scope: sc, Op: OpInstall})
	}
	return nil
}

// RemoveAssignment deletes the assignment row if present. Removing a
// tuple that was never installed is a silent no-op; callers uninstall
// before installing and rely on that.
func (s *Store) RemoveAssignment(ctx context.Context, c hierarchy.Context, pkg string, sc hierarchy.Scope) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if err := c.Validate(); err != nil {
		return err
	}

	res, err := s.tx.ExecContext(ctx, `
		DELETE FROM assignments
		WHERE package = ? AND step = ? AND software = ?
		  AND context_id = (
			SELECT id FROM contexts WHERE project = ? AND category = ? AND entity = ?
		  )
	`, pkg, sc.Step, sc.Software, c.Project, c.Category, c.Entity)
	if err != nil {
		return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("remove assignment: %w", err)}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("remove assignment: %w", err)}
	}
	if affected > 0 {
		s.edits = append(s.edits, Edit{Context: c, Package: pkg, Scope: sc, Op: OpUninstall})
	}
	return nil
}

// PendingEdits returns a copy of the edits buffered since the last
// Commit.
func (s *Store) PendingEdits() []Edit {
	out := make([]Edit, len(s.edits))
	copy(out, s.edits)
	return out
}

// Commit flushes the buffered edits to the change log and durably
// persists all mutations made since the last Commit as one atomic
// unit. On failure everything is rolled back and a PersistenceError
// returned. The handle stays usable either way.
func (s *Store) Commit(ctx context.Context, comment string) error {
	if s.readOnly {
		return ErrReadOnly
	}

	username := currentUser()
	now := time.Now()
	total := len(s.edits)
	for i, edit := range s.edits {
		_, err := s.tx.ExecContext(ctx, `
			INSERT INTO change_log (user, context, package, step, software, op, at, comment)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			username,
			edit.Context.String(),
			edit.Package,
			edit.Scope.Step,
			edit.Scope.Software,
			int(edit.Op),
			now,
			fmt.Sprintf("%s(%d/%d)", comment, i+1, total),
		)
		if err != nil {
			s.tx.Rollback()
			s.edits = nil
			if beginErr := s.begin(); beginErr != nil {
				return beginErr
			}
			return &PersistenceError{Op: "commit", Path: s.path, Err: fmt.Errorf("write change log: %w", err)}
		}
	}

	s.edits = nil
	return s.commitTx()
}

// ReplaceAssignments drops every context and assignment row and
// installs the given set wholesale. Used by deployment; replace, not
// merge. Rides the session transaction, so it only becomes durable on
// Commit.
func (s *Store) ReplaceAssignments(ctx context.Context, rows []Assignment) error {
	if s.readOnly {
		return ErrReadOnly
	}

	if _, err := s.tx.ExecContext(ctx, "DELETE FROM assignments"); err != nil {
		return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("clear assignments: %w", err)}
	}
	if _, err := s.tx.ExecContext(ctx, "DELETE FROM contexts"); err != nil {
		return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("clear contexts: %w", err)}
	}
	if _, err := s.tx.ExecContext(ctx, `
		INSERT INTO contexts (project, category, entity) VALUES ('', '', '')
	`); err != nil {
		return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("seed studio context: %w", err)}
	}

	for _, row := range rows {
		contextID, err := s.ensureContext(ctx, row.Context)
		if err != nil {
			return err
		}
		if _, err := s.tx.ExecContext(ctx, `
			INSERT INTO assignments (context_id, package, step, software)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (context_id, package, step, software) DO NOTHING
		`, contextID, row.Package, row.Scope.Step, row.Scope.Software); err != nil {
			return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("copy assignment: %w", err)}
		}
	}
	return nil
}

// AddDeployRecord inserts one deploy history row. Production only;
// immutable after Commit.
func (s *Store) AddDeployRecord(ctx context.Context, rec Record) error {
	if s.readOnly {
		return ErrReadOnly
	}
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO deploy_history (id, at, comment, snapshot)
		VALUES (?, ?, ?, ?)
	`, rec.ID, rec.At, rec.Comment, rec.Snapshot)
	if err != nil {
		return &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("add deploy record: %w", err)}
	}
	return nil
}

// ensureContext returns the row id for the context, inserting it first
// if needed.
func (s *Store) ensureContext(ctx context.Context, c hierarchy.Context) (int64, error) {
	if _, err := s.tx.ExecContext(ctx, `
		INSERT INTO contexts (project, category, entity)
		VALUES (?, ?, ?)
		ON CONFLICT (project, category, entity) DO NOTHING
	`, c.Project, c.Category, c.Entity); err != nil {
		return 0, &PersistenceError{Op: "exec", Path: s.path, Err: fmt.Errorf("insert context: %w", err)}
	}

	var id int64
	err := s.tx.QueryRowContext(ctx, `
		SELECT id FROM contexts WHERE project = ? AND category = ? AND entity = ?
	`, c.Project, c.Category, c.Entity).Scan(&id)
	if err != nil {
		return 0, &PersistenceError{Op: "query", Path: s.path, Err: fmt.Errorf("select context: %w", err)}
	}
	return id, nil
}

// currentUser resolves the change-log author, falling back to
// "unknown" when the process has no resolvable user.
func currentUser() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "unknown"
	}
	return u.Username
}
