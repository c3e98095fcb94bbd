package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/packstage/packstage/internal/hierarchy"
)

// createTestStore opens an initialized store on a temp file.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staging.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// entityContext is the fully specified context used by most tests.
func entityContext() hierarchy.Context {
	return hierarchy.Context{Project: "proj", Category: "assets", Entity: "char"}
}

// countAssignments counts all assignment rows in the store.
func countAssignments(t *testing.T, s *Store) int {
	t.Helper()
	var count int
	if err := s.queryRow(context.Background(), "SELECT COUNT(*) FROM assignments").Scan(&count); err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	return count
}
