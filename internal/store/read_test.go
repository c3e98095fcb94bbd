package store

import (
	"context"
	"testing"
	"time"

	"github.com/packstage/packstage/internal/hierarchy"
)

func TestListAssignments_ExactContextOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.AddAssignment(ctx, hierarchy.Context{}, "core-tools", hierarchy.Scope{}); err != nil {
		t.Fatalf("AddAssignment() failed: %v", err)
	}
	if err := s.AddAssignment(ctx, entityContext(), "maya-2024", hierarchy.Scope{}); err != nil {
		t.Fatalf("AddAssignment() failed: %v", err)
	}

	// No inheritance here: entity-level listing must not surface the
	// studio row, that is the resolver's job.
	rows, err := s.ListAssignments(ctx, entityContext(), hierarchy.Scope{})
	if err != nil {
		t.Fatalf("ListAssignments() failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Package != "maya-2024" {
		t.Errorf("rows = %+v, want only maya-2024", rows)
	}
}

func TestListAssignments_WildcardMatching(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	c := entityContext()

	if err := s.AddAssignment(ctx, c, "any-step", hierarchy.Scope{}); err != nil {
		t.Fatalf("AddAssignment() failed: %v", err)
	}
	if err := s.AddAssignment(ctx, c, "lighting-only", hierarchy.Scope{Step: "lighting"}); err != nil {
		t.Fatalf("AddAssignment() failed: %v", err)
	}

	cases := []struct {
		name  string
		scope hierarchy.Scope
		want  []string
	}{
		{"unscoped request matches wildcard rows only", hierarchy.Scope{}, []string{"any-step"}},
		{"matching step gets wildcard and concrete", hierarchy.Scope{Step: "lighting"}, []string{"any-step", "lighting-only"}},
		{"other step gets wildcard only", hierarchy.Scope{Step: "modeling"}, []string{"any-step"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := s.ListAssignments(ctx, c, tc.scope)
			if err != nil {
				t.Fatalf("ListAssignments() failed: %v", err)
			}
			var got []string
			for _, r := range rows {
				got = append(got, r.Package)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("packages = %v, want %v", got, tc.want)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("packages = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestListAssignments_SoftwareFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	c := entityContext()

	if err := s.AddAssignment(ctx, c, "maya-2024", hierarchy.Scope{Software: "maya"}); err != nil {
		t.Fatalf("AddAssignment() failed: %v", err)
	}

	rows, err := s.ListAssignments(ctx, c, hierarchy.Scope{Software: "maya"})
	if err != nil {
		t.Fatalf("ListAssignments() failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Package != "maya-2024" {
		t.Errorf("rows = %+v, want maya-2024", rows)
	}

	rows, err = s.ListAssignments(ctx, c, hierarchy.Scope{Software: "houdini"})
	if err != nil {
		t.Fatalf("ListAssignments() failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %+v, want none for other software", rows)
	}
}

func TestAssignments_DumpsAllWithContexts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.AddAssignment(ctx, hierarchy.Context{}, "core-tools", hierarchy.Scope{}); err != nil {
		t.Fatalf("AddAssignment() failed: %v", err)
	}
	if err := s.AddAssignment(ctx, hierarchy.Context{Project: "proj"}, "nuke-15", hierarchy.Scope{Step: "comp"}); err != nil {
		t.Fatalf("AddAssignment() failed: %v", err)
	}

	got, err := s.Assignments(ctx)
	if err != nil {
		t.Fatalf("Assignments() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if got[0].Context != (hierarchy.Context{}) || got[0].Package != "core-tools" {
		t.Errorf("first row = %+v, want studio core-tools", got[0])
	}
	if got[1].Context.Project != "proj" || got[1].Scope.Step != "comp" {
		t.Errorf("second row = %+v, want proj nuke-15 comp", got[1])
	}
}

func TestDeployHistory_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	older := Record{ID: "a", At: time.Now().Add(-time.Hour), Comment: "first", Snapshot: "one.db"}
	newer := Record{ID: "b", At: time.Now(), Comment: "second", Snapshot: "two.db"}
	if err := s.AddDeployRecord(ctx, older); err != nil {
		t.Fatalf("AddDeployRecord() failed: %v", err)
	}
	if err := s.AddDeployRecord(ctx, newer); err != nil {
		t.Fatalf("AddDeployRecord() failed: %v", err)
	}
	if err := s.Commit(ctx, ""); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}

	got, err := s.DeployHistory(ctx)
	if err != nil {
		t.Fatalf("DeployHistory() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("order = %s, %s; want newest first", got[0].ID, got[1].ID)
	}
}
