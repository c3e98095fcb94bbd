// Package resolver computes the effective package set for a context.
//
// Assignments are unioned across the context and all its ancestor
// levels: a studio-wide package stays in effect for an entity-level
// query, and re-installing the same package name at a deeper level is
// idempotent rather than a second instance or an override.
package resolver

import (
	"context"

	"github.com/packstage/packstage/internal/hierarchy"
	"github.com/packstage/packstage/internal/store"
)

// Resolved is one package in the effective set. Source records the
// hierarchy level the assignment came from so callers can report why
// the package is present.
type Resolved struct {
	Package string
	Scope   hierarchy.Scope
	Source  hierarchy.Level
}

// Resolver reads effective package sets out of one store.
type Resolver struct {
	store *store.Store
}

// New returns a Resolver over the given store handle.
func New(st *store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve computes the effective package set for the context under the
// given scope. Levels are applied from studio down to the requested
// context, preserving the search order the pipeline expects; the first
// occurrence of a package name wins and deeper duplicates are dropped.
func (r *Resolver) Resolve(ctx context.Context, c hierarchy.Context, sc hierarchy.Scope) ([]Resolved, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ancestors := c.Ancestors()

	var out []Resolved
	seen := make(map[string]bool)

	// Ancestors() is most specific first; walk it backwards so studio
	// assignments land at the front of the result.
	for i := len(ancestors) - 1; i >= 0; i-- {
		level := ancestors[i]
		rows, err := r.store.ListAssignments(ctx, level, sc)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if seen[row.Package] {
				continue
			}
			seen[row.Package] = true
			out = append(out, Resolved{
				Package: row.Package,
				Scope:   row.Scope,
				Source:  level.Level(),
			})
		}
	}
	return out, nil
}

// Packages flattens a resolved set to its package names, in order.
// This is the oracle's input and the CLI's display list.
func Packages(set []Resolved) []string {
	out := make([]string, len(set))
	for i, r := range set {
		out[i] = r.Package
	}
	return out
}
