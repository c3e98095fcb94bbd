package resolver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packstage/packstage/internal/hierarchy"
	"github.com/packstage/packstage/internal/store"
)

func newTestResolver(t *testing.T) (*Resolver, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "staging.db"))
	require.NoError(t, err)
	require.NoError(t, st.Initialize(context.Background()))
	t.Cleanup(func() { st.Close() })
	return New(st), st
}

func TestResolve_UnionAcrossLevels(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()
	entity := hierarchy.Context{Project: "proj", Category: "assets", Entity: "char"}

	require.NoError(t, st.AddAssignment(ctx, hierarchy.Context{}, "core-tools", hierarchy.Scope{}))
	require.NoError(t, st.AddAssignment(ctx, hierarchy.Context{Project: "proj"}, "proj-config", hierarchy.Scope{}))
	require.NoError(t, st.AddAssignment(ctx, entity, "char-rig", hierarchy.Scope{}))

	set, err := r.Resolve(ctx, entity, hierarchy.Scope{})
	require.NoError(t, err)

	// Union, studio first; a studio-wide package stays in effect at
	// the entity level.
	assert.Equal(t, []string{"core-tools", "proj-config", "char-rig"}, Packages(set))
	assert.Equal(t, hierarchy.Studio, set[0].Source)
	assert.Equal(t, hierarchy.Project, set[1].Source)
	assert.Equal(t, hierarchy.Entity, set[2].Source)
}

func TestResolve_DeeperDuplicateIsDropped(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()
	entity := hierarchy.Context{Project: "proj", Category: "assets", Entity: "char"}

	require.NoError(t, st.AddAssignment(ctx, hierarchy.Context{}, "core-tools", hierarchy.Scope{}))
	require.NoError(t, st.AddAssignment(ctx, entity, "core-tools", hierarchy.Scope{}))

	set, err := r.Resolve(ctx, entity, hierarchy.Scope{})
	require.NoError(t, err)

	require.Len(t, set, 1)
	assert.Equal(t, "core-tools", set[0].Package)
	assert.Equal(t, hierarchy.Studio, set[0].Source)
}

func TestResolve_NoSidewaysInheritance(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()
	char := hierarchy.Context{Project: "proj", Category: "assets", Entity: "char"}
	other := hierarchy.Context{Project: "proj", Category: "assets", Entity: "other"}

	require.NoError(t, st.AddAssignment(ctx, char, "maya-2024", hierarchy.Scope{Software: "maya"}))

	set, err := r.Resolve(ctx, char, hierarchy.Scope{Software: "maya"})
	require.NoError(t, err)
	assert.Equal(t, []string{"maya-2024"}, Packages(set))

	set, err = r.Resolve(ctx, other, hierarchy.Scope{Software: "maya"})
	require.NoError(t, err)
	assert.Empty(t, Packages(set))
}

func TestResolve_StepWildcard(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()
	entity := hierarchy.Context{Project: "proj", Category: "shots", Entity: "sh010"}

	require.NoError(t, st.AddAssignment(ctx, hierarchy.Context{}, "houdini-19", hierarchy.Scope{Step: "lighting"}))
	require.NoError(t, st.AddAssignment(ctx, hierarchy.Context{}, "core-tools", hierarchy.Scope{}))

	set, err := r.Resolve(ctx, entity, hierarchy.Scope{Step: "lighting"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"core-tools", "houdini-19"}, Packages(set))

	set, err = r.Resolve(ctx, entity, hierarchy.Scope{Step: "modeling"})
	require.NoError(t, err)
	assert.Equal(t, []string{"core-tools"}, Packages(set))
}

func TestResolve_UninstallRemovesFromEffectiveSet(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()
	entity := hierarchy.Context{Project: "proj", Category: "shots", Entity: "sh010"}
	lighting := hierarchy.Scope{Step: "lighting"}

	require.NoError(t, st.AddAssignment(ctx, hierarchy.Context{}, "houdini-19", lighting))
	require.NoError(t, st.RemoveAssignment(ctx, hierarchy.Context{}, "houdini-19", lighting))

	set, err := r.Resolve(ctx, entity, lighting)
	require.NoError(t, err)
	assert.NotContains(t, Packages(set), "houdini-19")
}

func TestResolve_InvalidContext(t *testing.T) {
	r, _ := newTestResolver(t)

	_, err := r.Resolve(context.Background(), hierarchy.Context{Entity: "char"}, hierarchy.Scope{})
	require.Error(t, err)

	var invalid *hierarchy.InvalidContextError
	assert.True(t, errors.As(err, &invalid))
}
