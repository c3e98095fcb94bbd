package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandOracle_NoCommand(t *testing.T) {
	o := &CommandOracle{}

	_, err := o.Check(context.Background(), []string{"maya-2024"})
	require.Error(t, err)
}

func TestCommandOracle_MissingBinary(t *testing.T) {
	o := &CommandOracle{Command: "/nonexistent/resolver"}

	_, err := o.Check(context.Background(), []string{"maya-2024"})
	require.Error(t, err)
}

func TestCommandOracle_Solved(t *testing.T) {
	o := &CommandOracle{Command: "true"}

	report, err := o.Check(context.Background(), []string{"maya-2024"})
	require.NoError(t, err)
	assert.True(t, report.Solved)
}

func TestCommandOracle_ConflictExit(t *testing.T) {
	// Exit 1 with conflict lines on stdout is a rejection, not a
	// transport failure.
	o := &CommandOracle{
		Command: "sh",
		Args:    []string{"-c", `echo "maya-2024 python-2 requires python-3"; exit 1`},
	}

	report, err := o.Check(context.Background(), []string{"maya-2024", "python-2"})
	require.NoError(t, err)

	assert.False(t, report.Solved)
	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, "maya-2024", report.Conflicts[0].PackageA)
	assert.Equal(t, "python-2", report.Conflicts[0].PackageB)
	assert.Equal(t, "requires python-3", report.Conflicts[0].Reason)
}

func TestCommandOracle_OtherExitIsTransportFailure(t *testing.T) {
	o := &CommandOracle{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
	}

	_, err := o.Check(context.Background(), []string{"maya-2024"})
	require.Error(t, err)
}

func TestParseConflicts(t *testing.T) {
	got := parseConflicts("a b too old\n\nunparseable line?\n  \n")

	require.Len(t, got, 2)
	assert.Equal(t, Conflict{PackageA: "a", PackageB: "b", Reason: "too old"}, got[0])
	assert.Equal(t, Conflict{Reason: "unparseable line?"}, got[1])
}
