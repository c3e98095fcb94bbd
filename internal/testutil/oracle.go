// Package testutil provides shared test doubles for the packstage test
// suites.
package testutil

import (
	"context"

	"github.com/packstage/packstage/internal/validate"
)

// ScriptedOracle is an Oracle with fixed outcomes for tests.
//
// By default every set is solved. Conflicts marks the set it is checked
// against as unsolved; Unavailable simulates a transport failure.
// Calls records every package list the oracle was asked about.
type ScriptedOracle struct {
	Conflicts   []validate.Conflict
	Unavailable error
	Calls       [][]string
}

// Check implements validate.Oracle.
func (o *ScriptedOracle) Check(_ context.Context, packages []string) (*validate.Report, error) {
	o.Calls = append(o.Calls, append([]string{}, packages...))

	if o.Unavailable != nil {
		return nil, o.Unavailable
	}
	if len(o.Conflicts) > 0 {
		return &validate.Report{Solved: false, Conflicts: o.Conflicts}, nil
	}
	return &validate.Report{Solved: true}, nil
}
