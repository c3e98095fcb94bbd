package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandOracle runs an external resolver binary as the compatibility
// oracle. The package list is passed as arguments after any fixed
// args; exit 0 means solved, exit 1 means the set is inconsistent with
// conflicts on stdout, anything else is a transport failure.
//
// Conflict lines are "<packageA> <packageB> <reason...>"; lines that
// don't parse are kept verbatim as the reason.
type CommandOracle struct {
	// Command is the resolver binary to invoke.
	Command string

	// Args are fixed arguments placed before the package list.
	Args []string
}

// Check implements Oracle.
func (o *CommandOracle) Check(ctx context.Context, packages []string) (*Report, error) {
	if o.Command == "" {
		return nil, errors.New("no oracle command configured")
	}

	args := append(append([]string{}, o.Args...), packages...)
	cmd := exec.CommandContext(ctx, o.Command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return &Report{Solved: true}, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		return nil, fmt.Errorf("run %s: %w (%s)", o.Command, err, strings.TrimSpace(stderr.String()))
	}

	return &Report{Solved: false, Conflicts: parseConflicts(stdout.String())}, nil
}

// parseConflicts turns the oracle's stdout into conflict descriptors.
func parseConflicts(output string) []Conflict {
	var conflicts []Conflict
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			conflicts = append(conflicts, Conflict{Reason: line})
			continue
		}
		conflicts = append(conflicts, Conflict{
			PackageA: fields[0],
			PackageB: fields[1],
			Reason:   strings.Join(fields[2:], " "),
		})
	}
	return conflicts
}
