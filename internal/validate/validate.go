// Package validate gates package-set changes behind an external
// compatibility oracle.
//
// The gateway owns no compatibility logic of its own: it hands the
// candidate effective set to the oracle and translates the outcome into
// an accept/reject plus a conflict report. An oracle that cannot be
// reached is an UnavailableError, never a pass.
package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Conflict describes one incompatibility reported by the oracle.
type Conflict struct {
	PackageA string
	PackageB string
	Reason   string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s <-> %s: %s", c.PackageA, c.PackageB, c.Reason)
}

// Report is the oracle's verdict on a package set.
type Report struct {
	Solved    bool
	Conflicts []Conflict
}

// Oracle is the external package-compatibility checker. A returned
// error means the oracle could not run at all; an unsolved Report means
// it ran and found the set inconsistent.
type Oracle interface {
	Check(ctx context.Context, packages []string) (*Report, error)
}

// Result is the gateway's accept/reject decision.
type Result struct {
	OK        bool
	Conflicts []Conflict
}

// Err returns a ValidationError for a rejected result, nil otherwise.
// Convenience for callers that propagate the rejection as an error.
func (r *Result) Err() error {
	if r.OK {
		return nil
	}
	return &ValidationError{Conflicts: r.Conflicts}
}

// ValidationError reports that the effective package set is internally
// inconsistent. Bypassable only via an explicit force flag supplied by
// the caller.
type ValidationError struct {
	Conflicts []Conflict
}

func (e *ValidationError) Error() string {
	if len(e.Conflicts) == 0 {
		return "package set cannot be validated"
	}
	descriptions := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		descriptions[i] = c.String()
	}
	return "package set cannot be validated: " + strings.Join(descriptions, "; ")
}

// UnavailableError reports that the oracle could not be reached or
// executed. Distinct from a validation failure; callers must not treat
// it as "valid".
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("validation oracle unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is an oracle transport failure.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// Gateway submits candidate package sets to the oracle.
type Gateway struct {
	oracle Oracle
	log    zerolog.Logger
}

// NewGateway returns a Gateway over the given oracle.
func NewGateway(oracle Oracle, log zerolog.Logger) *Gateway {
	return &Gateway{oracle: oracle, log: log}
}

// Validate submits the package set to the oracle. Oracle transport
// failure returns an UnavailableError; a found inconsistency returns a
// rejecting Result with its conflicts, not an error.
func (g *Gateway) Validate(ctx context.Context, packages []string) (*Result, error) {
	report, err := g.oracle.Check(ctx, packages)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}

	if !report.Solved {
		g.log.Debug().
			Strs("packages", packages).
			Int("conflicts", len(report.Conflicts)).
			Msg("validation rejected package set")
		return &Result{OK: false, Conflicts: report.Conflicts}, nil
	}
	return &Result{OK: true}, nil
}

// LogForced records an explicit force-mode bypass of the gateway.
// Force is a caller policy, not gateway behavior, but every bypass is
// logged here so overrides stay auditable.
func (g *Gateway) LogForced(action string, packages []string) {
	g.log.Warn().
		Str("action", action).
		Strs("packages", packages).
		Msg("validation bypassed with force")
}
