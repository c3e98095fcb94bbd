package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/packstage/packstage/internal/hierarchy"
)

// ScopeFlags are the step/software filters shared by every command
// that addresses a context.
type ScopeFlags struct {
	Step     string
	Software string
}

// Register adds the scope flags to the command.
func (f *ScopeFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Step, "step", "s", "", "pipeline step, defaults to all steps")
	cmd.Flags().StringVar(&f.Software, "software", "", "software name, defaults to any software")
}

// Scope returns the parsed scope.
func (f *ScopeFlags) Scope() hierarchy.Scope {
	return hierarchy.Scope{Step: f.Step, Software: f.Software}
}

// ContextFlag is the --context flag used by mutating commands, comma
// separated levels project,category,entity. Empty means studio.
type ContextFlag struct {
	Raw string
}

// Register adds the context flag to the command.
func (f *ContextFlag) Register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Raw, "context", "c", "", "production context as project[,category[,entity]], defaults to studio")
}

// Parse returns the context the flag addresses.
func (f *ContextFlag) Parse() (hierarchy.Context, error) {
	if strings.TrimSpace(f.Raw) == "" {
		return hierarchy.Context{}, nil
	}
	parts := strings.Split(f.Raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return hierarchy.ParseContext(parts...)
}

// parseContextArgs builds a context from positional arguments, used by
// the read-only list/resolve commands.
func parseContextArgs(args []string) (hierarchy.Context, error) {
	return hierarchy.ParseContext(args...)
}

// displayContexts renders the banner form of a context: the implicit
// studio level followed by the set fields.
func displayContexts(c hierarchy.Context) string {
	parts := []string{"studio"}
	for _, p := range []string{c.Project, c.Category, c.Entity} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
