package cli

import (
	"github.com/spf13/cobra"

	"github.com/packstage/packstage/internal/hierarchy"
	"github.com/packstage/packstage/internal/resolver"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Scope ScopeFlags
}

// listedPackage is the JSON payload for one effective package.
type listedPackage struct {
	Package  string `json:"package"`
	Step     string `json:"step,omitempty"`
	Software string `json:"software,omitempty"`
	Source   string `json:"source"`
}

// NewListCommand creates the manage list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list [project [category [entity]]]",
		Short: "List the effective package set of a staging context",
		Long: `List the effective package set of a context in staging.

The effective set is the union of assignments from the context and all
its ancestor levels, after step/software filtering. The source column
reports the level each package was assigned at.`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, args)
		},
	}

	opts.Scope.Register(cmd)
	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions, args []string) error {
	c, err := parseContextArgs(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse context", err)
	}
	scope := opts.Scope.Scope()

	st, err := openStaging(opts.RootOptions)
	if err != nil {
		return err
	}
	if err := requireInitialized(cmd, st); err != nil {
		return err
	}
	defer st.Close()

	effective, err := resolver.New(st).Resolve(cmd.Context(), c, scope)
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve effective package set", err)
	}

	return printEffectiveSet(cmd, opts.RootOptions, c, scope, effective)
}

// printEffectiveSet renders a resolved set in the configured format.
// Shared with the resolve command.
func printEffectiveSet(cmd *cobra.Command, rootOpts *RootOptions, c hierarchy.Context, scope hierarchy.Scope, effective []resolver.Resolved) error {
	out := cmd.OutOrStdout()
	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: out}

	if formatter.JSON() {
		payload := make([]listedPackage, len(effective))
		for i, r := range effective {
			payload[i] = listedPackage{
				Package:  r.Package,
				Step:     r.Scope.Step,
				Software: r.Scope.Software,
				Source:   r.Source.String(),
			}
		}
		return formatter.Success(payload)
	}

	banner(out, displayContexts(c), scope.String())
	if len(effective) == 0 {
		plain(out, "No packages installed.")
		return nil
	}
	for _, r := range effective {
		line := r.Package
		if r.Scope.Step != "" {
			line += " step=" + r.Scope.Step
		}
		if r.Scope.Software != "" {
			line += " software=" + r.Scope.Software
		}
		plain(out, "  %-40s (from %s)", line, r.Source)
	}
	return nil
}
