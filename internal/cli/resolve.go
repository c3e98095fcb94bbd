package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/packstage/packstage/internal/resolver"
	"github.com/packstage/packstage/internal/store"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Scope   ScopeFlags
	Staging bool
}

// NewResolveCommand creates the top-level resolve command: the
// read-only query live pipeline processes use against production.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve [project [category [entity]]]",
		Short: "Resolve the effective package set of a production context",
		Long: `Resolve the effective package set of a context against production
(or staging with --staging) without mutating anything.

The resulting package list is what an environment launcher would hand
to the package resolver; launching software itself is outside this
tool.`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts, args)
		},
	}

	opts.Scope.Register(cmd)
	cmd.Flags().BoolVar(&opts.Staging, "staging", false, "resolve against staging instead of production")

	return cmd
}

func runResolve(cmd *cobra.Command, opts *ResolveOptions, args []string) error {
	c, err := parseContextArgs(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse context", err)
	}
	scope := opts.Scope.Scope()

	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	path := cfg.ProductionDatabase
	if opts.Staging {
		path = cfg.StagingPath()
	}
	if !store.Exists(path) {
		return NewExitError(ExitCommandError, "database not found: "+path)
	}

	st, err := store.Open(path, store.ReadOnly())
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer st.Close()

	effective, err := resolver.New(st).Resolve(cmd.Context(), c, scope)
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve effective package set", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if formatter.JSON() {
		return formatter.Success(resolver.Packages(effective))
	}

	out := cmd.OutOrStdout()
	banner(out, displayContexts(c), scope.String())
	plain(out, "Installed packages: %s", strings.Join(resolver.Packages(effective), ", "))
	return nil
}
