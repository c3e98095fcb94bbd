package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// UninstallOptions holds flags for the uninstall command.
type UninstallOptions struct {
	*RootOptions
	Context ContextFlag
	Scope   ScopeFlags
	Force   bool
	Comment string
}

// NewUninstallCommand creates the manage uninstall command.
func NewUninstallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UninstallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "uninstall <package>... [flags]",
		Short: "Remove packages from a staging context",
		Long: `Remove packages from the staging environment at the given context.

Removing a package that was never installed there is a silent no-op.
The remaining effective package set is validated before the change is
committed, unless --force is given.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(cmd, opts, args)
		},
	}

	opts.Context.Register(cmd)
	opts.Scope.Register(cmd)
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "skip confirmation and validation")
	cmd.Flags().StringVar(&opts.Comment, "comment", "", "change log comment")

	return cmd
}

func runUninstall(cmd *cobra.Command, opts *UninstallOptions, packages []string) error {
	c, err := opts.Context.Parse()
	if err != nil {
		return WrapExitError(ExitCommandError, "parse context", err)
	}
	scope := opts.Scope.Scope()

	if !opts.Force {
		question := fmt.Sprintf("Are you sure you want to uninstall the following packages: %s?",
			strings.Join(packages, ", "))
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), question) {
			plain(cmd.OutOrStdout(), "Operation cancelled.")
			return NewExitError(ExitFailure, "uninstall declined")
		}
	}

	st, err := openStaging(opts.RootOptions)
	if err != nil {
		return err
	}
	if err := requireInitialized(cmd, st); err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	for _, pkg := range packages {
		if err := st.RemoveAssignment(ctx, c, pkg, scope); err != nil {
			return WrapExitError(ExitCommandError, "uninstall "+pkg, err)
		}
	}

	if err := gateEdits(cmd, opts.RootOptions, st, c, scope, opts.Force, "uninstall"); err != nil {
		return err
	}

	if err := st.Commit(ctx, opts.Comment); err != nil {
		return WrapExitError(ExitCommandError, "commit staging changes", err)
	}

	success(cmd.OutOrStdout(), "Uninstalled %s at %s %s", strings.Join(packages, ", "), displayContexts(c), scope)
	return nil
}
