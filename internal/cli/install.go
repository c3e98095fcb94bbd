package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packstage/packstage/internal/hierarchy"
	"github.com/packstage/packstage/internal/resolver"
	"github.com/packstage/packstage/internal/store"
	"github.com/packstage/packstage/internal/validate"
)

// InstallOptions holds flags for the install command.
type InstallOptions struct {
	*RootOptions
	Context   ContextFlag
	Scope     ScopeFlags
	Uninstall []string
	Force     bool
	Comment   string
}

// NewInstallCommand creates the manage install command.
func NewInstallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InstallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "install <package>... [flags]",
		Short: "Install packages into a staging context",
		Long: `Install packages into the staging environment at the given context.

Packages listed with --uninstall are removed first; the uninstall step
always runs before any install in the same invocation. The resulting
effective package set is validated through the resolver before the
change is committed, unless --force is given.

Example:
  packstage manage install maya-2024 --context proj,assets,char --software maya`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, opts, args)
		},
	}

	opts.Context.Register(cmd)
	opts.Scope.Register(cmd)
	cmd.Flags().StringSliceVar(&opts.Uninstall, "uninstall", nil, "packages to remove before installing")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "skip confirmation and validation")
	cmd.Flags().StringVar(&opts.Comment, "comment", "", "change log comment")

	return cmd
}

func runInstall(cmd *cobra.Command, opts *InstallOptions, packages []string) error {
	c, err := opts.Context.Parse()
	if err != nil {
		return WrapExitError(ExitCommandError, "parse context", err)
	}
	scope := opts.Scope.Scope()

	if !opts.Force {
		question := fmt.Sprintf("Are you sure you want to install the following packages: %s?",
			strings.Join(packages, ", "))
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), question) {
			plain(cmd.OutOrStdout(), "Operation cancelled.")
			return NewExitError(ExitFailure, "install declined")
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
	for _, pkg := range opts.Uninstall {
		if err := st.RemoveAssignment(ctx, c, pkg, scope); err != nil {
			return WrapExitError(ExitCommandError, "uninstall "+pkg, err)
		}
	}
	for _, pkg := range packages {
		if err := st.AddAssignment(ctx, c, pkg, scope); err != nil {
			return WrapExitError(ExitCommandError, "install "+pkg, err)
		}
	}

	if err := gateEdits(cmd, opts.RootOptions, st, c, scope, opts.Force, "install"); err != nil {
		return err
	}

	if err := st.Commit(ctx, opts.Comment); err != nil {
		return WrapExitError(ExitCommandError, "commit staging changes", err)
	}

	success(cmd.OutOrStdout(), "Installed %s at %s %s", strings.Join(packages, ", "), displayContexts(c), scope)
	return nil
}

// gateEdits validates the staged effective set at the edited context
// before commit. Force bypasses the gateway entirely; the bypass is
// logged as an explicit override.
func gateEdits(cmd *cobra.Command, rootOpts *RootOptions, st *store.Store, c hierarchy.Context, scope hierarchy.Scope, force bool, action string) error {
	effective, err := resolver.New(st).Resolve(cmd.Context(), c, scope)
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve effective package set", err)
	}
	packages := resolver.Packages(effective)

	gateway, err := rootOpts.Gateway(cmd)
	if err != nil {
		return err
	}

	if force {
		gateway.LogForced(action, packages)
		return nil
	}

	result, err := gateway.Validate(cmd.Context(), packages)
	if err != nil {
		if validate.IsUnavailable(err) {
			return WrapExitError(ExitCommandError, "validation oracle unavailable, not treating as valid", err)
		}
		return WrapExitError(ExitCommandError, "validate package set", err)
	}
	if !result.OK {
		out := cmd.OutOrStdout()
		fail(out, "Package set cannot be validated:")
		for _, conflict := range result.Conflicts {
			plain(out, "  %s", conflict)
		}
		return WrapExitError(ExitFailure, "validation failed", result.Err())
	}
	return nil
}
