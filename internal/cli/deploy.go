package cli

import (
	"github.com/spf13/cobra"

	"github.com/packstage/packstage/internal/deploy"
	"github.com/packstage/packstage/internal/store"
	"github.com/packstage/packstage/internal/validate"
)

// DeployOptions holds flags for the deploy command.
type DeployOptions struct {
	*RootOptions
	Force   bool
	Comment string
}

// NewDeployCommand creates the manage deploy command.
func NewDeployCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeployOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deploy [flags]",
		Short: "Deploy the staging configuration to production",
		Long: `Replace production's package assignments wholesale with staging's
current content.

The full staging package set is validated through the resolver first,
and a confirmation is asked; --force skips both. With keep_history
enabled, a timestamped snapshot of the pre-deploy production database
is written to the history folder before anything is replaced.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "skip confirmation and validation")
	cmd.Flags().StringVar(&opts.Comment, "comment", "", "deploy history comment")

	return cmd
}

func runDeploy(cmd *cobra.Command, opts *DeployOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	log := opts.Logger(cmd)

	packages, err := stagingPackageSet(cmd, opts.RootOptions)
	if err != nil {
		return err
	}

	gateway, err := opts.Gateway(cmd)
	if err != nil {
		return err
	}

	if opts.Force {
		gateway.LogForced("deploy", packages)
	} else {
		result, err := gateway.Validate(cmd.Context(), packages)
		if err != nil {
			if validate.IsUnavailable(err) {
				return WrapExitError(ExitCommandError, "validation oracle unavailable, not treating as valid", err)
			}
			return WrapExitError(ExitCommandError, "validate staging package set", err)
		}
		if !result.OK {
			out := cmd.OutOrStdout()
			fail(out, "Staging configuration cannot be validated:")
			for _, conflict := range result.Conflicts {
				plain(out, "  %s", conflict)
			}
			return WrapExitError(ExitFailure, "validation failed", result.Err())
		}

		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
			"Do you want to move the staging configuration to production?") {
			plain(cmd.OutOrStdout(), "Deployment aborted.")
			return NewExitError(ExitFailure, "deployment declined")
		}
	}

	outcome, err := deploy.New(cfg, log).Deploy(cmd.Context(), deploy.Options{Comment: opts.Comment})
	if err != nil {
		return WrapExitError(ExitCommandError, "deploy", err)
	}

	out := cmd.OutOrStdout()
	if outcome.Snapshot != "" {
		plain(out, "Pre-deploy snapshot: %s", outcome.Snapshot)
	}
	success(out, "Production configuration updated (%d assignments).", outcome.Deployed)
	return nil
}

// stagingPackageSet returns the deduplicated package names across all
// of staging, the candidate set the deploy gate validates.
func stagingPackageSet(cmd *cobra.Command, rootOpts *RootOptions) ([]string, error) {
	cfg, err := rootOpts.Config()
	if err != nil {
		return nil, err
	}
	if !store.Exists(cfg.StagingPath()) {
		return nil, NewExitError(ExitCommandError, "staging database does not exist, run 'packstage manage init' first")
	}

	st, err := store.Open(cfg.StagingPath(), store.ReadOnly())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open staging database", err)
	}
	defer st.Close()

	rows, err := st.Assignments(cmd.Context())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "read staging assignments", err)
	}

	seen := make(map[string]bool)
	var packages []string
	for _, row := range rows {
		if !seen[row.Package] {
			seen[row.Package] = true
			packages = append(packages, row.Package)
		}
	}
	return packages, nil
}
