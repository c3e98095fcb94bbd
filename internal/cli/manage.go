package cli

import (
	"github.com/spf13/cobra"

	"github.com/packstage/packstage/internal/store"
)

// NewManageCommand creates the manage command tree: every operation
// that edits the staging environment or promotes it to production.
func NewManageCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manage",
		Short: "Edit the staging environment and deploy it to production",
		Long: `Edit the staging package assignments and deploy them to production.

The safe workflow always mutates staging: install and uninstall prepare
changes, the validation gateway checks them, and deploy promotes the
whole staging configuration at once.`,
	}

	cmd.AddCommand(NewInitCommand(rootOpts))
	cmd.AddCommand(NewInstallCommand(rootOpts))
	cmd.AddCommand(NewUninstallCommand(rootOpts))
	cmd.AddCommand(NewListCommand(rootOpts))
	cmd.AddCommand(NewDeployCommand(rootOpts))
	cmd.AddCommand(NewHistoryCommand(rootOpts))

	return cmd
}

// openStaging opens the staging store and verifies it has been
// initialized.
func openStaging(rootOpts *RootOptions) (*store.Store, error) {
	cfg, err := rootOpts.Config()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.StagingPath())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open staging database", err)
	}
	return st, nil
}

// requireInitialized closes the store and returns a command error when
// the schema is missing.
func requireInitialized(cmd *cobra.Command, st *store.Store) error {
	ok, err := st.Initialized(cmd.Context())
	if err != nil {
		st.Close()
		return WrapExitError(ExitCommandError, "check staging database", err)
	}
	if !ok {
		st.Close()
		return NewExitError(ExitCommandError, "staging database is not initialized, run 'packstage manage init' first")
	}
	return nil
}

// NewInitCommand creates the manage init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Initialize the staging database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.Config()
			if err != nil {
				return err
			}

			if !force && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
				"Do you want to generate a new staging database (existing values could be lost)?") {
				plain(cmd.OutOrStdout(), "Database initialization aborted.")
				return NewExitError(ExitFailure, "initialization declined")
			}

			st, err := store.Open(cfg.StagingPath())
			if err != nil {
				return WrapExitError(ExitCommandError, "open staging database", err)
			}
			defer st.Close()

			if err := st.Initialize(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "initialize staging database", err)
			}

			success(cmd.OutOrStdout(), "Staging database initialized at %s", cfg.StagingPath())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}
