package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/packstage/packstage/internal/deploy"
)

// historyRecord is the JSON payload for one deploy record.
type historyRecord struct {
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
	Comment  string    `json:"comment,omitempty"`
	Snapshot string    `json:"snapshot"`
}

// NewHistoryCommand creates the manage history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "history",
		Short:         "Show production's deploy history",
		Long:          "Show the deploy records stored in production, newest first.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, rootOpts)
		},
	}
	return cmd
}

func runHistory(cmd *cobra.Command, rootOpts *RootOptions) error {
	cfg, err := rootOpts.Config()
	if err != nil {
		return err
	}

	records, err := deploy.New(cfg, rootOpts.Logger(cmd)).History(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "read deploy history", err)
	}

	out := cmd.OutOrStdout()
	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: out}

	if formatter.JSON() {
		payload := make([]historyRecord, len(records))
		for i, r := range records {
			payload[i] = historyRecord{ID: r.ID, At: r.At, Comment: r.Comment, Snapshot: r.Snapshot}
		}
		return formatter.Success(payload)
	}

	if len(records) == 0 {
		plain(out, "No deploys recorded.")
		return nil
	}
	for _, r := range records {
		comment := r.Comment
		if comment == "" {
			comment = "-"
		}
		plain(out, "%s  %-30s %s", r.At.Format(time.RFC3339), comment, r.Snapshot)
	}
	return nil
}
