package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/packstage/packstage/internal/config"
	"github.com/packstage/packstage/internal/validate"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"

	// cfg is populated by PersistentPreRunE once the config loads.
	cfg    config.Config
	loaded bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the packstage CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "packstage",
		Short: "Staged package-context management for production pipelines",
		Long: `packstage manages which software packages apply to which production
context (studio, project, category, entity). Changes are prepared in a
staging database, validated against an external resolver, and promoted
to production with an explicit deploy.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", defaultConfigPath(), "path to the packstage config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewManageCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))

	return cmd
}

// Config loads (once) and returns the configuration.
func (o *RootOptions) Config() (config.Config, error) {
	if o.loaded {
		return o.cfg, nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "load config", err)
	}
	o.cfg = cfg
	o.loaded = true
	return cfg, nil
}

// Logger builds the console logger for the command.
func (o *RootOptions) Logger(cmd *cobra.Command) zerolog.Logger {
	return config.NewLogger(cmd.ErrOrStderr(), o.Verbose)
}

// Gateway builds the validation gateway from the configured resolver
// command.
func (o *RootOptions) Gateway(cmd *cobra.Command) (*validate.Gateway, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, err
	}

	oracle := &validate.CommandOracle{}
	if len(cfg.ResolverCommand) > 0 {
		oracle.Command = cfg.ResolverCommand[0]
		oracle.Args = cfg.ResolverCommand[1:]
	}
	return validate.NewGateway(oracle, o.Logger(cmd)), nil
}

// defaultConfigPath honors the PACKSTAGE_CONFIG environment variable.
func defaultConfigPath() string {
	if path := os.Getenv("PACKSTAGE_CONFIG"); path != "" {
		return path
	}
	return "packstage.yaml"
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
