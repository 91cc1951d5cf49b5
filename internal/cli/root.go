package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/accord/internal/config"
	"github.com/roach88/accord/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	LogLevel   string

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the accord CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "accord",
		Version: ir.EngineVersion,
		Short:   "accord - tiered intent authorization and transaction weighting",
		Long: `Authorize transactions against a tiered access policy, weigh them
deterministically and record them in an append-only SQLite ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (implies --log-level debug)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to accord.yaml")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides the config file")

	// Add subcommands
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewAuthorizeCommand(opts))
	cmd.AddCommand(NewWeightCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewIdentityCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup validates global flags, loads the config and installs the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}

	switch {
	case o.LogLevel != "":
		if _, err := config.ParseLevel(o.LogLevel); err != nil {
			return WrapExitError(ExitCommandError, "invalid --log-level", err)
		}
		cfg.Log.Level = o.LogLevel
	case o.Verbose:
		cfg.Log.Level = "debug"
	}

	o.Config = cfg
	slog.SetDefault(cfg.NewLogger(cmd.ErrOrStderr()))
	return nil
}

// cfg returns the loaded config, falling back to the defaults when a
// subcommand is executed without the root command (as tests do).
func (o *RootOptions) cfg() *config.Config {
	if o.Config == nil {
		o.Config = config.Default()
	}
	return o.Config
}
