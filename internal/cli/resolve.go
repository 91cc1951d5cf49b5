package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Database string
}

// ResolveResult is the output of the resolve command.
type ResolveResult struct {
	Identifier    string `json:"identifier"`
	Found         bool   `json:"found"`
	Tier          string `json:"tier,omitempty"`
	IntegrityHash string `json:"integrity_hash,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <identifier>",
		Short: "Look up the credential of an identifier",
		Long: `Resolve an identifier against the identity tables without making
an authorization decision.

Exit codes:
  0 - Identifier resolved
  1 - Identifier not recognized
  2 - Command error

Examples:
  accord resolve did:t0:protocol-overseer
  accord resolve did:t3:auditor-7 --db ./accord.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite identity backend (overrides config)")

	return cmd
}

func runResolve(opts *ResolveOptions, identifier string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	rt, err := openRuntime(cmd.Context(), opts.cfg(), opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to initialize", err)
	}
	defer rt.Close()

	cred, ok, err := rt.registry.Resolve(cmd.Context(), identifier)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "identity lookup failed", err)
	}

	result := ResolveResult{Identifier: identifier, Found: ok}
	if !ok {
		msg := fmt.Sprintf("identifier %q not recognized", identifier)
		if err := formatter.Denied(result, ErrCodeNotFound, msg, nil); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	result.Tier = string(cred.Tier)
	result.IntegrityHash = fmt.Sprintf("0x%016X", cred.IntegrityHash)
	return formatter.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n", identifier)
		fmt.Fprintf(w, "  tier:           %s\n", result.Tier)
		fmt.Fprintf(w, "  integrity hash: %s\n", result.IntegrityHash)
	})
}
