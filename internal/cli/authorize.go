package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/accord/internal/access"
	"github.com/roach88/accord/internal/ir"
)

// AuthorizeOptions holds flags for the authorize command.
type AuthorizeOptions struct {
	*RootOptions
	Database string
	Sender   string
	Intent   string
}

// Decision is the output of the authorize command.
type Decision struct {
	Identifier string `json:"identifier"`
	Intent     string `json:"intent"`
	Tier       string `json:"tier,omitempty"`
	Granted    bool   `json:"granted"`
	Code       string `json:"code,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// NewAuthorizeCommand creates the authorize command.
func NewAuthorizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuthorizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Decide whether a sender may perform an intent",
		Long: `Resolve the sender and evaluate the tier policy for one intent.

Exit codes:
  0 - Permitted
  1 - Denied (UNAUTHORIZED or INTENT_FORBIDDEN)
  2 - Command error

Examples:
  accord authorize --sender did:t1:rozel-rosel-admin --intent GOLD_BAR_VOTE_II
  accord authorize --sender did:t3:auditor-7 --intent MonitorFeed --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthorize(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite identity backend (overrides config)")
	cmd.Flags().StringVar(&opts.Sender, "sender", "", "sender identifier (required)")
	_ = cmd.MarkFlagRequired("sender")
	cmd.Flags().StringVar(&opts.Intent, "intent", "", "intent token")

	return cmd
}

func runAuthorize(opts *AuthorizeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	rt, err := openRuntime(cmd.Context(), opts.cfg(), opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to initialize", err)
	}
	defer rt.Close()

	tx := ir.Transaction{Sender: opts.Sender, Intent: opts.Intent}
	cred, err := rt.registry.Check(cmd.Context(), tx)

	decision := Decision{
		Identifier: opts.Sender,
		Intent:     opts.Intent,
		Tier:       string(cred.Tier),
		Granted:    err == nil,
	}
	text := func(w io.Writer) {
		verdict := "DENIED"
		if decision.Granted {
			verdict = "GRANTED"
		}
		fmt.Fprintf(w, "%s %s -> %s", verdict, decision.Identifier, decision.Intent)
		if decision.Tier != "" {
			fmt.Fprintf(w, " (tier %s)", decision.Tier)
		}
		fmt.Fprintln(w)
	}

	if err == nil {
		return formatter.Render(decision, text)
	}

	var ae *access.AccessError
	if !errors.As(err, &ae) {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "authorization failed", err)
	}
	decision.Code = string(ae.Code)
	decision.Reason = ae.Reason
	if err := formatter.Denied(decision, decision.Code, ae.Reason, text); err != nil {
		return err
	}
	return WrapExitError(ExitFailure, "authorization denied", ae)
}
