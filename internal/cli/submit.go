package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/accord/internal/access"
	"github.com/roach88/accord/internal/engine"
	"github.com/roach88/accord/internal/ir"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	Database string
	tx       txFlags
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Authorize, weigh and record a transaction",
		Long: `Run a transaction through the full pipeline: authorize the sender,
integrate the modifier, compute the weight and append the submission to
the ledger. Submissions below the publish threshold are recorded as dropped.

Without a database (--db or the config's database) nothing is persisted.

Exit codes:
  0 - Submission recorded
  1 - Authorization denied
  2 - Invalid transaction or command error

Examples:
  accord submit --db ./accord.db --sender did:t0:protocol-overseer --intent GOLD_BAR_VOTE_II --magnitude 900
  accord submit --db ./accord.db --sender did:t3:auditor-7 --intent MonitorFeed --modifier-index 0 --message "feed check"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	opts.tx.register(cmd, true)

	return cmd
}

func runSubmit(opts *SubmitOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	req := opts.tx.request(cmd)

	rt, err := openRuntime(cmd.Context(), opts.cfg(), opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to initialize", err)
	}
	defer rt.Close()
	if rt.store == nil {
		slog.Warn("no database configured, submission will not be persisted")
	}

	sub, err := rt.engine.Submit(cmd.Context(), req)
	if err != nil {
		return submitFailure(formatter, err)
	}

	return formatter.Render(sub, func(w io.Writer) {
		printSubmission(w, sub)
	})
}

func submitFailure(formatter *OutputFormatter, err error) error {
	var ae *access.AccessError
	if errors.As(err, &ae) {
		return formatter.Fail(ExitFailure, string(ae.Code), ae.Reason, nil)
	}
	var se *engine.SubmitError
	if errors.As(err, &se) {
		return formatter.Fail(ExitCommandError, string(se.Code), se.Message, se.Err)
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, "submission failed", err)
}

// rejectionCode is the error code reported for a failed submission.
func rejectionCode(err error) string {
	var ae *access.AccessError
	if errors.As(err, &ae) {
		return string(ae.Code)
	}
	var se *engine.SubmitError
	if errors.As(err, &se) {
		return string(se.Code)
	}
	return ErrCodeGeneric
}

func printSubmission(w io.Writer, sub ir.Submission) {
	fmt.Fprintf(w, "%s  seq=%d  %s\n", sub.ID, sub.Seq, sub.Status)
	fmt.Fprintf(w, "  sender:    %s\n", sub.Transaction.Sender)
	fmt.Fprintf(w, "  intent:    %s\n", sub.Transaction.Intent)
	fmt.Fprintf(w, "  magnitude: %d\n", sub.Transaction.SignalMagnitude)
	fmt.Fprintf(w, "  modifier:  %d\n", sub.Modifier)
	fmt.Fprintf(w, "  weight:    %d\n", sub.Weight)
	fmt.Fprintf(w, "  digest:    %s\n", sub.TxDigest)
	if sub.Message != "" {
		fmt.Fprintf(w, "  message:   %s\n", sub.Message)
	}
}
