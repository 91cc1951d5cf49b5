package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/accord/internal/ir"
	"github.com/roach88/accord/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Sender   string // optional - filter to one sender
	Intent   string // optional - filter to one intent
	Status   string // optional - published | dropped
	SinceSeq int64
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Submissions []ir.Submission `json:"submissions"`
	Stats       TraceStats      `json:"stats"`
}

// TraceStats summarizes the whole ledger, regardless of filters.
type TraceStats struct {
	Total     int      `json:"total"`
	Published int      `json:"published"`
	Dropped   int      `json:"dropped"`
	LastSeq   int64    `json:"last_seq"`
	Corrupt   []string `json:"corrupt,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "List recorded submissions",
		Long: `List the submissions recorded in the ledger in seq order.

Every record is checked against its stored digest; records that fail the
check are listed under corrupt and make the command exit 1.

Examples:
  accord trace --db ./accord.db
  accord trace --db ./accord.db --sender did:t3:auditor-7
  accord trace --db ./accord.db --status dropped --format json
  accord trace --db ./accord.db --intent WriteLedger --since-seq 100`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Sender, "sender", "", "filter to one sender")
	cmd.Flags().StringVar(&opts.Intent, "intent", "", "filter to one intent")
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (published|dropped)")
	cmd.Flags().Int64Var(&opts.SinceSeq, "since-seq", 0, "only submissions with seq >= N")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd)

	status := ir.SubmissionStatus(opts.Status)
	switch status {
	case "", ir.StatusPublished, ir.StatusDropped:
	default:
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs,
			fmt.Sprintf("invalid --status %q: must be published or dropped", opts.Status), nil)
	}

	if opts.SinceSeq < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs,
			fmt.Sprintf("invalid --since-seq %d: must be >= 0", opts.SinceSeq), nil)
	}

	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	report, err := st.VerifyLedger(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to verify ledger", err)
	}

	result := TraceResult{
		Submissions: []ir.Submission{},
		Stats: TraceStats{
			Total:     report.Total,
			Published: report.Published,
			Dropped:   report.Dropped,
			LastSeq:   report.LastSeq,
			Corrupt:   report.Corrupt,
		},
	}
	if len(report.Corrupt) == 0 {
		subs, err := st.ReadSubmissions(ctx, store.SubmissionFilter{
			Sender: opts.Sender,
			Intent: opts.Intent,
			Status: status,
			MinSeq: opts.SinceSeq,
		})
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read submissions", err)
		}
		result.Submissions = subs
	}

	text := func(w io.Writer) {
		if len(result.Submissions) == 0 {
			fmt.Fprintln(w, "No submissions found.")
		}
		for _, sub := range result.Submissions {
			fmt.Fprintf(w, "%6d  %s  %-9s  %-28s %-20s weight=%d\n",
				sub.Seq, sub.ID, sub.Status, sub.Transaction.Sender, sub.Transaction.Intent, sub.Weight)
		}
		s := result.Stats
		fmt.Fprintf(w, "\nLedger: %d total, %d published, %d dropped\n", s.Total, s.Published, s.Dropped)
	}

	if len(report.Corrupt) > 0 {
		msg := fmt.Sprintf("%d record(s) fail digest verification", len(report.Corrupt))
		if err := formatter.Denied(result, ErrCodeCorrupt, msg, nil); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Render(result, text)
}
