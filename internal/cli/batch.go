package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/accord/internal/engine"
	"github.com/roach88/accord/internal/ir"
)

// ErrCodeBatchRejected marks a batch in which some transactions were rejected.
const ErrCodeBatchRejected = "E_BATCH_REJECTED"

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Database    string
	Concurrency int
}

// BatchFile is the YAML input of the batch command.
type BatchFile struct {
	Transactions []BatchTransaction `yaml:"transactions"`
}

// BatchTransaction is one transaction in a batch file.
type BatchTransaction struct {
	Sender        string  `yaml:"sender"`
	Intent        string  `yaml:"intent"`
	Magnitude     uint16  `yaml:"magnitude"`
	Timestamp     uint64  `yaml:"timestamp"`
	ModifierIndex *int64  `yaml:"modifier_index,omitempty"`
	Modifier      *uint64 `yaml:"modifier,omitempty"`
	Message       string  `yaml:"message,omitempty"`
}

// BatchEntry is the outcome of one transaction, in input order.
type BatchEntry struct {
	Index      int            `json:"index"`
	Submission *ir.Submission `json:"submission,omitempty"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
}

// BatchReport is the batch command's output.
type BatchReport struct {
	Results  []BatchEntry `json:"results"`
	Accepted int          `json:"accepted"`
	Rejected int          `json:"rejected"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Submit a file of transactions concurrently",
		Long: `Submit every transaction in a YAML file through the full pipeline,
running up to --concurrency submissions at a time (default: the config's
concurrency). A rejected transaction does not stop the batch. Results are
reported in file order; seq numbers follow completion order.

File format:
  transactions:
    - sender: did:t0:protocol-overseer
      intent: GOLD_BAR_VOTE_II
      magnitude: 900
      timestamp: 1700000000
      modifier_index: 0        # or modifier: <uint64>
      message: optional text

Exit codes:
  0 - Every transaction recorded
  1 - One or more transactions rejected
  2 - Invalid file or command error

Examples:
  accord batch --db ./accord.db votes.yaml
  accord batch --db ./accord.db --concurrency 8 --format json votes.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "maximum in-flight submissions (overrides config)")

	return cmd
}

// LoadBatchFile reads and validates a batch file.
func LoadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var file BatchFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	if len(file.Transactions) == 0 {
		return nil, fmt.Errorf("batch file %s: no transactions", path)
	}
	for i, tx := range file.Transactions {
		if tx.ModifierIndex != nil && tx.Modifier != nil {
			return nil, fmt.Errorf("transactions[%d]: modifier and modifier_index are mutually exclusive", i)
		}
	}
	return &file, nil
}

// Requests converts the file to engine requests.
func (f *BatchFile) Requests() []engine.SubmitRequest {
	reqs := make([]engine.SubmitRequest, len(f.Transactions))
	for i, tx := range f.Transactions {
		reqs[i] = engine.SubmitRequest{
			Transaction: ir.Transaction{
				Sender:          tx.Sender,
				SignalMagnitude: tx.Magnitude,
				Intent:          tx.Intent,
				Timestamp:       tx.Timestamp,
			},
			ModifierIndex: tx.ModifierIndex,
			Modifier:      tx.Modifier,
			Message:       tx.Message,
		}
	}
	return reqs
}

func runBatch(opts *BatchOptions, cmd *cobra.Command, path string) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	file, err := LoadBatchFile(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, "invalid batch file", err)
	}

	cfg := opts.cfg()
	if cmd.Flags().Changed("concurrency") {
		if opts.Concurrency < 1 {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs,
				fmt.Sprintf("invalid --concurrency %d: must be at least 1", opts.Concurrency), nil)
		}
		override := *cfg
		override.Concurrency = opts.Concurrency
		cfg = &override
	}

	rt, err := openRuntime(cmd.Context(), cfg, opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to initialize", err)
	}
	defer rt.Close()

	results, err := rt.engine.SubmitAll(cmd.Context(), file.Requests())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "batch interrupted", err)
	}

	report := BatchReport{Results: make([]BatchEntry, len(results))}
	for i, res := range results {
		entry := BatchEntry{Index: i}
		if res.Err != nil {
			entry.Code = rejectionCode(res.Err)
			entry.Message = res.Err.Error()
			report.Rejected++
		} else {
			sub := res.Submission
			entry.Submission = &sub
			report.Accepted++
		}
		report.Results[i] = entry
	}

	text := func(w io.Writer) {
		for _, entry := range report.Results {
			if entry.Submission == nil {
				fmt.Fprintf(w, "[%d] rejected (%s): %s\n", entry.Index, entry.Code, entry.Message)
				continue
			}
			sub := entry.Submission
			fmt.Fprintf(w, "[%d] %s  seq=%d  %s  weight=%d\n", entry.Index, sub.ID, sub.Seq, sub.Status, sub.Weight)
		}
		fmt.Fprintf(w, "\nBatch: %d accepted, %d rejected\n", report.Accepted, report.Rejected)
	}

	if report.Rejected > 0 {
		msg := fmt.Sprintf("%d of %d transaction(s) rejected", report.Rejected, len(results))
		if err := formatter.Denied(report, ErrCodeBatchRejected, msg, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Render(report, text)
}
