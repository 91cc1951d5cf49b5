package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/accord/internal/ir"
	"github.com/roach88/accord/internal/weight"
)

// WeightOptions holds flags for the weight command.
type WeightOptions struct {
	*RootOptions
	tx txFlags
}

// WeightResult is the output of the weight command.
type WeightResult struct {
	Sender    string           `json:"sender"`
	Intent    string           `json:"intent"`
	Breakdown weight.Breakdown `json:"breakdown"`
}

// NewWeightCommand creates the weight command.
func NewWeightCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WeightOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Show the weight breakdown of a transaction",
		Long: `Compute the weight of a transaction term by term, without
authorizing or recording it.

The modifier is read from the external store with --modifier-index, or
given directly with --modifier; without either it is 0.

Examples:
  accord weight --sender did:t0:protocol-overseer --intent OVERRIDE --magnitude 1024
  accord weight --sender did:t3:auditor-7 --intent MonitorFeed --modifier-index 3 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWeight(opts, cmd)
		},
	}

	opts.tx.register(cmd, false)

	return cmd
}

func runWeight(opts *WeightOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	req := opts.tx.request(cmd)
	if req.Transaction.SignalMagnitude > ir.MaxSignalMagnitude {
		msg := fmt.Sprintf("--magnitude %d exceeds %d", req.Transaction.SignalMagnitude, ir.MaxSignalMagnitude)
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgs, msg, nil)
	}

	cfg := opts.cfg()
	rt, err := openRuntime(cmd.Context(), cfg, "")
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to initialize", err)
	}
	defer rt.Close()

	var mod uint64
	switch {
	case req.ModifierIndex != nil:
		mod = rt.engine.Modifier(cmd.Context(), *req.ModifierIndex)
	case req.Modifier != nil:
		mod = *req.Modifier
	}

	result := WeightResult{
		Sender:    req.Transaction.Sender,
		Intent:    req.Transaction.Intent,
		Breakdown: rt.weigher.Breakdown(req.Transaction, mod),
	}
	return formatter.Render(result, func(w io.Writer) {
		b := result.Breakdown
		fmt.Fprintf(w, "stable hash:  %d\n", b.StableHash)
		fmt.Fprintf(w, "integrity:    %d\n", b.Integrity)
		fmt.Fprintf(w, "amplified:    %d\n", b.Amplified)
		fmt.Fprintf(w, "intent bonus: %d\n", b.IntentBonus)
		fmt.Fprintf(w, "modifier:     %d\n", b.Modifier)
		fmt.Fprintf(w, "total:        %d\n", b.Total)
	})
}
