package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/accord/internal/engine"
	"github.com/roach88/accord/internal/ir"
)

// txFlags are the transaction flags shared by weight and submit.
type txFlags struct {
	Sender        string
	Intent        string
	Magnitude     uint16
	Timestamp     uint64
	Modifier      uint64
	ModifierIndex int64
	Message       string
}

func (f *txFlags) register(cmd *cobra.Command, withMessage bool) {
	cmd.Flags().StringVar(&f.Sender, "sender", "", "sender identifier (required)")
	_ = cmd.MarkFlagRequired("sender")
	cmd.Flags().StringVar(&f.Intent, "intent", "", "intent token")
	cmd.Flags().Uint16Var(&f.Magnitude, "magnitude", 0, "signal magnitude (0-1024)")
	cmd.Flags().Uint64Var(&f.Timestamp, "timestamp", 0, "advisory timestamp, seconds since epoch")
	cmd.Flags().Uint64Var(&f.Modifier, "modifier", 0, "explicit modifier value")
	cmd.Flags().Int64Var(&f.ModifierIndex, "modifier-index", 0, "record index in the external modifier store")
	cmd.MarkFlagsMutuallyExclusive("modifier", "modifier-index")
	if withMessage {
		cmd.Flags().StringVar(&f.Message, "message", "", "free-text message recorded with the submission")
	}
}

func (f *txFlags) transaction() ir.Transaction {
	return ir.Transaction{
		Sender:          f.Sender,
		SignalMagnitude: f.Magnitude,
		Intent:          f.Intent,
		Timestamp:       f.Timestamp,
	}
}

// request builds a submit request, taking the modifier source from the
// flags that were actually set.
func (f *txFlags) request(cmd *cobra.Command) engine.SubmitRequest {
	req := engine.SubmitRequest{
		Transaction: f.transaction(),
		Message:     f.Message,
	}
	if cmd.Flags().Changed("modifier-index") {
		idx := f.ModifierIndex
		req.ModifierIndex = &idx
	}
	if cmd.Flags().Changed("modifier") {
		mod := f.Modifier
		req.Modifier = &mod
	}
	return req
}
