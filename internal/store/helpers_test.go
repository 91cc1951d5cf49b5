package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/accord/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSubmission builds a consistent submission with minimal fields.
func createTestSubmission(t *testing.T, id string, seq int64, sender string) ir.Submission {
	t.Helper()
	tx := ir.Transaction{
		Sender:          sender,
		SignalMagnitude: 900,
		Intent:          "ReadLedger",
		Timestamp:       1700000000,
	}
	return ir.Submission{
		ID:               id,
		Seq:              seq,
		TxDigest:         ir.MustTransactionDigest(tx),
		Transaction:      tx,
		Modifier:         2,
		Weight:           1 << 63,
		Status:           ir.StatusPublished,
		VerificationFlag: ir.VerificationFlag,
	}
}
