package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/accord/internal/ir"
)

const mixedBatch = `transactions:
  - sender: did:t0:protocol-overseer
    intent: GOLD_BAR_VOTE_II
    magnitude: 900
    timestamp: 1700000000
    modifier: 2
  - sender: did:t1:rozel-rosel-admin
    intent: GOLD_BAR_VOTE_II
    magnitude: 900
  - sender: did:t3:auditor-7
    intent: MonitorFeed
    magnitude: 10
    message: feed check
`

func TestBatch_MixedOutcomes(t *testing.T) {
	db := dbPath(t)
	path := writeFile(t, "batch.yaml", mixedBatch)

	out, err := executeCommand(t, "batch", "--format", "json", "--db", db, "--concurrency", "3", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	report, resp := decodeResponse[BatchReport](t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeBatchRejected, resp.Error.Code)
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 1, report.Rejected)
	require.Len(t, report.Results, 3)

	for i, entry := range report.Results {
		assert.Equal(t, i, entry.Index)
	}
	require.NotNil(t, report.Results[0].Submission)
	assert.Equal(t, uint64(1829906965114914194), report.Results[0].Submission.Weight)
	assert.Nil(t, report.Results[1].Submission)
	assert.Equal(t, "INTENT_FORBIDDEN", report.Results[1].Code)
	require.NotNil(t, report.Results[2].Submission)
	assert.Equal(t, "feed check", report.Results[2].Submission.Message)

	out, err = executeCommand(t, "trace", "--format", "json", "--db", db)
	require.NoError(t, err)
	trace, _ := decodeResponse[TraceResult](t, out)
	require.Len(t, trace.Submissions, 2)
	assert.Equal(t, int64(1), trace.Submissions[0].Seq)
	assert.Equal(t, int64(2), trace.Submissions[1].Seq)
}

func TestBatch_SerialKeepsInputOrder(t *testing.T) {
	db := dbPath(t)
	path := writeFile(t, "batch.yaml", `transactions:
  - {sender: "did:t3:a", intent: ReadLedger}
  - {sender: "did:t3:b", intent: ReadLedger}
  - {sender: "did:t3:c", intent: MonitorFeed}
`)

	out, err := executeCommand(t, "batch", "--format", "json", "--db", db, "--concurrency", "1", path)
	require.NoError(t, err)

	report, resp := decodeResponse[BatchReport](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, report.Accepted)
	for i, entry := range report.Results {
		require.NotNil(t, entry.Submission)
		assert.Equal(t, int64(i+1), entry.Submission.Seq)
		assert.Equal(t, ir.StatusPublished, entry.Submission.Status)
	}
}

func TestBatch_UsesConfigConcurrency(t *testing.T) {
	configPath := writeFile(t, "accord.yaml", "concurrency: 2\n")
	path := writeFile(t, "batch.yaml", mixedBatch)

	out, err := executeCommand(t, "batch", "--config", configPath, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "[1] rejected (INTENT_FORBIDDEN)")
	assert.Contains(t, out, "Batch: 2 accepted, 1 rejected")
}

func TestBatch_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    []string
	}{
		{"unknown field", "transactions:\n  - sender: did:t3:a\n    colour: red\n", nil},
		{"empty", "transactions: []\n", nil},
		{"both modifiers", "transactions:\n  - {sender: \"did:t3:a\", modifier: 1, modifier_index: 0}\n", nil},
		{"zero concurrency", mixedBatch, []string{"--concurrency", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "batch.yaml", tt.content)
			args := append([]string{"batch"}, tt.args...)
			_, err := executeCommand(t, append(args, path)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestBatch_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "batch", "/nonexistent/batch.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
