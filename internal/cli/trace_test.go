package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_MissingDatabase(t *testing.T) {
	_, err := executeCommand(t, "trace", "--db", "/nonexistent/accord.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestTrace_RequiresDB(t *testing.T) {
	_, err := executeCommand(t, "trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestTrace_InvalidStatus(t *testing.T) {
	_, err := executeCommand(t, "trace", "--db", dbPath(t), "--status", "pending")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTrace_FilterBySender(t *testing.T) {
	db := dbPath(t)
	for _, sender := range []string{"did:t3:a", "did:t3:b", "did:t3:a"} {
		_, err := executeCommand(t, "submit", "--db", db, "--sender", sender, "--intent", "ReadLedger")
		require.NoError(t, err)
	}

	out, err := executeCommand(t, "trace", "--format", "json", "--db", db, "--sender", "did:t3:a")
	require.NoError(t, err)
	trace, _ := decodeResponse[TraceResult](t, out)
	require.Len(t, trace.Submissions, 2)
	assert.Equal(t, int64(1), trace.Submissions[0].Seq)
	assert.Equal(t, int64(3), trace.Submissions[1].Seq)
	assert.Equal(t, 3, trace.Stats.Total)
}

func TestTrace_SinceSeqAndIntent(t *testing.T) {
	db := dbPath(t)
	for i := 0; i < 3; i++ {
		_, err := executeCommand(t, "submit", "--db", db, "--sender", "did:t3:a", "--intent", "ReadLedger")
		require.NoError(t, err)
	}

	out, err := executeCommand(t, "trace", "--format", "json", "--db", db, "--since-seq", "2", "--intent", "ReadLedger")
	require.NoError(t, err)
	trace, _ := decodeResponse[TraceResult](t, out)
	require.Len(t, trace.Submissions, 2)
	assert.Equal(t, int64(2), trace.Submissions[0].Seq)

	out, err = executeCommand(t, "trace", "--format", "json", "--db", db, "--intent", "WriteLedger")
	require.NoError(t, err)
	trace, _ = decodeResponse[TraceResult](t, out)
	assert.Empty(t, trace.Submissions)
	assert.Equal(t, 3, trace.Stats.Total)
}

func TestTrace_NegativeSinceSeq(t *testing.T) {
	_, err := executeCommand(t, "trace", "--db", dbPath(t), "--since-seq", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTrace_EmptyLedger(t *testing.T) {
	db := dbPath(t)
	_, err := executeCommand(t, "identity", "list", "--db", db)
	require.NoError(t, err)

	out, err := executeCommand(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No submissions found.")
}
