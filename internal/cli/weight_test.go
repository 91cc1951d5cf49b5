package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/accord/internal/testutil"
)

func TestWeight_Breakdown(t *testing.T) {
	out, err := executeCommand(t, "weight", "--format", "json",
		"--sender", "did:t0:protocol-overseer", "--intent", "GOLD_BAR_VOTE_II",
		"--magnitude", "900", "--timestamp", "1700000000", "--modifier", "2")
	require.NoError(t, err)

	result, _ := decodeResponse[WeightResult](t, out)
	b := result.Breakdown
	assert.Equal(t, uint64(3659813930229597984), b.StableHash)
	assert.Equal(t, b.StableHash/2, b.Integrity)
	assert.Equal(t, uint64(900*128), b.Amplified)
	assert.Zero(t, b.IntentBonus)
	assert.Equal(t, uint64(2), b.Modifier)
	assert.Equal(t, uint64(1829906965114914194), b.Total)
}

func TestWeight_OverrideBonus(t *testing.T) {
	out, err := executeCommand(t, "weight", "--format", "json",
		"--sender", "did:t0:protocol-overseer", "--intent", "OVERRIDE",
		"--magnitude", "1024", "--timestamp", "1700000000")
	require.NoError(t, err)

	result, _ := decodeResponse[WeightResult](t, out)
	assert.Equal(t, uint64(9_000_000_000), result.Breakdown.IntentBonus)
	assert.Equal(t, uint64(3153740474696629380), result.Breakdown.Total)
}

func TestWeight_ModifierIndexFromConfiguredStore(t *testing.T) {
	store := testutil.WriteModifierFile(t, 1.0)
	configPath := writeFile(t, "accord.yaml", "modifier:\n  store: "+store+"\n")

	out, err := executeCommand(t, "weight", "--format", "json", "--config", configPath,
		"--sender", "did:t3:auditor-7", "--intent", "MonitorFeed",
		"--magnitude", "10", "--timestamp", "1700000001", "--modifier-index", "0")
	require.NoError(t, err)

	result, _ := decodeResponse[WeightResult](t, out)
	assert.Equal(t, uint64(200), result.Breakdown.Modifier)
	assert.Equal(t, uint64(1254648928373293315), result.Breakdown.Total)
}

func TestWeight_MissingStoreIsNeutral(t *testing.T) {
	out, err := executeCommand(t, "weight", "--format", "json",
		"--sender", "did:t3:auditor-7", "--intent", "MonitorFeed",
		"--magnitude", "10", "--timestamp", "1700000001", "--modifier-index", "4")
	require.NoError(t, err)

	result, _ := decodeResponse[WeightResult](t, out)
	assert.Zero(t, result.Breakdown.Modifier)
	assert.Equal(t, uint64(1254648928373293115), result.Breakdown.Total)
}

func TestWeight_TextOutput(t *testing.T) {
	out, err := executeCommand(t, "weight", "--sender", "x", "--magnitude", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "amplified:    128\n")
	assert.Contains(t, out, "total:")
}

func TestWeight_Errors(t *testing.T) {
	_, err := executeCommand(t, "weight", "--sender", "x", "--magnitude", "1025")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "exceeds 1024")

	_, err = executeCommand(t, "weight", "--sender", "x", "--modifier", "1", "--modifier-index", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}
