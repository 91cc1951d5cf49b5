package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidPolicy(t *testing.T) {
	out, err := executeCommand(t, "validate", "../policy/testdata/policy.cue", "--format", "json")
	require.NoError(t, err)

	result, resp := decodeResponse[ValidationResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, 4, result.Identities)
	require.Len(t, result.Tiers, 5)
	assert.Equal(t, "allow_all", result.Tiers[0].Mode)
	assert.Equal(t, "deny_reserved", result.Tiers[1].Mode)
	assert.Equal(t, []string{"GOLD_BAR_VOTE_II", "OVERRIDE"}, result.Tiers[1].Intents)
}

func TestValidate_TextOutput(t *testing.T) {
	out, err := executeCommand(t, "validate", "../policy/testdata/policy.cue")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "4 identities")
}

func TestValidate_InvalidPolicy(t *testing.T) {
	path := writeFile(t, "bad.cue", `tiers: {
	OVERRIDE: prefixes: ["Read"]
}
`)

	out, err := executeCommand(t, "validate", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	result, resp := decodeResponse[ValidationResult](t, out)
	assert.Equal(t, ErrCodePolicy, resp.Error.Code)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "tiers.OVERRIDE", result.Errors[0].Field)
	assert.Positive(t, result.Errors[0].Line)
}

func TestValidate_SyntaxError(t *testing.T) {
	path := writeFile(t, "broken.cue", "tiers: {\n")

	out, err := executeCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗")
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "validate", "/nonexistent/policy.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
