package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	harnessScenarios = "../harness/testdata/scenarios"
	harnessGolden    = "../harness/testdata/golden"
)

func TestTestCommand_GoldenScenarios(t *testing.T) {
	out, err := executeCommand(t, "test", harnessScenarios, "--golden-dir", harnessGolden, "--format", "json")
	require.NoError(t, err, out)

	result, resp := decodeResponse[TestResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Passed)
	for _, s := range result.Scenarios {
		assert.Equal(t, "match", s.Golden, s.Name)
	}
}

func TestTestCommand_Filter(t *testing.T) {
	out, err := executeCommand(t, "test", harnessScenarios, "--golden-dir", harnessGolden, "--filter", "gold_*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ gold_bar_vote")
	assert.NotContains(t, out, "custom_policy")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommand_UpdateWritesGolden(t *testing.T) {
	goldenDir := t.TempDir()
	scenario := filepath.Join(harnessScenarios, "gold_bar_vote.yaml")

	out, err := executeCommand(t, "test", scenario, "--golden-dir", goldenDir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "(golden updated)")

	written, err := os.ReadFile(filepath.Join(goldenDir, "gold_bar_vote.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(harnessGolden, "gold_bar_vote.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))
}

func TestTestCommand_MissingGoldenUsesExpectations(t *testing.T) {
	scenario := filepath.Join(harnessScenarios, "custom_policy.yaml")
	out, err := executeCommand(t, "test", scenario, "--golden-dir", t.TempDir(), "--format", "json")
	require.NoError(t, err)

	result, _ := decodeResponse[TestResult](t, out)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "missing", result.Scenarios[0].Golden)
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	goldenDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "gold_bar_vote.golden"), []byte("{}"), 0644))

	out, err := executeCommand(t, "test", filepath.Join(harnessScenarios, "gold_bar_vote.yaml"), "--golden-dir", goldenDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_FailingExpectation(t *testing.T) {
	dir := t.TempDir()
	content := `
name: wrong
description: "expects an admin to cast the reserved vote"
steps:
  - sender: did:t1:rozel-rosel-admin
    intent: GOLD_BAR_VOTE_II
    expect:
      outcome: accepted
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(content), 0644))

	out, err := executeCommand(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	result, resp := decodeResponse[TestResult](t, out)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Scenarios[0].Errors[0], "steps[0]: outcome")
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: x\n"), 0644))

	out, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ bad.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommand_Paths(t *testing.T) {
	_, err := executeCommand(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")

	_, err = executeCommand(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := executeCommand(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
