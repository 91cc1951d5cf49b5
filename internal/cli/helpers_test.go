package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeResponse decodes a JSON envelope whose data has type T.
func decodeResponse[T any](t *testing.T, out string) (T, CLIResponse) {
	t.Helper()
	var typed struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &typed), "output: %s", out)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return typed.Data, resp
}

// writeFile writes content to name in a new temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
