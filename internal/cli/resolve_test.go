package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_BuiltInIdentities(t *testing.T) {
	tests := []struct {
		identifier string
		tier       string
		hash       string
	}{
		{"did:t0:protocol-overseer", "OVERRIDE", "0xDEADBEEFC0DEC0DE"},
		{"did:t1:rozel-rosel-admin", "ADMIN", "0xAFFECAFEBABEBABE"},
		{"did:t3:anyone", "AUDIT_ONLY", "0x00000000FACEBEEF"},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			out, err := executeCommand(t, "resolve", tt.identifier, "--format", "json")
			require.NoError(t, err)

			result, resp := decodeResponse[ResolveResult](t, out)
			assert.Equal(t, "ok", resp.Status)
			assert.True(t, result.Found)
			assert.Equal(t, tt.tier, result.Tier)
			assert.Equal(t, tt.hash, result.IntegrityHash)
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	out, err := executeCommand(t, "resolve", "did:t9:stranger")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_NOT_FOUND]")
}

func TestResolve_DatabaseIdentity(t *testing.T) {
	db := dbPath(t)
	_, err := executeCommand(t, "identity", "add", "--db", db,
		"--identifier", "did:t2:ops-writer", "--tier", "READ_WRITE", "--hash", "4096")
	require.NoError(t, err)

	out, err := executeCommand(t, "resolve", "did:t2:ops-writer", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "tier:           READ_WRITE")
	assert.Contains(t, out, "0x0000000000001000")
}
