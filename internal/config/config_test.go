package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/accord/internal/engine"
	"github.com/roach88/accord/internal/modifier"
	"github.com/roach88/accord/internal/store"
	"github.com/roach88/accord/internal/weight"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, weight.DefaultParams(), cfg.WeightParams())
	assert.Equal(t, modifier.DefaultParams(), cfg.ModifierParams())
	assert.Equal(t, engine.DefaultMinPublishWeight, cfg.Ledger.MinPublishWeight)
	assert.Equal(t, uint64(1000), cfg.Ledger.MinPublishWeight)
	assert.Equal(t, engine.DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, store.MemoryPath, MemoryDatabase)
	assert.Empty(t, cfg.Database)
}

func TestLoad_OverlaysDefaultsAndResolvesPaths(t *testing.T) {
	cfg, err := Load("testdata/accord.yaml")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "accord.db"), cfg.Database)
	assert.Equal(t, filepath.Join("testdata", "policy.cue"), cfg.Policy)
	assert.Equal(t, "/var/lib/accord/potentials.bin", cfg.Modifier.Store, "absolute paths kept")
	assert.Equal(t, float32(0.01), cfg.Modifier.CohesionFactor)
	assert.Equal(t, modifier.DefaultFloor, cfg.Modifier.Floor, "unset keys keep defaults")
	assert.Equal(t, weight.DefaultParams(), cfg.WeightParams())
	assert.Equal(t, uint64(5000), cfg.Ledger.MinPublishWeight)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MemoryDatabaseNotResolved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accord.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: \":memory:\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, MemoryDatabase, cfg.Database)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]struct {
		yaml string
		want string
	}{
		"unknown key":          {"databse: x.db\n", "field databse not found"},
		"unknown nested key":   {"modifier:\n  path: x\n", "field path not found"},
		"zero cohesion factor": {"modifier:\n  cohesion_factor: 0\n", "cohesion factor"},
		"lanes not power of 2": {"weighting:\n  lanes: 6\n", "power of two"},
		"empty reserved":       {"weighting:\n  reserved_intent: \"\"\n", "reserved intent"},
		"zero concurrency":     {"concurrency: 0\n", "concurrency"},
		"bad level":            {"log:\n  level: loud\n", "log.level"},
		"bad format":           {"log:\n  format: xml\n", "log.format"},
		"malformed":            {"database: [\n", "failed to parse YAML"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Log = LogConfig{Level: "warn", Format: "json"}

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
