package testutil

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// EncodeModifiers packs values as consecutive 4-byte little-endian
// IEEE-754 records.
func EncodeModifiers(values ...float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

// WriteModifierFile writes values to a temporary byte store and returns its path.
// The file is removed when the test ends.
func WriteModifierFile(t testing.TB, values ...float32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "potentials.bin")
	if err := os.WriteFile(path, EncodeModifiers(values...), 0o644); err != nil {
		t.Fatalf("write modifier file: %v", err)
	}
	return path
}
