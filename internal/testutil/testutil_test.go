package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/accord/internal/audit"
)

func TestEncodeModifiers_LittleEndian(t *testing.T) {
	// 1.0 = 0x3F800000, stored low byte first.
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F}, EncodeModifiers(1.0))
	assert.Len(t, EncodeModifiers(1, 2, 3), 12)
	assert.Empty(t, EncodeModifiers())
}

func TestWriteModifierFile(t *testing.T) {
	path := WriteModifierFile(t, 0.01, -1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, EncodeModifiers(0.01, -1), data)
}

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("")
	assert.Equal(t, "sub-0001", ids.Generate())
	assert.Equal(t, "sub-0002", ids.Generate())

	custom := NewSequentialIDs("tx")
	assert.Equal(t, "tx-0001", custom.Generate())
}

func TestRecordingSink_ReturnsCopies(t *testing.T) {
	sink := NewRecordingSink()
	sink.RecordDecision(context.Background(), audit.DecisionEvent{Identifier: "a"})
	sink.RecordModifier(context.Background(), audit.ModifierEvent{Index: 1})

	decisions := sink.Decisions()
	require.Len(t, decisions, 1)
	decisions[0].Identifier = "mutated"

	assert.Equal(t, "a", sink.Decisions()[0].Identifier)
	assert.Len(t, sink.Modifiers(), 1)
}
