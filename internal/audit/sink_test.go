package audit

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/accord/internal/ir"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogSink_Decisions(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(newBufferLogger(&buf))

	sink.RecordDecision(context.Background(), DecisionEvent{
		Identifier: "did:t0:protocol-overseer",
		Intent:     "GOLD_BAR_VOTE_II",
		Tier:       ir.TierOverride,
		Granted:    true,
	})
	sink.RecordDecision(context.Background(), DecisionEvent{
		Identifier: "did:t1:rozel-rosel-admin",
		Intent:     "GOLD_BAR_VOTE_II",
		Tier:       ir.TierAdmin,
		Code:       "INTENT_FORBIDDEN",
		Reason:     "reserved intent",
	})

	out := buf.String()
	assert.Contains(t, out, "level=INFO msg=\"access granted\"")
	assert.Contains(t, out, "tier=OVERRIDE")
	assert.Contains(t, out, "level=WARN msg=\"access denied\"")
	assert.Contains(t, out, "code=INTENT_FORBIDDEN")
}

func TestLogSink_ModifierLevels(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(newBufferLogger(&buf))

	sink.RecordModifier(context.Background(), ModifierEvent{
		Level:      LevelWarn,
		Index:      3,
		RawBits:    math.Float32bits(-1),
		HasRaw:     true,
		Multiplier: 10_000_000,
		Message:    "invalid modifier value",
	})
	sink.RecordModifier(context.Background(), ModifierEvent{
		Level:   LevelError,
		Index:   9,
		Message: "modifier read failed",
	})

	out := buf.String()
	assert.Contains(t, out, "level=WARN msg=\"invalid modifier value\" index=3 multiplier=10000000 raw=-1")
	assert.Contains(t, out, "level=ERROR msg=\"modifier read failed\" index=9")
}

type countingSink struct {
	decisions, modifiers int
}

func (c *countingSink) RecordDecision(context.Context, DecisionEvent) { c.decisions++ }
func (c *countingSink) RecordModifier(context.Context, ModifierEvent) { c.modifiers++ }

func TestMulti_FansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := Multi{a, nil, b, Discard}

	m.RecordDecision(context.Background(), DecisionEvent{})
	m.RecordModifier(context.Background(), ModifierEvent{})
	m.RecordModifier(context.Background(), ModifierEvent{})

	assert.Equal(t, 1, a.decisions)
	assert.Equal(t, 1, b.decisions)
	assert.Equal(t, 2, a.modifiers)
	assert.Equal(t, 2, b.modifiers)
}
