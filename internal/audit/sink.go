package audit

import (
	"context"
	"log/slog"
	"math"

	"github.com/roach88/accord/internal/ir"
)

// DecisionEvent describes one authorization outcome.
type DecisionEvent struct {
	Identifier string
	Intent     string
	Tier       ir.AccessTier // empty when the identifier did not resolve
	Granted    bool
	Code       string // empty when granted
	Reason     string
}

// Level is the severity of a modifier event.
type Level string

const (
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ModifierEvent describes a degraded external modifier read.
type ModifierEvent struct {
	Level      Level
	Index      int64
	RawBits    uint32 // IEEE-754 bits of the value read; zero when nothing was read
	HasRaw     bool
	Multiplier uint64
	Message    string
}

// Raw returns the value read from the store.
func (e ModifierEvent) Raw() float32 {
	return math.Float32frombits(e.RawBits)
}

// Sink receives structured events from the core.
type Sink interface {
	RecordDecision(ctx context.Context, ev DecisionEvent)
	RecordModifier(ctx context.Context, ev ModifierEvent)
}

// Discard drops all events.
var Discard Sink = discard{}

type discard struct{}

func (discard) RecordDecision(context.Context, DecisionEvent) {}
func (discard) RecordModifier(context.Context, ModifierEvent) {}

// LogSink writes events to a slog.Logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink writing to logger. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// RecordDecision logs grants at Info and denials at Warn.
func (s *LogSink) RecordDecision(ctx context.Context, ev DecisionEvent) {
	attrs := []any{
		"identifier", ev.Identifier,
		"intent", ev.Intent,
		"tier", string(ev.Tier),
	}
	if ev.Granted {
		s.logger.InfoContext(ctx, "access granted", attrs...)
		return
	}
	attrs = append(attrs, "code", ev.Code, "reason", ev.Reason)
	s.logger.WarnContext(ctx, "access denied", attrs...)
}

// RecordModifier logs modifier events at their own level.
func (s *LogSink) RecordModifier(ctx context.Context, ev ModifierEvent) {
	attrs := []any{
		"index", ev.Index,
		"multiplier", ev.Multiplier,
	}
	if ev.HasRaw {
		attrs = append(attrs, "raw", ev.Raw())
	}

	level := slog.LevelWarn
	if ev.Level == LevelError {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, ev.Message, attrs...)
}

// Multi fans events out to every sink in order.
type Multi []Sink

func (m Multi) RecordDecision(ctx context.Context, ev DecisionEvent) {
	for _, s := range m {
		if s != nil {
			s.RecordDecision(ctx, ev)
		}
	}
}

func (m Multi) RecordModifier(ctx context.Context, ev ModifierEvent) {
	for _, s := range m {
		if s != nil {
			s.RecordModifier(ctx, ev)
		}
	}
}
