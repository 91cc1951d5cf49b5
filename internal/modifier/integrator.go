package modifier

import (
	"context"
	"errors"
	"math"

	"github.com/roach88/accord/internal/audit"
)

var errNoSource = errors.New("no modifier store configured")

// Integrator fetches and converts modifiers. It never fails: invalid values
// degrade to the floor, failed reads to zero.
//
// Thread-safety: immutable after construction; safe for concurrent use when
// the Source returns independent handles (FileSource and MemorySource do).
type Integrator struct {
	source Source
	params Params
	sink   audit.Sink
}

// Option configures an Integrator.
type Option func(*Integrator)

// WithSink sets the sink that receives degrade events.
func WithSink(s audit.Sink) Option {
	return func(i *Integrator) {
		if s != nil {
			i.sink = s
		}
	}
}

// NewIntegrator validates params and returns an integrator. A nil source
// makes every Integrate call return 0.
func NewIntegrator(source Source, params Params, opts ...Option) (*Integrator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	i := &Integrator{source: source, params: params, sink: audit.Discard}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Params returns the conversion constants.
func (i *Integrator) Params() Params {
	return i.params
}

// Fetch reads the raw record at index.
func (i *Integrator) Fetch(ctx context.Context, index int64) (float32, error) {
	if i.source == nil {
		return 0, &IOError{Stage: StageOpen, Index: index, Err: errNoSource}
	}
	return FetchRaw(ctx, i.source, index)
}

// ToMultiplier converts value, reporting a warning when it degrades to the floor.
func (i *Integrator) ToMultiplier(ctx context.Context, index int64, value float32) uint64 {
	m, ok := Multiplier(value, i.params)
	if !ok {
		i.sink.RecordModifier(ctx, audit.ModifierEvent{
			Level:      audit.LevelWarn,
			Index:      index,
			RawBits:    math.Float32bits(value),
			HasRaw:     true,
			Multiplier: m,
			Message:    "invalid modifier value, using floor",
		})
	}
	return m
}

// Integrate fetches the record at index and converts it. A failed read
// returns 0 (neutral) and reports an error event.
func (i *Integrator) Integrate(ctx context.Context, index int64) uint64 {
	value, err := i.Fetch(ctx, index)
	if err != nil {
		i.sink.RecordModifier(ctx, audit.ModifierEvent{
			Level:   audit.LevelError,
			Index:   index,
			Message: "modifier read failed, using neutral modifier: " + err.Error(),
		})
		return 0
	}
	return i.ToMultiplier(ctx, index, value)
}
