package weight

import (
	"fmt"

	"github.com/roach88/accord/internal/ir"
)

// Defaults.
const (
	DefaultReservedIntent      = "OVERRIDE"
	DefaultIntentBonus         = uint64(9_000_000_000)
	DefaultAmplificationFactor = uint64(16)
	DefaultLanes               = 8
	maxLanes                   = 64
)

// Params holds the weighting constants.
type Params struct {
	// ReservedIntent is the single intent that earns IntentBonus.
	ReservedIntent string
	// IntentBonus is added for ReservedIntent. It exceeds the largest
	// possible amplified term by several orders of magnitude.
	IntentBonus uint64
	// AmplificationFactor scales the signal magnitude.
	AmplificationFactor uint64
	// Lanes is the number of replicated lanes; a power of two.
	Lanes int
}

// DefaultParams returns the built-in weighting constants.
func DefaultParams() Params {
	return Params{
		ReservedIntent:      DefaultReservedIntent,
		IntentBonus:         DefaultIntentBonus,
		AmplificationFactor: DefaultAmplificationFactor,
		Lanes:               DefaultLanes,
	}
}

// Validate checks the parameters.
func (p Params) Validate() error {
	if p.ReservedIntent == "" {
		return fmt.Errorf("weight: reserved intent is required")
	}
	if p.AmplificationFactor == 0 {
		return fmt.Errorf("weight: amplification factor must be positive")
	}
	if p.Lanes < 1 || p.Lanes > maxLanes || p.Lanes&(p.Lanes-1) != 0 {
		return fmt.Errorf("weight: lanes must be a power of two between 1 and %d, got %d", maxLanes, p.Lanes)
	}
	return nil
}

// MaxAmplified is the largest amplified term these parameters can produce.
func (p Params) MaxAmplified() uint64 {
	return Amplify(ir.MaxSignalMagnitude, p.AmplificationFactor, p.Lanes)
}

// Breakdown shows each term of a weight. Total is the value ComputeWeight returns.
type Breakdown struct {
	StableHash  uint64 `json:"stable_hash"`
	Integrity   uint64 `json:"integrity"`
	Amplified   uint64 `json:"amplified"`
	IntentBonus uint64 `json:"intent_bonus"`
	Modifier    uint64 `json:"modifier"`
	Total       uint64 `json:"total"`
}

// Engine computes weights. It is immutable and safe for concurrent use.
type Engine struct {
	params Params
}

// NewEngine validates params and returns an engine.
func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params}, nil
}

// MustEngine is like NewEngine but panics on invalid params.
func MustEngine(params Params) *Engine {
	e, err := NewEngine(params)
	if err != nil {
		panic(err)
	}
	return e
}

// Params returns the engine's parameters.
func (e *Engine) Params() Params {
	return e.params
}

// ComputeWeight returns the final priority of tx. Additions wrap modulo 2^64.
func (e *Engine) ComputeWeight(tx ir.Transaction, modifier uint64) uint64 {
	return e.Breakdown(tx, modifier).Total
}

// Breakdown returns every term of the weight of tx.
func (e *Engine) Breakdown(tx ir.Transaction, modifier uint64) Breakdown {
	b := Breakdown{
		StableHash: StableHash(tx),
		Amplified:  Amplify(tx.SignalMagnitude, e.params.AmplificationFactor, e.params.Lanes),
		Modifier:   modifier,
	}
	b.Integrity = b.StableHash / 2
	if tx.Intent == e.params.ReservedIntent {
		b.IntentBonus = e.params.IntentBonus
	}
	b.Total = b.Integrity + b.Amplified + b.IntentBonus + b.Modifier
	return b
}
