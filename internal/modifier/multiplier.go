package modifier

import (
	"fmt"
	"math"
)

// Defaults.
const (
	DefaultCohesionFactor float32 = 0.005
	DefaultFloor          uint64  = 10_000_000

	// Ceiling is where oversized quotients saturate. Weight sums that
	// exceed 2^64 wrap in the weighting engine.
	Ceiling uint64 = math.MaxUint64
)

// Params holds the conversion constants.
type Params struct {
	CohesionFactor float32
	Floor          uint64
}

// DefaultParams returns the built-in conversion constants.
func DefaultParams() Params {
	return Params{
		CohesionFactor: DefaultCohesionFactor,
		Floor:          DefaultFloor,
	}
}

// Validate checks the parameters.
func (p Params) Validate() error {
	cf := float64(p.CohesionFactor)
	if math.IsNaN(cf) || math.IsInf(cf, 0) || cf <= 0 {
		return fmt.Errorf("modifier: cohesion factor must be a finite positive number, got %v", p.CohesionFactor)
	}
	return nil
}

// Multiplier converts a raw value to a modifier: floor(value/CohesionFactor),
// computed in float32 and saturated at Ceiling. NaN, infinite and negative
// values return (Floor, false).
func Multiplier(value float32, p Params) (uint64, bool) {
	v := float64(value)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return p.Floor, false
	}

	q := math.Floor(float64(value / p.CohesionFactor))
	if math.IsInf(q, 0) || q >= 0x1p64 {
		return Ceiling, true
	}
	return uint64(q), true
}
