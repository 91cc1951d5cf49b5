package weight

import "github.com/roach88/accord/internal/ir"

// Amplify scales magnitude by factor, replicates it into lanes, and
// reduces the lanes by horizontal pairwise addition. For identical lanes
// the result equals magnitude*factor*lanes.
//
// Magnitudes above ir.MaxSignalMagnitude are clamped. lanes must be a
// power of two (validated by Params).
func Amplify(magnitude uint16, factor uint64, lanes int) uint64 {
	if magnitude > ir.MaxSignalMagnitude {
		magnitude = ir.MaxSignalMagnitude
	}
	scaled := uint64(magnitude) * factor

	v := make([]uint64, lanes)
	for i := range v {
		v[i] = scaled
	}
	for width := lanes; width > 1; width /= 2 {
		for i := 0; i < width/2; i++ {
			v[i] = v[2*i] + v[2*i+1]
		}
	}
	return v[0]
}
