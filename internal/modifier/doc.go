// Package modifier integrates an externally computed priority adjustment.
//
// The external process writes a flat byte store of 4-byte little-endian
// IEEE-754 floats, one record per transaction index. FetchRaw reads one
// record; Multiplier turns it into an unsigned modifier for the weighting
// engine.
//
// Two degrade paths keep weighting total:
//   - a value that is present but invalid (NaN, infinite, negative) becomes
//     the Floor constant and a warning event
//   - a failed read (missing store, index past the end) becomes 0 and an
//     error event
package modifier
