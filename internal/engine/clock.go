package engine

import "sync/atomic"

// Sequencer hands out ledger sequence numbers. Implemented by Clock and by
// testutil.DeterministicClock.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Clock is the monotonic logical clock that orders the ledger. Submissions
// are stamped with Next(); wall time is never used for ordering, so two
// submissions with the same advisory timestamp still get distinct seqs.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose first Next() returns start+1.
// Used to resume after the last seq already in the ledger.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number. Each call returns a unique,
// increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
