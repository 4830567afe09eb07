// Package sequence provides monotonic counters for order ids and
// logical timestamps. The engine consumes two independent sequencers:
// one assigning ids, one assigning time-priority sequence numbers.
package sequence

import "sync/atomic"

// Sequencer generates strictly monotonic values. It is deterministic:
// replaying the same command stream yields the same assignments.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer whose first Next returns start+1.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next value.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued value.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset rewinds or fast-forwards the sequencer. Intended only for
// seeding from a replayed command stream.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}
