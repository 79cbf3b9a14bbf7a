package spec

import "sync/atomic"

// Sequence is a monotonic counter tagging orders and cursors so that
// declarations made anywhere in a specification graph can be merged into
// one stable order. It is safe for concurrent use: nodes built on different
// goroutines from the same sequence never observe the same number.
type Sequence struct {
	seq atomic.Int64
}

func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next number. Calls are linearizable.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last number handed out without advancing.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}
