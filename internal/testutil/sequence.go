package testutil

import "sync"

// Sequence hands out monotonically increasing step numbers, starting at 1.
//
// The scenario harness stamps every trace event with Next() so golden traces
// are stable regardless of wall time.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Sequence struct {
	mu   sync.Mutex
	last int64
}

// NewSequence creates a sequence whose first Next() returns 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next increments and returns the next step number.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// Current returns the last value handed out, or 0 before the first Next().
func (s *Sequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Reset rewinds the sequence so the next call to Next() returns 1 again.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = 0
}
