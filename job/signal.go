package job

import "sync/atomic"

// Signal is a one-way cancellation flag. It starts unset and, once set,
// stays set.
type Signal struct {
	set atomic.Bool
}

// NewSignal returns an unset Signal.
func NewSignal() *Signal { return &Signal{} }

// Set raises the flag. It reports whether this call performed the transition.
func (s *Signal) Set() bool {
	return s.set.CompareAndSwap(false, true)
}

// IsSet reports whether the flag has been raised.
func (s *Signal) IsSet() bool {
	return s.set.Load()
}
