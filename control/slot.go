package control

import (
	"errors"
	"sync/atomic"
)

// ErrCallInFlight is returned when a second exclusive call is attempted
// while one is still running.
var ErrCallInFlight = errors.New("a relay call is already in flight")

// Slot makes the "at most one in-flight transcription" contract explicit.
// The relay itself allows concurrent calls; callers that must serialize
// (the UI serializes recordings) guard their calls with a Slot instead of
// relying on an informal convention.
type Slot struct {
	busy atomic.Bool
}

func (s *Slot) Acquire() error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrCallInFlight
	}
	return nil
}

func (s *Slot) Release() {
	s.busy.Store(false)
}

// InFlight reports whether the slot is currently held.
func (s *Slot) InFlight() bool {
	return s.busy.Load()
}
