package gesture

import "sync/atomic"

// Frame is one snapshot from the gesture source. A nil Hand means no hand.
// Unavailable is set once the source has failed for good.
type Frame struct {
	Hand        *Hand
	Unavailable string
}

// Slot carries the latest frame from the tracker goroutine to the render
// loop. Publish swaps the whole value, so Load never sees a partial frame.
type Slot struct {
	cur    atomic.Pointer[Frame]
	failed atomic.Pointer[string]
}

func NewSlot() *Slot { return &Slot{} }

// Publish replaces the current frame. The frame's hand must not be mutated
// afterwards.
func (s *Slot) Publish(f Frame) {
	if f.Unavailable != "" {
		s.Fail(f.Unavailable)
		return
	}
	s.cur.Store(&f)
}

// Fail marks the source unavailable. Later publishes are ignored.
func (s *Slot) Fail(reason string) {
	if reason == "" {
		reason = "unavailable"
	}
	s.failed.CompareAndSwap(nil, &reason)
}

// Load returns the latest frame; the zero Frame until something is published.
func (s *Slot) Load() Frame {
	if r := s.failed.Load(); r != nil {
		return Frame{Unavailable: *r}
	}
	if f := s.cur.Load(); f != nil {
		return *f
	}
	return Frame{}
}
