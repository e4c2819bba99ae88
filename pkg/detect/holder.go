package detect

import (
	"sync/atomic"
)

// Set is one immutable snapshot of the held detection boxes.
// Seq records the order updates reached the holder; it increases by one
// per update regardless of which input stream produced it.
type Set struct {
	Seq   uint64
	Boxes []Box
}

// Empty reports whether the snapshot holds no boxes.
func (s *Set) Empty() bool {
	return s == nil || len(s.Boxes) == 0
}

// Holder keeps the most recent detection set. Two independent streams
// write to it: the detector's box sets and the detector's object-count
// observations (a count of zero clears the set). The streams race by
// design; precedence is strict arrival order at the holder, last writer
// wins. Readers get an immutable snapshot.
type Holder struct {
	seq atomic.Uint64
	cur atomic.Pointer[Set]
}

// NewHolder creates a holder with no detections.
func NewHolder() *Holder {
	return &Holder{}
}

// SetBoxes replaces the held set unconditionally. The slice is copied
// so the caller may reuse it.
func (h *Holder) SetBoxes(boxes []Box) {
	cp := make([]Box, len(boxes))
	copy(cp, boxes)
	h.cur.Store(&Set{Seq: h.seq.Add(1), Boxes: cp})
}

// ObjectCount records a detector object-count observation.
// A count of zero discards the held set; any other value is ignored
// (the box stream itself carries the boxes).
func (h *Holder) ObjectCount(n int) {
	if n != 0 {
		return
	}
	h.cur.Store(&Set{Seq: h.seq.Add(1)})
}

// Current returns the latest snapshot. It is nil until the first
// update arrives; after a clear it is a snapshot with no boxes.
func (h *Holder) Current() *Set {
	return h.cur.Load()
}
