package depth

import "sync/atomic"

// Holder keeps the most recent depth Matrix behind an atomic pointer.
// A writer replaces the whole frame; readers observe either the old or
// the new frame in full, never a torn mix.
type Holder struct {
	cur atomic.Pointer[Matrix]
}

// NewHolder creates an empty holder. Current returns nil until the
// first depth frame arrives.
func NewHolder() *Holder {
	return &Holder{}
}

// Set replaces the held matrix.
func (h *Holder) Set(m *Matrix) {
	h.cur.Store(m)
}

// Current returns the most recent matrix, or nil if none has arrived.
func (h *Holder) Current() *Matrix {
	return h.cur.Load()
}
