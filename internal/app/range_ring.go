package app

// RangeRing is a circular buffer for recent range readings, feeding the
// trend line in the range panel.
type RangeRing struct {
	buf   []uint16
	pos   int
	count int
}

// NewRangeRing creates a new circular buffer with the given capacity.
func NewRangeRing(capacity int) *RangeRing {
	return &RangeRing{
		buf: make([]uint16, capacity),
	}
}

// Push adds a value to the ring buffer.
func (r *RangeRing) Push(val uint16) {
	r.buf[r.pos] = val
	r.pos = (r.pos + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Values returns all stored values in chronological order.
func (r *RangeRing) Values() []uint16 {
	if r.count == 0 {
		return nil
	}
	result := make([]uint16, r.count)
	if r.count < len(r.buf) {
		copy(result, r.buf[:r.count])
	} else {
		start := r.pos
		n := copy(result, r.buf[start:])
		copy(result[n:], r.buf[:start])
	}
	return result
}

// Len returns the number of stored values.
func (r *RangeRing) Len() int {
	return r.count
}
