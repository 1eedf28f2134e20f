package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeRingEmpty(t *testing.T) {
	r := NewRangeRing(4)
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Values())
}

func TestRangeRingPartialFill(t *testing.T) {
	r := NewRangeRing(4)
	r.Push(10)
	r.Push(20)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []uint16{10, 20}, r.Values())
}

func TestRangeRingWrapAround(t *testing.T) {
	r := NewRangeRing(3)
	for _, v := range []uint16{1, 2, 3, 4, 5} {
		r.Push(v)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []uint16{3, 4, 5}, r.Values())
}
