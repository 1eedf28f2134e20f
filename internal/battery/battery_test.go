package battery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentCurve(t *testing.T) {
	tests := []struct {
		mv   int
		want uint8
	}{
		{4300, 100},
		{4200, 100},
		{4199, 99},
		{4150, 95},
		{4100, 90},
		{4099, 89},
		{3950, 70},
		{3800, 50},
		{3799, 49},
		{3700, 35},
		{3600, 20},
		{3599, 19},
		{3450, 10},
		{3300, 0},
		{3299, 0},
		{3000, 0},
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.mv), "mv=%d", tt.mv)
	}
}

func TestPercentMonotonic(t *testing.T) {
	prev := Percent(3200)
	for mv := 3201; mv <= 4300; mv++ {
		cur := Percent(mv)
		assert.GreaterOrEqual(t, cur, prev, "mv=%d", mv)
		prev = cur
	}
}

func TestRawToMillivolts(t *testing.T) {
	// 12-bit sample, 3.6V full scale, 2:1 divider.
	assert.Equal(t, 0, RawToMillivolts(0))
	assert.Equal(t, 7198, RawToMillivolts(4095))
	assert.Equal(t, 3600, RawToMillivolts(2048))
	assert.Equal(t, 0, RawToMillivolts(-5))

	// A healthy cell around 3.7V sits near mid-scale.
	assert.Equal(t, 3700, RawToMillivolts(2105))
}
