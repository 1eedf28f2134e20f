package battery

// Gauge reads the battery voltage in millivolts. Implementations must
// return within a bounded time.
type Gauge interface {
	ReadMillivolts() (int, error)
}

// The board routes VBAT through a 100K/100K divider into the ADC, which
// runs a 3.6V full scale at 12-bit resolution.
const (
	adcFullScaleMV = 3600
	dividerRatio   = 2
	adcResolution  = 12
)

// RawToMillivolts converts a raw ADC sample to the actual battery voltage.
// Negative samples from ADC offset error read as zero.
func RawToMillivolts(raw int) int {
	if raw < 0 {
		raw = 0
	}
	return raw * adcFullScaleMV * dividerRatio / (1 << adcResolution)
}

// Percent maps a single-cell LiPo voltage to a 0-100 state of charge using
// a piecewise-linear discharge curve. Integer math throughout; each band is
// inclusive on its lower bound. The curve is part of the device's external
// contract, centrals interpret the battery attribute against it.
func Percent(mv int) uint8 {
	switch {
	case mv >= 4200:
		return 100
	case mv >= 4100:
		return uint8(90 + (mv-4100)*10/100)
	case mv >= 3800:
		return uint8(50 + (mv-3800)*40/300)
	case mv >= 3600:
		return uint8(20 + (mv-3600)*30/200)
	case mv >= 3300:
		return uint8((mv - 3300) * 20 / 300)
	default:
		return 0
	}
}
