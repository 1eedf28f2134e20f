package sensor

import "errors"

// Rangefinder takes a single distance measurement. Implementations must
// return within a bounded time; a failed read surfaces as an error and the
// caller skips that cycle.
type Rangefinder interface {
	ReadDistanceMM() (uint16, error)
}

// ErrNoTarget reports that nothing reflective sits inside the sensor's
// measuring window. Expected during normal operation.
var ErrNoTarget = errors.New("no target in range")
