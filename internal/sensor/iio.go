package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const iioRoot = "/sys/bus/iio/devices"

// IIO reads a VL53L0X through the Linux industrial I/O subsystem. The
// st_vl53l0x driver exposes one-shot measurements as in_distance_raw in
// millimeters; each read triggers a fresh measurement.
type IIO struct {
	path string
}

// NewIIO opens the distance channel of the given IIO device (e.g.
// "iio:device0"). A missing channel means the sensor driver did not bind,
// which is fatal for the rangefinder subsystem.
func NewIIO(device string) (*IIO, error) {
	p := filepath.Join(iioRoot, device, "in_distance_raw")
	if _, err := os.Stat(p); err != nil {
		return nil, fmt.Errorf("vl53l0x not ready: %w", err)
	}
	return &IIO{path: p}, nil
}

// ReadDistanceMM triggers and returns one measurement.
func (d *IIO) ReadDistanceMM() (uint16, error) {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		return 0, fmt.Errorf("sensor fetch failed: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("bad sensor reading %q: %w", strings.TrimSpace(string(raw)), err)
	}
	// The driver reports negative values when the return signal is too weak
	// to range on, i.e. nothing in front of the sensor.
	if v < 0 {
		return 0, ErrNoTarget
	}
	if v > 0xFFFF {
		v = 0xFFFF
	}
	return uint16(v), nil
}
