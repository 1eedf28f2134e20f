package battery

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const iioRoot = "/sys/bus/iio/devices"

// ADC reads the VBAT divider through a Linux IIO ADC channel.
type ADC struct {
	path string
}

// NewADC opens the given voltage channel (e.g. device "iio:device1",
// channel 5 for AIN5). A missing channel is reported so the caller can
// keep running without battery telemetry.
func NewADC(device string, channel int) (*ADC, error) {
	p := filepath.Join(iioRoot, device, fmt.Sprintf("in_voltage%d_raw", channel))
	if _, err := os.Stat(p); err != nil {
		return nil, fmt.Errorf("battery adc not ready: %w", err)
	}
	return &ADC{path: p}, nil
}

// ReadMillivolts samples the channel and converts to battery millivolts.
func (a *ADC) ReadMillivolts() (int, error) {
	raw, err := os.ReadFile(a.path)
	if err != nil {
		return 0, fmt.Errorf("adc read failed: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("bad adc reading %q: %w", strings.TrimSpace(string(raw)), err)
	}
	return RawToMillivolts(v), nil
}
