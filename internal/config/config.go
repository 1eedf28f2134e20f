package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Boot defaults for the remotely writable sampling configuration.
	// The clamp window matches the VL53L0X useful range.
	DefaultSampleIntervalMS = 100
	DefaultNotifyIntervalMS = 100
	DefaultMaxRangeMM       = 1200
	DefaultMinRangeMM       = 30

	// Battery monitor cadence. Fixed at build time, not remotely configurable.
	BatterySampleInterval = 30 * time.Second

	// BLE identity
	DefaultDeviceName = "Rangefinder"
	DefaultAdapterID  = 0

	// Custom Range Service UUID base: ASCII "rrngfinder" embedded.
	ServiceUUID    = "00000001-7272-6e67-6669-6e6465720000"
	RangeCharUUID  = "00000002-7272-6e67-6669-6e6465720000"
	ConfigCharUUID = "00000003-7272-6e67-6669-6e6465720000"

	// Monitor TUI
	TargetFPS     = 10 // Snapshot refresh rate
	EventLogLines = 8  // Lines kept in the event pane

	// App
	AppName    = "BLE-RANGEFINDER"
	AppVersion = "1.0"
)

// File is the optional YAML configuration. Zero-valued fields fall back to
// the build-time defaults above. The sampling fields only set the boot
// values; the central can still rewrite them over BLE, and nothing written
// over BLE is ever persisted back here.
type File struct {
	DeviceName       string `yaml:"device_name"`
	AdapterID        int    `yaml:"adapter_id"`
	SampleIntervalMS uint16 `yaml:"sample_interval_ms"`
	NotifyIntervalMS uint16 `yaml:"notify_interval_ms"`
	MaxRangeMM       uint16 `yaml:"max_range_mm"`
	MinRangeMM       uint16 `yaml:"min_range_mm"`
}

// Load reads a YAML configuration file. An empty path returns defaults.
func Load(path string) (*File, error) {
	f := &File{
		DeviceName:       DefaultDeviceName,
		AdapterID:        DefaultAdapterID,
		SampleIntervalMS: DefaultSampleIntervalMS,
		NotifyIntervalMS: DefaultNotifyIntervalMS,
		MaxRangeMM:       DefaultMaxRangeMM,
		MinRangeMM:       DefaultMinRangeMM,
	}
	if path == "" {
		return f, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var in File
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if in.DeviceName != "" {
		f.DeviceName = in.DeviceName
	}
	if in.AdapterID != 0 {
		f.AdapterID = in.AdapterID
	}
	if in.SampleIntervalMS != 0 {
		f.SampleIntervalMS = in.SampleIntervalMS
	}
	if in.NotifyIntervalMS != 0 {
		f.NotifyIntervalMS = in.NotifyIntervalMS
	}
	if in.MaxRangeMM != 0 {
		f.MaxRangeMM = in.MaxRangeMM
	}
	if in.MinRangeMM != 0 {
		f.MinRangeMM = in.MinRangeMM
	}
	return f, nil
}
