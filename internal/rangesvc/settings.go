package rangesvc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

const (
	// SettingsSize is the exact wire length of a settings write.
	SettingsSize = 8

	// Interval bounds in milliseconds, inclusive.
	MinIntervalMS = 10
	MaxIntervalMS = 5000
)

var (
	// ErrInvalidLength rejects writes that are not exactly SettingsSize bytes.
	ErrInvalidLength = errors.New("settings payload must be exactly 8 bytes")

	// ErrValueNotAllowed rejects writes whose decoded values violate the
	// interval bounds or the min<max window ordering.
	ErrValueNotAllowed = errors.New("settings value not allowed")
)

// Settings is the sampling configuration the central may rewrite at runtime.
// Wire format is 8 bytes little-endian in field order.
type Settings struct {
	SampleIntervalMS uint16 // sensor polling cadence
	NotifyIntervalMS uint16 // advisory push cadence for the central
	MaxRangeMM       uint16 // clamp window upper bound
	MinRangeMM       uint16 // clamp window lower bound
}

// Validate checks the interval bounds and window ordering. All failures wrap
// ErrValueNotAllowed so the transport can map them to a single ATT status.
func (s Settings) Validate() error {
	if s.SampleIntervalMS < MinIntervalMS || s.SampleIntervalMS > MaxIntervalMS {
		return fmt.Errorf("%w: sample_interval_ms=%d outside [%d, %d]",
			ErrValueNotAllowed, s.SampleIntervalMS, MinIntervalMS, MaxIntervalMS)
	}
	if s.NotifyIntervalMS < MinIntervalMS || s.NotifyIntervalMS > MaxIntervalMS {
		return fmt.Errorf("%w: notify_interval_ms=%d outside [%d, %d]",
			ErrValueNotAllowed, s.NotifyIntervalMS, MinIntervalMS, MaxIntervalMS)
	}
	if s.MinRangeMM >= s.MaxRangeMM {
		return fmt.Errorf("%w: min_range_mm=%d must be below max_range_mm=%d",
			ErrValueNotAllowed, s.MinRangeMM, s.MaxRangeMM)
	}
	return nil
}

// Clamp constrains a raw measurement into the inclusive [min, max] window.
func (s Settings) Clamp(mm uint16) uint16 {
	if mm < s.MinRangeMM {
		return s.MinRangeMM
	}
	if mm > s.MaxRangeMM {
		return s.MaxRangeMM
	}
	return mm
}

// Marshal encodes the settings in wire order.
func (s Settings) Marshal() []byte {
	b := make([]byte, SettingsSize)
	binary.LittleEndian.PutUint16(b[0:2], s.SampleIntervalMS)
	binary.LittleEndian.PutUint16(b[2:4], s.NotifyIntervalMS)
	binary.LittleEndian.PutUint16(b[4:6], s.MaxRangeMM)
	binary.LittleEndian.PutUint16(b[6:8], s.MinRangeMM)
	return b
}

// UnmarshalSettings decodes a wire payload. It does not validate values;
// length is the only thing checked here so that the two rejection
// categories stay distinct.
func UnmarshalSettings(b []byte) (Settings, error) {
	if len(b) != SettingsSize {
		return Settings{}, fmt.Errorf("%w: got %d", ErrInvalidLength, len(b))
	}
	return Settings{
		SampleIntervalMS: binary.LittleEndian.Uint16(b[0:2]),
		NotifyIntervalMS: binary.LittleEndian.Uint16(b[2:4]),
		MaxRangeMM:       binary.LittleEndian.Uint16(b[4:6]),
		MinRangeMM:       binary.LittleEndian.Uint16(b[6:8]),
	}, nil
}

// Store guards the active Settings. Readers always see one consistent
// version; a replace validates fully before any field changes, so no
// intermediate state is ever observable.
type Store struct {
	mu  sync.RWMutex
	cur Settings
}

// NewStore creates a store holding initial. The boot configuration must
// itself be valid.
func NewStore(initial Settings) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &Store{cur: initial}, nil
}

// Load returns a snapshot of the active settings.
func (st *Store) Load() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.cur
}

// Replace swaps in next after validation. On error the active settings are
// untouched.
func (st *Store) Replace(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	st.mu.Lock()
	st.cur = next
	st.mu.Unlock()
	return nil
}
