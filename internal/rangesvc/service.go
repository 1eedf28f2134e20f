package rangesvc

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Notifier pushes a notification payload to the subscribed central.
// go-ble's Notifier satisfies it.
type Notifier interface {
	Write(b []byte) (int, error)
}

// Service is the business logic behind the range and config characteristics.
// It owns the latest range reading and the per-connection subscription
// state; the transport layer dispatches remote requests into it.
type Service struct {
	store *Store
	log   *logrus.Entry

	// Latest clamped reading, single producer (the sampler). Zero until the
	// first successful measurement.
	rangeMM atomic.Uint32

	mu       sync.Mutex
	notifier Notifier
}

// New creates a Service over the given settings store.
func New(store *Store, log *logrus.Logger) *Service {
	return &Service{
		store: store,
		log:   log.WithField("component", "rangesvc"),
	}
}

// RangeMM returns the latest published reading in millimeters.
func (s *Service) RangeMM() uint16 {
	return uint16(s.rangeMM.Load())
}

// Publish stores a clamped reading and, if a subscriber is present, pushes
// it as a 2-byte little-endian notification. Without a subscriber the value
// is stored only; there is no queue, a late subscriber sees just the latest
// value on its next read.
func (s *Service) Publish(mm uint16) {
	s.rangeMM.Store(uint32(mm))

	s.mu.Lock()
	n := s.notifier
	s.mu.Unlock()
	if n == nil {
		return
	}

	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], mm)
	if _, err := n.Write(buf[:]); err != nil {
		s.log.WithError(err).Debug("range notification failed")
	}
}

// Subscribe attaches the connected central's notifier. Only one central can
// be connected at a time, so a new subscription simply replaces the slot.
func (s *Service) Subscribe(n Notifier) {
	s.mu.Lock()
	s.notifier = n
	s.mu.Unlock()
	s.log.Info("range notifications enabled")
}

// Unsubscribe clears the subscription. Called on explicit CCC disable and
// by the lifecycle manager on disconnect; clearing an empty slot is fine.
func (s *Service) Unsubscribe() {
	s.mu.Lock()
	had := s.notifier != nil
	s.notifier = nil
	s.mu.Unlock()
	if had {
		s.log.Info("range notifications disabled")
	}
}

// Subscribed reports whether a central is currently subscribed.
func (s *Service) Subscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifier != nil
}

// Config returns a snapshot of the active settings.
func (s *Service) Config() Settings {
	return s.store.Load()
}

// WriteConfig decodes and applies a remote settings write. The active
// settings change only if the whole payload validates; any error leaves
// them untouched. Errors wrap ErrInvalidLength or ErrValueNotAllowed so
// the transport can report the right ATT status.
func (s *Service) WriteConfig(b []byte) error {
	next, err := UnmarshalSettings(b)
	if err != nil {
		s.log.WithError(err).Warn("rejected settings write")
		return err
	}
	if err := s.store.Replace(next); err != nil {
		s.log.WithError(err).Warn("rejected settings write")
		return err
	}
	s.log.WithFields(logrus.Fields{
		"sample_ms": next.SampleIntervalMS,
		"notify_ms": next.NotifyIntervalMS,
		"window":    [2]uint16{next.MinRangeMM, next.MaxRangeMM},
	}).Info("settings updated")
	return nil
}
