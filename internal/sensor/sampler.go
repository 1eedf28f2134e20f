package sensor

import (
	"context"
	"time"

	"ble-rangefinder.klederson.com/internal/rangesvc"
	"github.com/sirupsen/logrus"
)

// Publisher receives clamped readings. Satisfied by rangesvc.Service.
type Publisher interface {
	Publish(mm uint16)
}

// Sampler drives the SAMPLE -> CLAMP -> PUBLISH -> SLEEP cycle. It runs
// from boot for the life of the process, independent of connection state.
type Sampler struct {
	dev   Rangefinder
	store *rangesvc.Store
	out   Publisher
	log   *logrus.Entry
}

// NewSampler creates a sampler reading dev and publishing into out.
func NewSampler(dev Rangefinder, store *rangesvc.Store, out Publisher, log *logrus.Logger) *Sampler {
	return &Sampler{
		dev:   dev,
		store: store,
		out:   out,
		log:   log.WithField("component", "sampler"),
	}
}

// Run executes the polling loop until ctx is cancelled. The settings are
// re-read at the top of every cycle, so a remote write takes effect on the
// next cycle and never mid-cycle. A failed read skips the publish for that
// cycle only; the loop never stops on sensor errors.
func (s *Sampler) Run(ctx context.Context) {
	s.log.Info("sampler started")
	for {
		cfg := s.store.Load()

		mm, err := s.dev.ReadDistanceMM()
		if err != nil {
			s.log.WithError(err).Debug("measurement skipped")
		} else {
			s.out.Publish(cfg.Clamp(mm))
		}

		select {
		case <-ctx.Done():
			s.log.Info("sampler stopped")
			return
		case <-time.After(time.Duration(cfg.SampleIntervalMS) * time.Millisecond):
		}
	}
}
