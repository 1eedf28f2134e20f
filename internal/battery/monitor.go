package battery

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Monitor polls the gauge on a fixed interval and keeps the latest state of
// charge for the battery attribute. The level reads 0 until the first
// successful sample; a failed read keeps the previous level and retries on
// the next interval.
type Monitor struct {
	gauge    Gauge
	interval time.Duration
	log      *logrus.Entry

	level atomic.Uint32
}

// NewMonitor creates a monitor polling g every interval.
func NewMonitor(g Gauge, interval time.Duration, log *logrus.Logger) *Monitor {
	return &Monitor{
		gauge:    g,
		interval: interval,
		log:      log.WithField("component", "battery"),
	}
}

// Level returns the latest state of charge, 0-100.
func (m *Monitor) Level() uint8 {
	return uint8(m.level.Load())
}

// Run executes the polling loop until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info("battery monitor started")
	for {
		mv, err := m.gauge.ReadMillivolts()
		if err != nil {
			m.log.WithError(err).Debug("battery read skipped")
		} else if mv > 0 {
			pct := Percent(mv)
			m.level.Store(uint32(pct))
			m.log.WithFields(logrus.Fields{"mv": mv, "pct": pct}).Debug("battery sampled")
		}

		select {
		case <-ctx.Done():
			m.log.Info("battery monitor stopped")
			return
		case <-time.After(m.interval):
		}
	}
}
