package battery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGauge struct {
	mu      sync.Mutex
	results []func() (int, error)
	drained chan struct{}
}

func (g *stubGauge) ReadMillivolts() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.results) == 0 {
		select {
		case g.drained <- struct{}{}:
		default:
		}
		return 0, errors.New("drained")
	}
	next := g.results[0]
	g.results = g.results[1:]
	return next()
}

func runMonitor(t *testing.T, results []func() (int, error)) *Monitor {
	t.Helper()
	g := &stubGauge{results: results, drained: make(chan struct{}, 1)}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	m := NewMonitor(g, time.Millisecond, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-g.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never drained the stub")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on cancel")
	}
	return m
}

func mv(v int) func() (int, error) {
	return func() (int, error) { return v, nil }
}

func TestMonitorZeroUntilFirstSample(t *testing.T) {
	g := &stubGauge{drained: make(chan struct{}, 1)}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	m := NewMonitor(g, time.Hour, log)

	require.Equal(t, uint8(0), m.Level())
}

func TestMonitorTracksCharge(t *testing.T) {
	m := runMonitor(t, []func() (int, error){mv(4200), mv(3800)})
	assert.Equal(t, uint8(50), m.Level())
}

func TestMonitorKeepsLevelOnFailure(t *testing.T) {
	m := runMonitor(t, []func() (int, error){
		mv(4150),
		func() (int, error) { return 0, errors.New("adc timeout") },
	})
	assert.Equal(t, uint8(95), m.Level())
}

func TestMonitorIgnoresZeroVoltage(t *testing.T) {
	// A zero sample means the channel read garbage, not an empty cell.
	m := runMonitor(t, []func() (int, error){mv(3700), mv(0)})
	assert.Equal(t, uint8(35), m.Level())
}
