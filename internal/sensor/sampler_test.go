package sensor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ble-rangefinder.klederson.com/internal/rangesvc"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedDev replays a fixed sequence of readings, then blocks the caller
// on done so the loop can be stopped deterministically.
type scriptedDev struct {
	mu      sync.Mutex
	script  []func() (uint16, error)
	stopped chan struct{}
}

func (d *scriptedDev) ReadDistanceMM() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.script) == 0 {
		select {
		case d.stopped <- struct{}{}:
		default:
		}
		return 0, ErrNoTarget
	}
	step := d.script[0]
	d.script = d.script[1:]
	return step()
}

type capturePublisher struct {
	mu  sync.Mutex
	got []uint16
}

func (p *capturePublisher) Publish(mm uint16) {
	p.mu.Lock()
	p.got = append(p.got, mm)
	p.mu.Unlock()
}

func (p *capturePublisher) values() []uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint16, len(p.got))
	copy(out, p.got)
	return out
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func fastStore(t *testing.T) *rangesvc.Store {
	t.Helper()
	st, err := rangesvc.NewStore(rangesvc.Settings{
		SampleIntervalMS: 10,
		NotifyIntervalMS: 10,
		MaxRangeMM:       1200,
		MinRangeMM:       30,
	})
	require.NoError(t, err)
	return st
}

func runScript(t *testing.T, st *rangesvc.Store, script []func() (uint16, error)) []uint16 {
	t.Helper()
	dev := &scriptedDev{script: script, stopped: make(chan struct{}, 1)}
	out := &capturePublisher{}
	s := NewSampler(dev, st, out, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-dev.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("sampler never drained the script")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sampler did not stop on cancel")
	}
	return out.values()
}

func reading(mm uint16) func() (uint16, error) {
	return func() (uint16, error) { return mm, nil }
}

func failure(err error) func() (uint16, error) {
	return func() (uint16, error) { return 0, err }
}

func TestSamplerClampsReadings(t *testing.T) {
	got := runScript(t, fastStore(t), []func() (uint16, error){
		reading(500),  // in window
		reading(10),   // below min
		reading(5000), // above max
		reading(30),   // at min
		reading(1200), // at max
	})
	assert.Equal(t, []uint16{500, 30, 1200, 30, 1200}, got)
}

func TestSamplerSkipsFailedReads(t *testing.T) {
	got := runScript(t, fastStore(t), []func() (uint16, error){
		reading(400),
		failure(ErrNoTarget),
		failure(errors.New("bus fault")),
		reading(600),
	})
	assert.Equal(t, []uint16{400, 600}, got)
}

// Replays the reconfiguration session from the product acceptance run: the
// window narrows mid-stream, a reading below the new floor clamps up, and a
// malformed window is rejected without disturbing the active one.
func TestSamplerReconfiguration(t *testing.T) {
	st := fastStore(t)

	narrow := rangesvc.Settings{SampleIntervalMS: 100, NotifyIntervalMS: 100, MaxRangeMM: 800, MinRangeMM: 50}
	inverted := rangesvc.Settings{SampleIntervalMS: 100, NotifyIntervalMS: 100, MaxRangeMM: 50, MinRangeMM: 800}

	got := runScript(t, st, []func() (uint16, error){
		reading(50), // boot window [30, 1200]
		func() (uint16, error) {
			require.NoError(t, st.Replace(narrow))
			return 50, nil // measured before the write landed, still old window
		},
		reading(20), // next cycle sees [50, 800], clamps up
		func() (uint16, error) {
			assert.ErrorIs(t, st.Replace(inverted), rangesvc.ErrValueNotAllowed)
			return 20, nil
		},
		reading(20),
	})

	assert.Equal(t, []uint16{50, 50, 50, 50, 50}, got)
	assert.Equal(t, narrow, st.Load())
}

func TestSamplerHonorsIntervalChange(t *testing.T) {
	st := fastStore(t)
	slow := st.Load()
	slow.SampleIntervalMS = 5000

	dev := &scriptedDev{stopped: make(chan struct{}, 1), script: []func() (uint16, error){
		func() (uint16, error) {
			// Takes effect on the next cycle's sleep.
			require.NoError(t, st.Replace(slow))
			return 100, nil
		},
		reading(200),
	}}
	out := &capturePublisher{}
	s := NewSampler(dev, st, out, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// The first cycle slept 10ms, so the second reading lands quickly; the
	// loop then sleeps 5s, far past our window.
	assert.Eventually(t, func() bool {
		return len(out.values()) == 2
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, out.values(), 2)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sampler did not stop mid-sleep on cancel")
	}
}
