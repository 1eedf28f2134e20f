package sensor

import (
	"math"
	"math/rand"
	"sync"
)

// Sim generates plausible distances for demo mode: a slow sweep across the
// sensor's window with jitter, plus occasional no-target reads so the
// fail-soft path gets exercised without hardware.
type Sim struct {
	mu       sync.Mutex
	t        float64
	failRate float64
}

// NewSim creates a simulated rangefinder.
func NewSim() *Sim {
	return &Sim{failRate: 0.04}
}

// ReadDistanceMM returns the next simulated measurement.
func (s *Sim) ReadDistanceMM() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.t += 0.15
	if rand.Float64() < s.failRate {
		return 0, ErrNoTarget
	}

	// Sweep roughly 50-1150mm with a little noise on top.
	d := 600 + 550*math.Sin(s.t*0.35) + (rand.Float64()-0.5)*30
	if d < 0 {
		d = 0
	}
	return uint16(d), nil
}
