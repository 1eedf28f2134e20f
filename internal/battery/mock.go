package battery

import (
	"math/rand"
	"sync"
)

// Sim is a slowly draining fake battery for demo mode.
type Sim struct {
	mu sync.Mutex
	mv float64
}

// NewSim creates a simulated gauge starting near full charge.
func NewSim() *Sim {
	return &Sim{mv: 4150}
}

// ReadMillivolts returns the next simulated voltage.
func (s *Sim) ReadMillivolts() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drain a little each sample, with measurement noise.
	s.mv -= 0.5 + rand.Float64()
	if s.mv < 3250 {
		s.mv = 4150 // pretend someone swapped the cell
	}
	return int(s.mv + (rand.Float64()-0.5)*8), nil
}
