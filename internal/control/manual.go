package control

import (
	"sync"

	"github.com/san-kum/vehsim/internal/dynamo"
)

// Manual passes a throttle set from outside the loop, e.g. by key presses
// in the live view, over a road grade.
type Manual struct {
	mu       sync.Mutex
	throttle float64
	road     GradeFunc
}

func NewManual(initial float64, road GradeFunc) *Manual {
	if road == nil {
		road = Flat{}
	}
	return &Manual{throttle: clamp(initial, 0, 1), road: road}
}

// SetThrottle updates the command, clamped to [0, 1].
func (m *Manual) SetThrottle(v float64) {
	m.mu.Lock()
	m.throttle = clamp(v, 0, 1)
	m.mu.Unlock()
}

// Nudge changes the command by delta and returns the new value.
func (m *Manual) Nudge(delta float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.throttle = clamp(m.throttle+delta, 0, 1)
	return m.throttle
}

func (m *Manual) Throttle(t float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.throttle
}

func (m *Manual) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{m.Throttle(t), m.road.Grade(position(x))}
}
