package control

import (
	"fmt"

	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/physics"
)

// Cruise holds a target speed with a PID loop on the velocity error. The
// throttle is clamped to [0, 1] and the integrator stops winding up while
// the output is saturated.
type Cruise struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	road     GradeFunc
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewCruise(kp, ki, kd, target float64, road GradeFunc) *Cruise {
	if road == nil {
		road = Flat{}
	}
	return &Cruise{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		road:   road,
		first:  true,
	}
}

func (c *Cruise) Compute(x dynamo.State, t float64) dynamo.Control {
	grade := c.road.Grade(position(x))
	if len(x) <= physics.IdxVelocity {
		return dynamo.Control{0, grade}
	}

	err := c.Target - x[physics.IdxVelocity]

	if c.first {
		c.prevErr = err
		c.prevT = t
		c.first = false
		return dynamo.Control{clamp(c.Kp*err, 0, 1), grade}
	}

	dt := t - c.prevT
	if dt <= 0 {
		return dynamo.Control{clamp(c.Kp*err+c.Ki*c.integral, 0, 1), grade}
	}

	derivative := (err - c.prevErr) / dt
	raw := c.Kp*err + c.Ki*(c.integral+err*dt) + c.Kd*derivative
	u := clamp(raw, 0, 1)
	if u == raw {
		c.integral += err * dt
	}

	c.prevErr = err
	c.prevT = t

	return dynamo.Control{u, grade}
}

// Reset clears integral and derivative state
func (c *Cruise) Reset() {
	c.integral = 0
	c.prevErr = 0
	c.prevT = 0
	c.first = true
}

// GetParams returns tunable parameters for live adjustment
func (c *Cruise) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     c.Kp,
		"Ki":     c.Ki,
		"Kd":     c.Kd,
		"Target": c.Target,
	}
}

// SetParam adjusts a PID parameter
func (c *Cruise) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		c.Kp = value
	case "Ki":
		c.Ki = value
	case "Kd":
		c.Kd = value
	case "Target":
		c.Target = value
	default:
		return fmt.Errorf("%w: unknown cruise parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}
