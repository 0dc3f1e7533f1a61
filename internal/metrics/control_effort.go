package metrics

import (
	"math"

	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/physics"
)

// ThrottleEffort is the mean absolute throttle command.
type ThrottleEffort struct {
	name    string
	sum     float64
	samples int
}

func NewThrottleEffort() *ThrottleEffort {
	return &ThrottleEffort{
		name: "throttle_effort",
	}
}

func (c *ThrottleEffort) Name() string {
	return c.name
}

func (c *ThrottleEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(u) > physics.IdxThrottle {
		c.sum += math.Abs(u[physics.IdxThrottle])
	}
	c.samples++
}

func (c *ThrottleEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ThrottleEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
