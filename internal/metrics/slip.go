package metrics

import (
	"math"

	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/physics"
)

// SlipSaturation is the fraction of samples where the tire force sits at its
// saturation limit (|slip| >= 1).
type SlipSaturation struct {
	name      string
	gearRatio float64
	radius    float64
	saturated int
	samples   int
}

func NewSlipSaturation(p physics.VehicleParams) *SlipSaturation {
	return &SlipSaturation{
		name:      "slip_saturation",
		gearRatio: p.GearRatio,
		radius:    p.EffectiveRadius,
	}
}

func (s *SlipSaturation) Name() string {
	return s.name
}

func (s *SlipSaturation) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) <= physics.IdxEngineSpeed {
		return
	}
	s.samples++
	slip := physics.SlipRatio(s.gearRatio*x[physics.IdxEngineSpeed], s.radius, x[physics.IdxVelocity])
	if math.Abs(slip) >= 1 {
		s.saturated++
	}
}

func (s *SlipSaturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *SlipSaturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
