package metrics

import (
	"math"

	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/physics"
)

// FinalVelocity reports the velocity of the terminal state.
type FinalVelocity struct {
	last float64
}

func NewFinalVelocity() *FinalVelocity { return &FinalVelocity{} }

func (f *FinalVelocity) Name() string { return "final_velocity" }

func (f *FinalVelocity) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) > physics.IdxVelocity {
		f.last = x[physics.IdxVelocity]
	}
}

func (f *FinalVelocity) Finish(x dynamo.State, t float64) { f.Observe(x, nil, t) }

func (f *FinalVelocity) Value() float64 { return f.last }
func (f *FinalVelocity) Reset()         { f.last = 0 }

// Distance reports the position covered from the first observation to the
// terminal state.
type Distance struct {
	start, last float64
	seen        bool
}

func NewDistance() *Distance { return &Distance{} }

func (d *Distance) Name() string { return "distance" }

func (d *Distance) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) <= physics.IdxPosition {
		return
	}
	if !d.seen {
		d.start = x[physics.IdxPosition]
		d.seen = true
	}
	d.last = x[physics.IdxPosition]
}

func (d *Distance) Finish(x dynamo.State, t float64) { d.Observe(x, nil, t) }

func (d *Distance) Value() float64 { return d.last - d.start }

func (d *Distance) Reset() {
	d.start, d.last = 0, 0
	d.seen = false
}

// PeakAccel is the largest acceleration magnitude observed.
type PeakAccel struct {
	peak float64
}

func NewPeakAccel() *PeakAccel { return &PeakAccel{} }

func (p *PeakAccel) Name() string { return "peak_accel" }

func (p *PeakAccel) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) > physics.IdxAcceleration {
		p.peak = math.Max(p.peak, math.Abs(x[physics.IdxAcceleration]))
	}
}

func (p *PeakAccel) Finish(x dynamo.State, t float64) { p.Observe(x, nil, t) }

func (p *PeakAccel) Value() float64 { return p.peak }
func (p *PeakAccel) Reset()         { p.peak = 0 }

// Defaults returns the standard metric set for a vehicle with params p.
func Defaults(p physics.VehicleParams) []dynamo.Metric {
	return []dynamo.Metric{
		NewFinalVelocity(),
		NewDistance(),
		NewPeakAccel(),
		NewThrottleEffort(),
		NewSlipSaturation(p),
		NewEnergy(p.Mass),
	}
}
