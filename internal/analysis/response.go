package analysis

import (
	"fmt"
	"math"
)

// Response characterizes how a signal approaches a target.
type Response struct {
	// RiseTime is the first time the signal covered 90% of the initial gap.
	// NaN if it never does.
	RiseTime float64
	// SettlingTime is the time after which the signal stays within the band.
	// NaN if it is still outside at the end.
	SettlingTime float64
	// Overshoot is how far past the target the signal went, as a fraction
	// of the initial gap.
	Overshoot      float64
	SteadyStateErr float64
	InitialGap     float64
}

// StepResponse measures values against target. band is the absolute
// settling tolerance.
func StepResponse(times, values []float64, target, band float64) (Response, error) {
	if len(times) != len(values) {
		return Response{}, fmt.Errorf("step response: %d times, %d values", len(times), len(values))
	}
	if len(values) == 0 {
		return Response{}, fmt.Errorf("step response: empty signal")
	}

	gap := target - values[0]
	r := Response{
		RiseTime:       math.NaN(),
		SettlingTime:   math.NaN(),
		InitialGap:     gap,
		SteadyStateErr: target - values[len(values)-1],
	}
	if gap == 0 {
		r.RiseTime = times[0]
	}

	sign := 1.0
	if gap < 0 {
		sign = -1
	}

	peak := 0.0
	for i, v := range values {
		progress := sign * (v - values[0])
		if math.IsNaN(r.RiseTime) && progress >= 0.9*math.Abs(gap) {
			r.RiseTime = times[i]
		}
		peak = math.Max(peak, sign*(v-target))
	}
	if gap != 0 {
		r.Overshoot = peak / math.Abs(gap)
	}

	last := len(values) - 1
	if math.Abs(values[last]-target) <= band {
		i := last
		for i > 0 && math.Abs(values[i-1]-target) <= band {
			i--
		}
		r.SettlingTime = times[i]
	}

	return r, nil
}
