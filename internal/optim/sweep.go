package optim

import (
	"context"
	"fmt"

	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/metrics"
	"github.com/san-kum/vehsim/internal/physics"
)

// SweepPoint is the steady outcome of one constant-throttle run.
type SweepPoint struct {
	Throttle     float64
	Velocity     float64
	Acceleration float64
	Distance     float64
}

// Settled reports whether the run ended with |a| below tol.
func (p SweepPoint) Settled(tol float64) bool {
	return p.Acceleration < tol && p.Acceleration > -tol
}

// ThrottleSweep drives one independent vehicle per throttle level on road
// for duration seconds, in parallel, and reports where each one ended up.
func ThrottleSweep(ctx context.Context, params physics.VehicleParams, road control.GradeFunc, levels []float64, duration float64, workers int) ([]SweepPoint, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	factory := func(i int) (dynamo.RunSpec, error) {
		veh, err := physics.NewVehicle(params)
		if err != nil {
			return dynamo.RunSpec{}, err
		}
		return dynamo.RunSpec{
			Plant:      physics.NewPlant(veh),
			Controller: control.NewProfile(control.Constant(levels[i]), road),
			Metrics:    []dynamo.Metric{metrics.NewDistance()},
		}, nil
	}

	cfg := dynamo.DefaultConfig()
	cfg.Duration = duration

	results, err := dynamo.NewEnsemble(factory, len(levels)).WithWorkers(workers).Run(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("throttle sweep: %w", err)
	}

	points := make([]SweepPoint, len(levels))
	for i, r := range results {
		final := r.Final()
		points[i] = SweepPoint{
			Throttle:     levels[i],
			Velocity:     final[physics.IdxVelocity],
			Acceleration: final[physics.IdxAcceleration],
			Distance:     r.Metrics["distance"],
		}
	}
	return points, nil
}

// Levels returns n evenly spaced values from lo to hi inclusive.
func Levels(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}
