package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/physics"
)

func TestEnergy(t *testing.T) {
	m := NewEnergy(2000)

	m.Observe(dynamo.State{0, 10, 0, 100, 0}, dynamo.Control{0, 0}, 0)
	if got := m.Value(); math.Abs(got-100000) > 1e-9 {
		t.Errorf("expected 100000 J, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestThrottleEffort(t *testing.T) {
	m := NewThrottleEffort()
	m.Observe(nil, dynamo.Control{0.2, 0.1}, 0)
	m.Observe(nil, dynamo.Control{0.4, -0.1}, 0.01)

	if got := m.Value(); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("expected mean throttle 0.3, got %f", got)
	}
}

func TestSlipSaturation(t *testing.T) {
	m := NewSlipSaturation(physics.DefaultVehicleParams())

	// slip 1.1: saturated
	m.Observe(dynamo.State{0, 5, 0, 100, 0}, nil, 0)
	// slip 0.05: adhesion
	m.Observe(dynamo.State{0, 10, 0, 100, 0}, nil, 0)

	if got := m.Value(); got != 0.5 {
		t.Errorf("expected half the samples saturated, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestKinematicMetrics(t *testing.T) {
	fv, d, pa := NewFinalVelocity(), NewDistance(), NewPeakAccel()
	samples := []dynamo.State{
		{10, 5, 1.0, 100, 0},
		{15, 6, -2.5, 100, 0},
		{22, 7, 0.5, 100, 0},
	}
	for i, x := range samples {
		for _, m := range []dynamo.Metric{fv, d, pa} {
			m.Observe(x, nil, float64(i))
		}
	}

	if fv.Value() != 7 {
		t.Errorf("final velocity = %f", fv.Value())
	}
	if d.Value() != 12 {
		t.Errorf("distance = %f", d.Value())
	}
	if pa.Value() != 2.5 {
		t.Errorf("peak accel = %f", pa.Value())
	}

	d.Reset()
	d.Observe(dynamo.State{100}, nil, 0)
	if d.Value() != 0 {
		t.Errorf("distance after reset = %f", d.Value())
	}
}

func TestDefaultsOnCourse(t *testing.T) {
	p := physics.DefaultVehicleParams()
	v, err := physics.NewVehicle(p)
	if err != nil {
		t.Fatalf("new vehicle: %v", err)
	}

	sim := dynamo.New(physics.NewPlant(v), constantThrottle(0.3))
	for _, m := range Defaults(p) {
		sim.AddMetric(m)
	}

	result, err := sim.Run(context.Background(), dynamo.Config{Duration: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, name := range []string{"final_velocity", "distance", "peak_accel", "throttle_effort", "slip_saturation", "kinetic_energy"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
	if result.Metrics["distance"] <= 0 {
		t.Error("vehicle should have moved forward")
	}
	if math.Abs(result.Metrics["throttle_effort"]-0.3) > 1e-12 {
		t.Errorf("throttle effort = %f", result.Metrics["throttle_effort"])
	}
	final := result.Final()
	if got, want := result.Metrics["final_velocity"], final[physics.IdxVelocity]; got != want {
		t.Errorf("final velocity %v should match terminal state %v", got, want)
	}
	if got, want := result.Metrics["distance"], final[physics.IdxPosition]-result.States[0][physics.IdxPosition]; got != want {
		t.Errorf("distance %v should reach terminal state, want %v", got, want)
	}
	if result.Metrics["slip_saturation"] <= 0 {
		t.Error("start-up slip should saturate for at least one sample")
	}
}

type constantThrottle float64

func (c constantThrottle) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{float64(c), 0}
}
