package physics

import (
	"testing"

	"github.com/san-kum/vehsim/internal/dynamo"
)

func TestPlantDims(t *testing.T) {
	v, err := NewVehicle(DefaultVehicleParams())
	if err != nil {
		t.Fatalf("new vehicle: %v", err)
	}
	p := NewPlant(v)

	if p.StateDim() != 5 {
		t.Errorf("expected 5 states, got %d", p.StateDim())
	}
	if p.ControlDim() != 2 {
		t.Errorf("expected 2 controls, got %d", p.ControlDim())
	}
	if len(p.StateLabels()) != p.StateDim() || len(p.ControlLabels()) != p.ControlDim() {
		t.Error("labels do not match dimensions")
	}
}

func TestPlantStepMatchesVehicle(t *testing.T) {
	a, _ := NewVehicle(DefaultVehicleParams())
	b, _ := NewVehicle(DefaultVehicleParams())
	p := NewPlant(a)

	for k := 0; k < 100; k++ {
		p.Step(dynamo.Control{0.3, 0.02})
		b.Step(0.3, 0.02)
	}

	got, want := p.State(), b.State()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("state %d: plant %v, vehicle %v", i, got, want)
		}
	}
}

func TestPlantShortControl(t *testing.T) {
	a, _ := NewVehicle(DefaultVehicleParams())
	b, _ := NewVehicle(DefaultVehicleParams())

	NewPlant(a).Step(dynamo.Control{0.4})
	b.Step(0.4, 0)

	if a.Acceleration() != b.Acceleration() {
		t.Errorf("missing grade should mean flat road: %f vs %f", a.Acceleration(), b.Acceleration())
	}
}

func TestPlantLabelsAreCopies(t *testing.T) {
	v, _ := NewVehicle(DefaultVehicleParams())
	p := NewPlant(v)

	labels := p.StateLabels()
	labels[0] = "mutated"
	if p.StateLabels()[0] != "x" {
		t.Error("StateLabels exposed internal slice")
	}
}
