package physics

import "github.com/san-kum/vehsim/internal/dynamo"

// State vector indices of a vehicle plant.
const (
	IdxPosition = iota
	IdxVelocity
	IdxAcceleration
	IdxEngineSpeed
	IdxEngineAccel
)

// Control vector indices of a vehicle plant.
const (
	IdxThrottle = iota
	IdxGrade
)

const (
	NumStates   = 5
	NumControls = 2
)

var (
	stateLabels   = []string{"x", "v", "a", "omega_e", "omega_e_dot"}
	controlLabels = []string{"throttle", "grade"}
)

// Plant adapts a Vehicle to dynamo.Plant with u = {throttle, gradeAngle}.
type Plant struct {
	*Vehicle
}

func NewPlant(v *Vehicle) *Plant {
	return &Plant{Vehicle: v}
}

func (p *Plant) StateDim() int   { return NumStates }
func (p *Plant) ControlDim() int { return NumControls }

func (p *Plant) Step(u dynamo.Control) {
	var throttle, grade float64
	if len(u) > IdxThrottle {
		throttle = u[IdxThrottle]
	}
	if len(u) > IdxGrade {
		grade = u[IdxGrade]
	}
	p.Vehicle.Step(throttle, grade)
}

func (p *Plant) StateLabels() []string {
	return append([]string(nil), stateLabels...)
}

func (p *Plant) ControlLabels() []string {
	return append([]string(nil), controlLabels...)
}
