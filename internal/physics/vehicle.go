package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/vehsim/internal/dynamo"
)

const (
	DefaultPosition    = 0.0
	DefaultVelocity    = 5.0
	DefaultEngineSpeed = 100.0

	// Below this speed the slip ratio is taken as zero instead of dividing
	// by a vanishing velocity.
	minSlipVelocity = 0.001
)

// VehicleParams holds the physical constants of the longitudinal model.
type VehicleParams struct {
	// Quadratic engine torque map: T = a0 + a1*w + a2*w^2.
	A0 float64 `yaml:"a0" json:"a0"`
	A1 float64 `yaml:"a1" json:"a1"`
	A2 float64 `yaml:"a2" json:"a2"`

	GearRatio       float64 `yaml:"gear_ratio" json:"gear_ratio"`
	EffectiveRadius float64 `yaml:"effective_radius" json:"effective_radius"`
	EngineInertia   float64 `yaml:"engine_inertia" json:"engine_inertia"`
	Mass            float64 `yaml:"mass" json:"mass"`
	Gravity         float64 `yaml:"gravity" json:"gravity"`

	AeroCoeff    float64 `yaml:"aero_coeff" json:"aero_coeff"`
	RollingCoeff float64 `yaml:"rolling_coeff" json:"rolling_coeff"`

	TireStiffness float64 `yaml:"tire_stiffness" json:"tire_stiffness"`
	MaxTireForce  float64 `yaml:"max_tire_force" json:"max_tire_force"`

	SampleTime float64 `yaml:"sample_time" json:"sample_time"`
}

func DefaultVehicleParams() VehicleParams {
	return VehicleParams{
		A0:              400,
		A1:              0.1,
		A2:              -0.0002,
		GearRatio:       0.35,
		EffectiveRadius: 0.3,
		EngineInertia:   10,
		Mass:            2000,
		Gravity:         9.81,
		AeroCoeff:       1.36,
		RollingCoeff:    0.01,
		TireStiffness:   10000,
		MaxTireForce:    10000,
		SampleTime:      0.01,
	}
}

// Validate rejects parameters the integrator would divide by zero with, and
// non-finite values anywhere.
func (p VehicleParams) Validate() error {
	fields := p.fields()
	for _, name := range ParamNames {
		if v := fields[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", dynamo.ErrParameterBounds, name, v)
		}
	}
	if p.EngineInertia <= 0 {
		return fmt.Errorf("%w: engine_inertia must be positive, got %v", dynamo.ErrParameterBounds, p.EngineInertia)
	}
	if p.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %v", dynamo.ErrParameterBounds, p.Mass)
	}
	if p.SampleTime <= 0 {
		return fmt.Errorf("%w: sample_time must be positive, got %v", dynamo.ErrParameterBounds, p.SampleTime)
	}
	return nil
}

// GetParams returns the parameters keyed by their yaml names.
func (p VehicleParams) GetParams() map[string]float64 {
	return p.fields()
}

// With returns a copy of p with the named parameter replaced.
func (p VehicleParams) With(name string, value float64) (VehicleParams, error) {
	switch name {
	case "a0":
		p.A0 = value
	case "a1":
		p.A1 = value
	case "a2":
		p.A2 = value
	case "gear_ratio":
		p.GearRatio = value
	case "effective_radius":
		p.EffectiveRadius = value
	case "engine_inertia":
		p.EngineInertia = value
	case "mass":
		p.Mass = value
	case "gravity":
		p.Gravity = value
	case "aero_coeff":
		p.AeroCoeff = value
	case "rolling_coeff":
		p.RollingCoeff = value
	case "tire_stiffness":
		p.TireStiffness = value
	case "max_tire_force":
		p.MaxTireForce = value
	case "sample_time":
		p.SampleTime = value
	default:
		return p, fmt.Errorf("%w: unknown vehicle parameter %q", dynamo.ErrParameterBounds, name)
	}
	return p, nil
}

// ParamNames lists the yaml parameter names in declaration order.
var ParamNames = []string{
	"a0", "a1", "a2", "gear_ratio", "effective_radius", "engine_inertia", "mass",
	"gravity", "aero_coeff", "rolling_coeff", "tire_stiffness", "max_tire_force", "sample_time",
}

func (p VehicleParams) fields() map[string]float64 {
	return map[string]float64{
		"a0":               p.A0,
		"a1":               p.A1,
		"a2":               p.A2,
		"gear_ratio":       p.GearRatio,
		"effective_radius": p.EffectiveRadius,
		"engine_inertia":   p.EngineInertia,
		"mass":             p.Mass,
		"gravity":          p.Gravity,
		"aero_coeff":       p.AeroCoeff,
		"rolling_coeff":    p.RollingCoeff,
		"tire_stiffness":   p.TireStiffness,
		"max_tire_force":   p.MaxTireForce,
		"sample_time":      p.SampleTime,
	}
}

// Forces is the force and torque balance of the vehicle at one instant.
type Forces struct {
	EngineTorque float64
	Grade        float64
	Aero         float64
	Rolling      float64
	Load         float64
	WheelSpeed   float64
	Slip         float64
	Tire         float64
}

// Vehicle is a longitudinal model coupling a quadratic-torque engine to a
// single-track chassis through a linear tire with force saturation.
//
// Acceleration and engine acceleration are stored as state: each Step first
// integrates position, velocity and engine speed with the derivatives left
// by the previous Step, then recomputes the derivatives from the new state
// for the next call.
type Vehicle struct {
	params VehicleParams

	x     float64
	v     float64
	a     float64
	wE    float64
	wEDot float64
}

func NewVehicle(p VehicleParams) (*Vehicle, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	v := &Vehicle{params: p}
	v.Reset()
	return v, nil
}

// Reset restores the initial state. Parameters are left untouched.
func (veh *Vehicle) Reset() {
	veh.x = DefaultPosition
	veh.v = DefaultVelocity
	veh.a = 0
	veh.wE = DefaultEngineSpeed
	veh.wEDot = 0
}

// Step advances the vehicle by one sample time. Throttle is expected in
// [0, 1] but is not clamped; gradeAngle is in radians, positive uphill.
func (veh *Vehicle) Step(throttle, gradeAngle float64) {
	dt := veh.params.SampleTime

	veh.x += dt*veh.v + 0.5*dt*dt*veh.a
	veh.v += dt * veh.a
	veh.wE += dt * veh.wEDot

	f := veh.Forces(throttle, gradeAngle)

	p := veh.params
	veh.wEDot = (f.EngineTorque - p.GearRatio*p.EffectiveRadius*f.Load) / p.EngineInertia
	veh.a = (f.Tire - f.Load) / p.Mass
}

// Forces evaluates the force balance at the current velocity and engine
// speed without changing the state.
func (veh *Vehicle) Forces(throttle, gradeAngle float64) Forces {
	p := veh.params
	v, w := veh.v, veh.wE

	var f Forces
	f.EngineTorque = throttle * (p.A0 + p.A1*w + p.A2*w*w)
	f.Grade = p.Mass * p.Gravity * math.Sin(gradeAngle)
	f.Aero = p.AeroCoeff * v * v
	// Linear in v only: no constant or quadratic rolling term.
	f.Rolling = p.RollingCoeff * v
	f.Load = f.Aero + f.Rolling + f.Grade
	f.WheelSpeed = p.GearRatio * w
	f.Slip = SlipRatio(f.WheelSpeed, p.EffectiveRadius, v)
	f.Tire = TireForce(f.Slip, p.TireStiffness, p.MaxTireForce)
	return f
}

// SlipRatio is (wheelSpeed*radius - v) / v, or zero when v is at or below
// the near-standstill threshold.
func SlipRatio(wheelSpeed, radius, v float64) float64 {
	if v > minSlipVelocity {
		return (wheelSpeed*radius - v) / v
	}
	return 0
}

// TireForce is linear in slip inside |s| < 1 and saturates to maxForce
// outside it. The saturated value keeps its positive sign for large
// negative slip.
func TireForce(slip, stiffness, maxForce float64) float64 {
	if math.Abs(slip) < 1 {
		return stiffness * slip
	}
	return maxForce
}

func (veh *Vehicle) Params() VehicleParams { return veh.params }
func (veh *Vehicle) Position() float64     { return veh.x }
func (veh *Vehicle) Velocity() float64     { return veh.v }
func (veh *Vehicle) Acceleration() float64 { return veh.a }
func (veh *Vehicle) EngineSpeed() float64  { return veh.wE }
func (veh *Vehicle) EngineAccel() float64  { return veh.wEDot }
func (veh *Vehicle) SampleTime() float64   { return veh.params.SampleTime }

// State returns a snapshot ordered as x, v, a, engine speed, engine accel.
func (veh *Vehicle) State() dynamo.State {
	return dynamo.State{veh.x, veh.v, veh.a, veh.wE, veh.wEDot}
}

// KineticEnergy of the chassis, ignoring rotating parts.
func (veh *Vehicle) KineticEnergy() float64 {
	return 0.5 * veh.params.Mass * veh.v * veh.v
}
