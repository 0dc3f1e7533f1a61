package control

import (
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vehsim/internal/dynamo"
)

// ThrottleFunc maps time in seconds to a throttle command.
type ThrottleFunc interface {
	Throttle(t float64) float64
}

// GradeFunc maps position in meters to a road grade angle in radians.
type GradeFunc interface {
	Grade(x float64) float64
}

type Constant float64

func (c Constant) Throttle(t float64) float64 { return float64(c) }

// Trapezoid ramps linearly from Initial to Peak over [0, RiseEnd], holds
// Peak until HoldEnd, ramps to Final at FallEnd and stays there.
type Trapezoid struct {
	Initial float64 `yaml:"initial"`
	Peak    float64 `yaml:"peak"`
	Final   float64 `yaml:"final"`
	RiseEnd float64 `yaml:"rise_end"`
	HoldEnd float64 `yaml:"hold_end"`
	FallEnd float64 `yaml:"fall_end"`
}

func (p Trapezoid) Throttle(t float64) float64 {
	switch {
	case t < 0:
		return p.Initial
	case t < p.RiseEnd:
		return lerp(p.Initial, p.Peak, t/p.RiseEnd)
	case t < p.HoldEnd:
		return p.Peak
	case t < p.FallEnd:
		return lerp(p.Peak, p.Final, (t-p.HoldEnd)/(p.FallEnd-p.HoldEnd))
	default:
		return p.Final
	}
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}

// GradeSegment applies Angle to every position below Until.
type GradeSegment struct {
	Until float64 `yaml:"until"`
	Angle float64 `yaml:"angle"`
}

// GradeProfile is a piecewise-constant road. Past the last segment the road
// has the Default angle.
type GradeProfile struct {
	Segments []GradeSegment `yaml:"segments"`
	Default  float64        `yaml:"default"`
}

// NewGradeProfile sorts the segments by their end position.
func NewGradeProfile(def float64, segments ...GradeSegment) GradeProfile {
	s := append([]GradeSegment(nil), segments...)
	sort.Slice(s, func(i, j int) bool { return s[i].Until < s[j].Until })
	return GradeProfile{Segments: s, Default: def}
}

// UnmarshalYAML keeps segments loaded from a file in the same order
// NewGradeProfile would, so the file may list them in any order.
func (g *GradeProfile) UnmarshalYAML(node *yaml.Node) error {
	type plain GradeProfile
	p := plain(*g)
	if err := node.Decode(&p); err != nil {
		return err
	}
	*g = NewGradeProfile(p.Default, p.Segments...)
	return nil
}

func (g GradeProfile) Grade(x float64) float64 {
	for _, s := range g.Segments {
		if x < s.Until {
			return s.Angle
		}
	}
	return g.Default
}

// Flat is a road without inclination.
type Flat struct{}

func (Flat) Grade(x float64) float64 { return 0 }

// Slope converts a rise over a horizontal run into a grade angle.
func Slope(rise, run float64) float64 {
	return math.Atan(rise / run)
}

// CourseThrottle ramps 0.2 to 0.5 over five seconds, holds to fifteen and
// releases to zero at twenty.
func CourseThrottle() Trapezoid {
	return Trapezoid{Initial: 0.2, Peak: 0.5, Final: 0, RiseEnd: 5, HoldEnd: 15, FallEnd: 20}
}

// CourseGrade climbs 3 m over the first 60 m, 9 m over the next 90 m, and
// is flat from 150 m on.
func CourseGrade() GradeProfile {
	return NewGradeProfile(0,
		GradeSegment{Until: 60, Angle: Slope(3, 60)},
		GradeSegment{Until: 150, Angle: Slope(9, 90)},
	)
}

// Profile is an open-loop controller returning {throttle(t), grade(x)}.
type Profile struct {
	throttle ThrottleFunc
	road     GradeFunc
}

func NewProfile(throttle ThrottleFunc, road GradeFunc) *Profile {
	if road == nil {
		road = Flat{}
	}
	return &Profile{throttle: throttle, road: road}
}

func (p *Profile) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{p.throttle.Throttle(t), p.road.Grade(position(x))}
}

func position(x dynamo.State) float64 {
	if len(x) == 0 {
		return 0
	}
	return x[0]
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
