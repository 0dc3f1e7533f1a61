package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

type Control []float64

func (u Control) Clone() Control {
	c := make(Control, len(u))
	copy(c, u)
	return c
}

// Plant is a discrete-time system that owns its state and advances it by one
// fixed sample interval per Step call.
type Plant interface {
	Step(u Control)
	Reset()
	State() State
	StateDim() int
	ControlDim() int
	SampleTime() float64
}

// Labeled plants name their state and control components for export.
type Labeled interface {
	StateLabels() []string
	ControlLabels() []string
}

type Controller interface {
	Compute(x State, t float64) Control
}

// Resettable controllers carry internal state that must be cleared between
// runs.
type Resettable interface {
	Reset()
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

// Finisher metrics also see the terminal state at t_N, after which no
// control is applied.
type Finisher interface {
	Finish(x State, t float64)
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Duration:      20.0,
		ValidateState: true,
	}
}

type Result struct {
	States        []State
	Controls      []Control
	Times         []float64
	StateLabels   []string
	ControlLabels []string
	Metrics       map[string]float64
	StepsTaken    int
	Errors        []error
}

// Column returns the time series of state component i.
func (r *Result) Column(i int) []float64 {
	out := make([]float64, 0, len(r.States))
	for _, s := range r.States {
		if i < len(s) {
			out = append(out, s[i])
		}
	}
	return out
}

// ColumnByLabel looks a state component up by its label.
func (r *Result) ColumnByLabel(label string) ([]float64, bool) {
	for i, l := range r.StateLabels {
		if l == label {
			return r.Column(i), true
		}
	}
	return nil, false
}

// Final returns the last recorded state, or nil for an empty result.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
