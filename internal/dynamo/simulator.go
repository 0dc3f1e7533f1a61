package dynamo

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	plant      Plant
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(plant Plant, controller Controller) *Simulator {
	return &Simulator{
		plant:      plant,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Plant returns the plant driven by the simulator.
func (s *Simulator) Plant() Plant { return s.plant }

// Steps returns the number of sample intervals covered by cfg.
func (s *Simulator) Steps(cfg Config) int {
	return int(math.Round(cfg.Duration / s.plant.SampleTime()))
}

// Run resets the plant and controller and drives the plant over
// cfg.Duration. The state at t_k is recorded before step k is taken, so the
// result holds Steps+1 states and Steps controls.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := s.Steps(cfg)
	dt := s.plant.SampleTime()
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}
	if l, ok := s.plant.(Labeled); ok {
		result.StateLabels = l.StateLabels()
		result.ControlLabels = l.ControlLabels()
	}

	s.reset()

	for k := 0; ; k++ {
		t := float64(k) * dt
		x := s.plant.State()

		if cfg.ValidateState && !x.IsValid() {
			result.Errors = append(result.Errors, SimError{Time: t, Step: k, Message: "invalid state (NaN/Inf)"})
			break
		}

		result.States = append(result.States, x)
		result.Times = append(result.Times, t)
		if k == steps {
			s.finish(x, t)
			break
		}

		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		u := s.controller.Compute(x, t)
		if len(u) != s.plant.ControlDim() {
			return result, &SimulationError{Step: k, Time: t, State: x, Wrapped: ErrDimensionMismatch}
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		s.plant.Step(u)
		result.Controls = append(result.Controls, u.Clone())
		result.StepsTaken++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback streams the run to callback instead of collecting it.
// Metrics and observers see the same samples as in Run, and the terminal
// state at t_N is delivered last with a nil control. Returning false from
// callback stops the run early. A NaN/Inf state ends the run with an error
// wrapping ErrInvalidState.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(State, Control, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	steps := s.Steps(cfg)
	dt := s.plant.SampleTime()
	s.reset()

	for k := 0; ; k++ {
		t := float64(k) * dt
		x := s.plant.State()

		if cfg.ValidateState && !x.IsValid() {
			return &SimulationError{Step: k, Time: t, State: x, Wrapped: ErrInvalidState}
		}

		if k == steps {
			s.finish(x, t)
			callback(x, nil, t)
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		u := s.controller.Compute(x, t)
		if len(u) != s.plant.ControlDim() {
			return &SimulationError{Step: k, Time: t, State: x, Wrapped: ErrDimensionMismatch}
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		if !callback(x, u, t) {
			return nil
		}

		s.plant.Step(u)
	}
}

func (s *Simulator) finish(x State, t float64) {
	for _, m := range s.metrics {
		if f, ok := m.(Finisher); ok {
			f.Finish(x, t)
		}
	}
}

func (s *Simulator) reset() {
	s.plant.Reset()
	if r, ok := s.controller.(Resettable); ok {
		r.Reset()
	}
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if dt := s.plant.SampleTime(); dt <= 0 {
		return fmt.Errorf("%w: sample time must be positive, got %f", ErrInvalidConfig, dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	return nil
}
