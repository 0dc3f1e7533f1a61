// Package automation runs scripted batches of driving scenarios and Monte
// Carlo studies over uncertain vehicle parameters.
package automation

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/experiment"
	"github.com/san-kum/vehsim/internal/physics"
	"github.com/san-kum/vehsim/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a preset with optional overrides. Unset fields keep the
// preset's values.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Controller string             `yaml:"controller"`
	Duration   float64            `yaml:"duration"`
	Throttle   *float64           `yaml:"throttle"`
	Target     *float64           `yaml:"target"`
	Vehicle    map[string]float64 `yaml:"vehicle"`
	SaveAs     string             `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}

	return &scenario, nil
}

// Config resolves the step into a validated configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}

	if s.Controller != "" {
		cfg.Controller = s.Controller
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Throttle != nil {
		cfg.Throttle = config.ThrottleConfig{Constant: *s.Throttle}
	}
	if s.Target != nil {
		cfg.Cruise.Target = *s.Target
	}

	names := make([]string, 0, len(s.Vehicle))
	for name := range s.Vehicle {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, err := cfg.Vehicle.With(name, s.Vehicle[name])
		if err != nil {
			return nil, err
		}
		cfg.Vehicle = p
	}

	if s.SaveAs != "" {
		cfg.Scenario = s.SaveAs
	}

	return cfg, cfg.Validate()
}

// StepResult is one finished step. RunID is empty when nothing was stored.
type StepResult struct {
	Scenario string
	RunID    string
	Result   *dynamo.Result
}

// RunScenario executes all steps in order, saving each into store when it
// is non-nil. Progress lines go to out.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store, out io.Writer) ([]StepResult, error) {
	if out == nil {
		out = io.Discard
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Fprintf(out, "running step %d/%d: %s\n", i+1, len(scenario.Steps), cfg.Scenario)

		exp := experiment.New(cfg)
		if err := exp.Setup(registry); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Scenario: cfg.Scenario, Result: result}
		if store != nil {
			sr.RunID, err = store.Save(storage.RunInfo{
				Scenario:   cfg.Scenario,
				Controller: cfg.Controller,
				Duration:   cfg.Duration,
				Vehicle:    cfg.Vehicle,
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig perturbs vehicle parameters around Base. Spread maps a
// parameter name to a relative half-width: 0.1 draws uniformly within ±10%.
type MonteCarloConfig struct {
	Base      *config.Config
	Spread    map[string]float64
	NumTrials int
	Seed      int64
	Workers   int
}

// Trial is the outcome of one perturbed run.
type Trial struct {
	ID      int
	Vehicle physics.VehicleParams
	Final   dynamo.State
	Metrics map[string]float64
}

// RunMonteCarlo samples every trial up front from the seed and then runs
// them in parallel, so a fixed seed reproduces the same study.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]Trial, error) {
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo: need at least one trial")
	}
	if err := cfg.Base.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	names := make([]string, 0, len(cfg.Spread))
	for name := range cfg.Spread {
		names = append(names, name)
	}
	sort.Strings(names)

	base := cfg.Base.Vehicle.GetParams()
	vehicles := make([]physics.VehicleParams, cfg.NumTrials)
	for i := range vehicles {
		p := cfg.Base.Vehicle
		for _, name := range names {
			nominal, ok := base[name]
			if !ok {
				return nil, fmt.Errorf("%w: unknown vehicle parameter %q", dynamo.ErrParameterBounds, name)
			}
			var err error
			p, err = p.With(name, nominal*(1+(rng.Float64()*2-1)*cfg.Spread[name]))
			if err != nil {
				return nil, err
			}
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		vehicles[i] = p
	}

	factory := func(i int) (dynamo.RunSpec, error) {
		trialCfg := *cfg.Base
		trialCfg.Vehicle = vehicles[i]

		veh, err := trialCfg.BuildVehicle()
		if err != nil {
			return dynamo.RunSpec{}, err
		}
		ctrl, err := registry.GetController(&trialCfg)
		if err != nil {
			return dynamo.RunSpec{}, err
		}
		return dynamo.RunSpec{
			Plant:      physics.NewPlant(veh),
			Controller: ctrl,
			Metrics:    registry.DefaultMetrics(vehicles[i]),
		}, nil
	}

	simCfg := dynamo.DefaultConfig()
	simCfg.Duration = cfg.Base.Duration

	results, err := dynamo.NewEnsemble(factory, cfg.NumTrials).WithWorkers(cfg.Workers).Run(ctx, simCfg)
	if err != nil {
		return nil, fmt.Errorf("monte carlo: %w", err)
	}

	trials := make([]Trial, len(results))
	for i, r := range results {
		trials[i] = Trial{ID: i, Vehicle: vehicles[i], Final: r.Final(), Metrics: r.Metrics}
	}
	return trials, nil
}

// Stats summarizes one metric across trials.
type Stats struct {
	Mean, Std, Min, Max float64
	N                   int
}

// MonteCarloStats computes summary statistics of metric. Trials without the
// metric are skipped.
func MonteCarloStats(trials []Trial, metric string) Stats {
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum, sumSq float64
	for _, t := range trials {
		v, ok := t.Metrics[metric]
		if !ok {
			continue
		}
		s.N++
		sum += v
		sumSq += v * v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	if s.N == 0 {
		return Stats{}
	}
	s.Mean = sum / float64(s.N)
	s.Std = math.Sqrt(math.Max(sumSq/float64(s.N)-s.Mean*s.Mean, 0))
	return s
}
