package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/physics"
)

type Experiment struct {
	cfg       *config.Config
	simulator *dynamo.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the vehicle, controller and default metrics described by the
// configuration.
func (e *Experiment) Setup(registry *Registry) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	veh, err := e.cfg.BuildVehicle()
	if err != nil {
		return err
	}

	ctrl, err := registry.GetController(e.cfg)
	if err != nil {
		return err
	}

	e.simulator = dynamo.New(physics.NewPlant(veh), ctrl)
	for _, m := range registry.DefaultMetrics(e.cfg.Vehicle) {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := dynamo.DefaultConfig()
	simCfg.Duration = e.cfg.Duration

	return e.simulator.Run(ctx, simCfg)
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}
