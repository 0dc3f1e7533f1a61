package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/metrics"
	"github.com/san-kum/vehsim/internal/physics"
)

type ControllerFactory func(cfg *config.Config) dynamo.Controller

type Registry struct {
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]ControllerFactory),
	}

	r.controllers[config.ControllerProfile] = func(cfg *config.Config) dynamo.Controller {
		return control.NewProfile(cfg.ThrottleSignal(), cfg.Grade)
	}
	r.controllers[config.ControllerCruise] = func(cfg *config.Config) dynamo.Controller {
		c := cfg.Cruise
		return control.NewCruise(c.Kp, c.Ki, c.Kd, c.Target, cfg.Grade)
	}
	r.controllers[config.ControllerCoast] = func(cfg *config.Config) dynamo.Controller {
		return control.NewNone(physics.NumControls)
	}

	return r
}

// Register adds or replaces a controller kind.
func (r *Registry) Register(name string, f ControllerFactory) {
	r.controllers[name] = f
}

func (r *Registry) GetController(cfg *config.Config) (dynamo.Controller, error) {
	fn, ok := r.controllers[cfg.Controller]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", cfg.Controller)
	}
	return fn(cfg), nil
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(p physics.VehicleParams) []dynamo.Metric {
	return metrics.Defaults(p)
}
