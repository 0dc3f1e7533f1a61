package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/physics"
)

const (
	DefaultDuration = 20.0
	DefaultThrottle = 0.3
	DefaultTarget   = 20.0
	DefaultKp       = 0.1
	DefaultKi       = 0.02
	DefaultKd       = 0.0
)

// Controller kinds understood by BuildController.
const (
	ControllerProfile = "profile"
	ControllerCruise  = "cruise"
	ControllerCoast   = "coast"
)

type Config struct {
	Scenario   string                `yaml:"scenario"`
	Controller string                `yaml:"controller"`
	Duration   float64               `yaml:"duration"`
	Vehicle    physics.VehicleParams `yaml:"vehicle"`
	Throttle   ThrottleConfig        `yaml:"throttle"`
	Grade      control.GradeProfile  `yaml:"grade"`
	Cruise     CruiseConfig          `yaml:"cruise"`
}

// ThrottleConfig selects the open-loop throttle signal. With a trapezoid
// set it wins over Constant.
type ThrottleConfig struct {
	Constant  float64            `yaml:"constant"`
	Trapezoid *control.Trapezoid `yaml:"trapezoid,omitempty"`
}

type CruiseConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:   "custom",
		Controller: ControllerProfile,
		Duration:   DefaultDuration,
		Vehicle:    physics.DefaultVehicleParams(),
		Throttle:   ThrottleConfig{Constant: DefaultThrottle},
		Cruise: CruiseConfig{
			Kp:     DefaultKp,
			Ki:     DefaultKi,
			Kd:     DefaultKd,
			Target: DefaultTarget,
		},
	}
}

// Load reads a YAML file over DefaultConfig, so omitted fields keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	switch c.Controller {
	case ControllerProfile, ControllerCruise, ControllerCoast:
	default:
		return fmt.Errorf("unknown controller: %s", c.Controller)
	}
	return c.Vehicle.Validate()
}

// ThrottleSignal returns the configured open-loop throttle.
func (c *Config) ThrottleSignal() control.ThrottleFunc {
	if c.Throttle.Trapezoid != nil {
		return *c.Throttle.Trapezoid
	}
	return control.Constant(c.Throttle.Constant)
}

func (c *Config) BuildVehicle() (*physics.Vehicle, error) {
	return physics.NewVehicle(c.Vehicle)
}

// GetControllerParams flattens the controller settings for the registry.
func (c *Config) GetControllerParams() map[string]float64 {
	return map[string]float64{
		"throttle": c.Throttle.Constant,
		"kp":       c.Cruise.Kp,
		"ki":       c.Cruise.Ki,
		"kd":       c.Cruise.Kd,
		"target":   c.Cruise.Target,
	}
}
