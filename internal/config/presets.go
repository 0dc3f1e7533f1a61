package config

import (
	"sort"

	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/physics"
)

func coursePreset() *Config {
	trap := control.CourseThrottle()
	return &Config{
		Scenario:   "course",
		Controller: ControllerProfile,
		Duration:   20.0,
		Vehicle:    physics.DefaultVehicleParams(),
		Throttle:   ThrottleConfig{Trapezoid: &trap},
		Grade:      control.CourseGrade(),
	}
}

func coastPreset() *Config {
	return &Config{
		Scenario:   "coast",
		Controller: ControllerCoast,
		Duration:   60.0,
		Vehicle:    physics.DefaultVehicleParams(),
	}
}

func cruisePreset() *Config {
	return &Config{
		Scenario:   "cruise",
		Controller: ControllerCruise,
		Duration:   90.0,
		Vehicle:    physics.DefaultVehicleParams(),
		Grade:      control.CourseGrade(),
		Cruise:     CruiseConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, Target: DefaultTarget},
	}
}

func hillPreset() *Config {
	return &Config{
		Scenario:   "hill",
		Controller: ControllerProfile,
		Duration:   30.0,
		Vehicle:    physics.DefaultVehicleParams(),
		Throttle:   ThrottleConfig{Constant: 0.4},
		Grade: control.NewGradeProfile(0,
			control.GradeSegment{Until: 100, Angle: 0},
			control.GradeSegment{Until: 250, Angle: control.Slope(15, 150)},
			control.GradeSegment{Until: 400, Angle: control.Slope(-15, 150)},
		),
	}
}

// Presets are built on demand so callers may modify what they get back.
var Presets = map[string]func() *Config{
	"course": coursePreset,
	"coast":  coastPreset,
	"cruise": cruisePreset,
	"hill":   hillPreset,
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
