package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ControllerProfile, cfg.Controller)
	assert.Equal(t, physics.DefaultVehicleParams(), cfg.Vehicle)
	assert.Greater(t, cfg.Duration, 0.0)
	require.NoError(t, cfg.Validate())
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("course")
	require.NotNil(t, cfg)
	require.NoError(t, cfg.Validate())

	throttle := cfg.ThrottleSignal()
	assert.InDelta(t, 0.2, throttle.Throttle(0), 1e-12)
	assert.InDelta(t, 0.5, throttle.Throttle(10), 1e-12)
	assert.Equal(t, control.Slope(3, 60), cfg.Grade.Grade(10))
	assert.Equal(t, 20.0, cfg.Duration)
}

func TestGetPresetIsFresh(t *testing.T) {
	a := GetPreset("hill")
	a.Duration = 1
	assert.Equal(t, 30.0, GetPreset("hill").Duration)
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"coast", "course", "cruise", "hill"}, ListPresets())
	for _, name := range ListPresets() {
		assert.NoError(t, GetPreset(name).Validate(), name)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `
scenario: heavy
controller: cruise
duration: 45
vehicle:
  mass: 3500
  sample_time: 0.005
cruise:
  target: 25
grade:
  segments:
    - until: 100
      angle: 0.05
  default: -0.01
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "heavy", cfg.Scenario)
	assert.Equal(t, 3500.0, cfg.Vehicle.Mass)
	assert.Equal(t, 0.005, cfg.Vehicle.SampleTime)
	assert.Equal(t, 400.0, cfg.Vehicle.A0, "unset fields keep defaults")
	assert.Equal(t, 25.0, cfg.Cruise.Target)
	assert.Equal(t, DefaultKp, cfg.Cruise.Kp)
	assert.Equal(t, 0.05, cfg.Grade.Grade(50))
	assert.Equal(t, -0.01, cfg.Grade.Grade(500))
}

func TestLoadSortsGradeSegments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hills.yaml")
	data := `
grade:
  segments:
    - until: 150
      angle: 0.1
    - until: 60
      angle: 0.05
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Grade.Grade(10))
	assert.Equal(t, 0.1, cfg.Grade.Grade(100))
	assert.Equal(t, 0.0, cfg.Grade.Grade(200))
}

func TestLoadRejectsInvalidVehicle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vehicle:\n  mass: 0\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "mass")
}

func TestLoadRejectsUnknownController(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("controller: autopilot\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "autopilot")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.yaml")
	require.NoError(t, Save(path, GetPreset("course")))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, GetPreset("course"), cfg)
}

func TestBuildVehicle(t *testing.T) {
	cfg := DefaultConfig()
	v, err := cfg.BuildVehicle()
	require.NoError(t, err)
	assert.Equal(t, 5.0, v.Velocity())
}
