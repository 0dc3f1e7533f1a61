package automation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/experiment"
	"github.com/san-kum/vehsim/internal/physics"
	"github.com/san-kum/vehsim/internal/storage"
)

const scenarioYAML = `
name: smoke
description: short course then a heavier coast
steps:
  - preset: course
    duration: 5
  - preset: coast
    duration: 3
    vehicle:
      mass: 2500
    save_as: heavy_coast
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "smoke", sc.Name)
	require.Len(t, sc.Steps, 2)

	cfg, err := sc.Steps[1].Config()
	require.NoError(t, err)
	assert.Equal(t, "heavy_coast", cfg.Scenario)
	assert.Equal(t, config.ControllerCoast, cfg.Controller)
	assert.Equal(t, 2500.0, cfg.Vehicle.Mass)
	assert.Equal(t, 3.0, cfg.Duration)

	_, err = LoadScenario(writeScenario(t, "name: empty\n"))
	assert.Error(t, err)
}

func TestStepConfigErrors(t *testing.T) {
	_, err := ScenarioStep{Preset: "moon"}.Config()
	assert.Error(t, err)

	_, err = ScenarioStep{Vehicle: map[string]float64{"wings": 2}}.Config()
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)

	_, err = ScenarioStep{Vehicle: map[string]float64{"mass": -1}}.Config()
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestStepThrottleOverride(t *testing.T) {
	throttle := 0.4
	cfg, err := ScenarioStep{Preset: "course", Throttle: &throttle}.Config()
	require.NoError(t, err)
	assert.Nil(t, cfg.Throttle.Trapezoid)
	assert.Equal(t, 0.4, cfg.Throttle.Constant)
}

func TestRunScenarioSavesEachStep(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	store := storage.New(t.TempDir())
	require.NoError(t, store.Init())

	var out strings.Builder
	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), store, &out)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Len(t, results[0].Result.States, 501)
	assert.Len(t, results[1].Result.States, 301)
	assert.Contains(t, out.String(), "running step 2/2: heavy_coast")

	runs, err := store.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	for _, r := range results {
		assert.NotEmpty(t, r.RunID)
	}
}

func monteCarloConfig(seed int64) *MonteCarloConfig {
	base := config.GetPreset("course")
	base.Duration = 5
	return &MonteCarloConfig{
		Base:      base,
		Spread:    map[string]float64{"mass": 0.1, "aero_coeff": 0.2},
		NumTrials: 6,
		Seed:      seed,
		Workers:   3,
	}
}

func TestMonteCarloReproducible(t *testing.T) {
	registry := experiment.NewRegistry()

	first, err := RunMonteCarlo(context.Background(), monteCarloConfig(42), registry)
	require.NoError(t, err)
	second, err := RunMonteCarlo(context.Background(), monteCarloConfig(42), registry)
	require.NoError(t, err)

	require.Len(t, first, 6)
	nominal := physics.DefaultVehicleParams()
	for i := range first {
		assert.Equal(t, first[i].Vehicle, second[i].Vehicle)
		assert.Equal(t, first[i].Final, second[i].Final)

		assert.InDelta(t, nominal.Mass, first[i].Vehicle.Mass, 0.1*nominal.Mass)
		assert.InDelta(t, nominal.AeroCoeff, first[i].Vehicle.AeroCoeff, 0.2*nominal.AeroCoeff)
		assert.Equal(t, nominal.GearRatio, first[i].Vehicle.GearRatio)
	}

	stats := MonteCarloStats(first, "distance")
	assert.Equal(t, 6, stats.N)
	assert.LessOrEqual(t, stats.Min, stats.Mean)
	assert.LessOrEqual(t, stats.Mean, stats.Max)
	assert.Greater(t, stats.Std, 0.0)
}

func TestMonteCarloErrors(t *testing.T) {
	registry := experiment.NewRegistry()

	cfg := monteCarloConfig(1)
	cfg.Spread = map[string]float64{"wings": 0.1}
	_, err := RunMonteCarlo(context.Background(), cfg, registry)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)

	cfg = monteCarloConfig(1)
	cfg.NumTrials = 0
	_, err = RunMonteCarlo(context.Background(), cfg, registry)
	assert.Error(t, err)

	assert.Equal(t, Stats{}, MonteCarloStats(nil, "distance"))
}
