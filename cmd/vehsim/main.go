package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/vehsim/internal/analysis"
	"github.com/san-kum/vehsim/internal/automation"
	"github.com/san-kum/vehsim/internal/config"
	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/experiment"
	"github.com/san-kum/vehsim/internal/export"
	"github.com/san-kum/vehsim/internal/optim"
	"github.com/san-kum/vehsim/internal/physics"
	"github.com/san-kum/vehsim/internal/storage"
	"github.com/san-kum/vehsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	duration   float64
	throttle   float64
	controller string
	target     float64
	csvColumn  string
	svgColumn  string
	anaColumn  string
	anaTarget  float64
	frameRate  int
	manual     bool
	sweepLo    float64
	sweepHi    float64
	sweepN     int
	sweepTime  float64
	workers    int
	gridParams []string
	gridMetric string
	maximize   bool
	xColumn    string
	yColumn    string
	outFile    string
	band       float64
	trials     int
	seed       int64
	spreads    []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "vehsim",
		Short:        "longitudinal vehicle dynamics lab",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".vehsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a driving scenario",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export one column against time as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&csvColumn, "column", "x", "column to export")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCONTROLLER\tDURATION")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.0fs\n", name, cfg.Controller, cfg.Duration)
			}
			return w.Flush()
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "terminal velocity over a range of constant throttles",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().Float64Var(&sweepTime, "time", 100, "duration per run")
	sweepCmd.Flags().Float64Var(&sweepLo, "from", 0.1, "lowest throttle")
	sweepCmd.Flags().Float64Var(&sweepHi, "to", 0.5, "highest throttle")
	sweepCmd.Flags().IntVar(&sweepN, "levels", 5, "number of throttle levels")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per CPU)")

	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "grid search over vehicle parameters",
		Long: "grid search over vehicle parameters, e.g.\n" +
			"  vehsim grid --preset course --param mass=1500,2000,2500 --metric distance --max",
		Args: cobra.NoArgs,
		RunE: runGrid,
	}
	addScenarioFlags(gridCmd)
	gridCmd.Flags().StringArrayVar(&gridParams, "param", nil, "name=v1,v2,... (repeatable)")
	gridCmd.Flags().StringVar(&gridMetric, "metric", "distance", "metric to optimize")
	gridCmd.Flags().BoolVar(&maximize, "max", false, "maximize instead of minimize")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive a scenario with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().BoolVar(&manual, "manual", false, "drive the throttle with the arrow keys")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and step response analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&anaColumn, "column", "v", "column to analyze")
	analyzeCmd.Flags().Float64Var(&anaTarget, "target", 0, "step response target (0 = skip)")
	analyzeCmd.Flags().Float64Var(&band, "band", 0.5, "settling band around the target")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one column against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xColumn, "x-axis", "v", "column for the x axis")
	phaseCmd.Flags().StringVar(&yColumn, "y-axis", "a", "column for the y axis")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export one column against time as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgColumn, "column", "v", "column to export")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted batch of scenarios",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "spread of outcomes under uncertain vehicle parameters",
		Long: "spread of outcomes under uncertain vehicle parameters, e.g.\n" +
			"  vehsim montecarlo --preset course --spread mass=0.1 --spread aero_coeff=0.2",
		Args: cobra.NoArgs,
		RunE: runMonteCarlo,
	}
	addScenarioFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per CPU)")
	monteCarloCmd.Flags().StringArrayVar(&spreads, "spread", nil, "name=fraction (repeatable)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd,
		sweepCmd, gridCmd, liveCmd, analyzeCmd, phaseCmd, batchCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&throttle, "throttle", config.DefaultThrottle, "constant throttle")
	cmd.Flags().StringVar(&controller, "controller", config.ControllerProfile, "controller (profile, cruise, coast)")
	cmd.Flags().Float64Var(&target, "target", config.DefaultTarget, "cruise target velocity")
}

// loadScenario resolves preset, then config file, then explicitly set flags.
func loadScenario(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("throttle") {
		cfg.Throttle = config.ThrottleConfig{Constant: throttle}
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("target") {
		cfg.Cruise.Target = target
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	fmt.Printf("running %s scenario...\n", cfg.Scenario)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		Scenario:   cfg.Scenario,
		Controller: cfg.Controller,
		Duration:   cfg.Duration,
		Vehicle:    cfg.Vehicle,
	}, result)
	if err != nil {
		return err
	}

	final := result.Final()
	fmt.Println(viz.RenderSummary(cfg.Scenario, [][2]string{
		{"run id", runID},
		{"controller", cfg.Controller},
		{"elapsed", elapsed.String()},
		{"samples", strconv.Itoa(len(result.States))},
		{"final x", fmt.Sprintf("%.3f m", final[physics.IdxPosition])},
		{"final v", fmt.Sprintf("%.3f m/s", final[physics.IdxVelocity])},
	}, result.Metrics))

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tCTRL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Controller,
		)
	}

	return w.Flush()
}

var plotCaptions = map[string]string{
	"x":        "position (m)",
	"v":        "velocity (m/s)",
	"a":        "acceleration (m/s²)",
	"omega_e":  "engine speed (rad/s)",
	"throttle": "throttle",
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	table, err := st.LoadTable(runID)
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(table.Rows))

	for _, name := range []string{"x", "v", "a", "omega_e", "throttle"} {
		data, err := table.Column(name)
		if err != nil {
			continue
		}
		fmt.Println(viz.Plot(dropNaN(data), plotCaptions[name], 10, 80))
		fmt.Println()
	}

	return nil
}

func dropNaN(data []float64) []float64 {
	out := data[:0:0]
	for _, v := range data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportSeries(os.Stdout, args[0], csvColumn)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	points, err := optim.ThrottleSweep(cmd.Context(), cfg.Vehicle, cfg.Grade, optim.Levels(sweepLo, sweepHi, sweepN), sweepTime, workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THROTTLE\tVELOCITY\tACCEL\tDISTANCE\tSETTLED")
	for _, p := range points {
		fmt.Fprintf(w, "%.3f\t%.3f\t%.2e\t%.1f\t%v\n", p.Throttle, p.Velocity, p.Acceleration, p.Distance, p.Settled(1e-2))
	}
	return w.Flush()
}

func parseGridParam(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid --param %q, want name=v1,v2,...", arg)
	}
	var values []float64
	for _, s := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid --param %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func runGrid(cmd *cobra.Command, args []string) error {
	base, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	if len(gridParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	names := make([]string, 0, len(gridParams))
	ranges := make([][]float64, 0, len(gridParams))
	for _, arg := range gridParams {
		name, values, err := parseGridParam(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	gs := optim.NewGridSearch(names, ranges)
	gs.Maximize = maximize

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		for name, v := range params {
			p, err := cfg.Vehicle.With(name, v)
			if err != nil {
				return nil, err
			}
			cfg.Vehicle = p
		}
		exp := experiment.New(&cfg)
		return exp, exp.Setup(registry)
	}

	best, value, err := gs.Search(cmd.Context(), build, gridMetric)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6f\n", gridMetric, value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	veh, err := cfg.BuildVehicle()
	if err != nil {
		return err
	}

	var ctrl dynamo.Controller
	if manual {
		ctrl = control.NewManual(cfg.Throttle.Constant, cfg.Grade)
	} else {
		ctrl, err = experiment.NewRegistry().GetController(cfg)
		if err != nil {
			return err
		}
	}

	model := viz.NewModel(physics.NewPlant(veh), ctrl, cfg.Scenario, frameRate)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func loadColumns(runID string, names ...string) (*storage.RunMetadata, [][]float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	table, err := st.LoadTable(runID)
	if err != nil {
		return nil, nil, err
	}
	cols := make([][]float64, len(names))
	for i, name := range names {
		if cols[i], err = table.Column(name); err != nil {
			return nil, nil, err
		}
	}
	return meta, cols, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, cols, err := loadColumns(args[0], "time", anaColumn)
	if err != nil {
		return err
	}

	var times, data []float64
	for i, v := range cols[1] {
		if !math.IsNaN(v) {
			times = append(times, cols[0][i])
			data = append(data, v)
		}
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	ps := analysis.Spectrum(data)
	if len(ps) > 4 {
		fmt.Println(viz.Plot(ps[:len(ps)/4], fmt.Sprintf("amplitude spectrum (%s)", anaColumn), 15, 80))
		fmt.Println()
	}

	freq, _ := analysis.DominantFrequency(data, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	if anaTarget == 0 {
		return nil
	}

	r, err := analysis.StepResponse(times, data, anaTarget, band)
	if err != nil {
		return err
	}
	fmt.Printf("\nstep response to %.3f (band %.3f):\n", anaTarget, band)
	fmt.Printf("  rise time:     %.3f s\n", r.RiseTime)
	fmt.Printf("  settling time: %.3f s\n", r.SettlingTime)
	fmt.Printf("  overshoot:     %.1f%%\n", r.Overshoot*100)
	fmt.Printf("  final error:   %.4f\n", r.SteadyStateErr)
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	_, cols, err := loadColumns(args[0], xColumn, yColumn)
	if err != nil {
		return err
	}
	portrait, err := analysis.NewPortrait(xColumn, yColumn, cols[0], cols[1])
	if err != nil {
		return err
	}
	fmt.Print(portrait.ASCII(80, 24))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, cols, err := loadColumns(args[0], "time", svgColumn)
	if err != nil {
		return err
	}

	title := svgColumn
	if c, ok := plotCaptions[svgColumn]; ok {
		title = c
	}
	svg, err := export.SeriesSVG(export.DefaultChart(title), cols[0], cols[1])
	if err != nil {
		return err
	}

	if outFile == "" {
		fmt.Print(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", scenario.Name)
	results, err := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry(), st, os.Stdout)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nRUN ID\tSCENARIO\tDISTANCE\tFINAL V")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.3f\n", r.RunID, r.Scenario,
			r.Result.Metrics["distance"], r.Result.Metrics["final_velocity"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	spread := make(map[string]float64, len(spreads))
	for _, s := range spreads {
		name, values, err := parseGridParam(s)
		if err != nil {
			return err
		}
		if len(values) != 1 {
			return fmt.Errorf("invalid --spread %q, want name=fraction", s)
		}
		spread[name] = values[0]
	}

	trialResults, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:      base,
		Spread:    spread,
		NumTrials: trials,
		Seed:      seed,
		Workers:   workers,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Printf("%d trials of %s\n\n", len(trialResults), base.Scenario)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTD\tMIN\tMAX")
	for _, name := range []string{"distance", "final_velocity", "peak_accel", "throttle_effort", "slip_saturation", "kinetic_energy"} {
		s := automation.MonteCarloStats(trialResults, name)
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", name, s.Mean, s.Std, s.Min, s.Max)
	}
	return w.Flush()
}
