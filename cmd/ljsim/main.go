package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ljsim/internal/analysis"
	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/experiment"
	"github.com/san-kum/ljsim/internal/export"
	"github.com/san-kum/ljsim/internal/loader"
	"github.com/san-kum/ljsim/internal/storage"
	"github.com/san-kum/ljsim/internal/tui"
	"github.com/san-kum/ljsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	dataDir string
	// run configuration
	configFile    string
	preset        string
	name          string
	integrator    string
	dt            float64
	steps         int
	reportEvery   int
	minDistance   float64
	workers       int
	validateState bool
	useLattice    bool
	// run output
	quiet     bool
	noSave    bool
	watch     bool
	frameRate int
	// lattice generation
	side    int
	spacing float64
	speed   float64
	seed    int64
	// bench
	benchSteps int
	// exports
	svgPath    string
	outPath    string
	svgWidth   int
	svgHeight  int
	snapWidth  int
	snapHeight int
	// studies
	param     string
	paramMin  float64
	paramMax  float64
	numPoints int
	values    []float64
	metric    string
	numTrials int
	perturb   float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. It resets every flag variable to its
// default.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ljsim",
		Short:        "2D Lennard-Jones molecular dynamics",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ljsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [input]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress reports")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&watch, "watch", false, "redraw particles in the terminal while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 20, "frame rate for --watch")

	initCmd := &cobra.Command{
		Use:   "init [output]",
		Short: "write a square-lattice initial condition file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initLattice,
	}
	initCmd.Flags().IntVar(&side, "side", 6, "particles per lattice side")
	initCmd.Flags().Float64Var(&spacing, "spacing", 1.12*config.DefaultSigma, "lattice spacing (m)")
	initCmd.Flags().Float64Var(&speed, "speed", 300, "initial speed of every particle (m/s)")
	initCmd.Flags().Int64Var(&seed, "seed", 1, "random seed for velocity directions")
	initCmd.Flags().StringVar(&configFile, "config", "", "also write a default config file to this path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energies and temperature of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write an svg energy chart to this path, and the temperature chart beside it")
	plotCmd.Flags().IntVar(&svgWidth, "width", 800, "svg width")
	plotCmd.Flags().IntVar(&svgHeight, "height", 400, "svg height")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id] [output]",
		Short: "write the final particle positions of a run as svg",
		Args:  cobra.ExactArgs(2),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().IntVar(&snapWidth, "width", 600, "svg width")
	snapshotCmd.Flags().IntVar(&snapHeight, "height", 600, "svg height")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "energy statistics and kinetic energy spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [input] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same initial state",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live [input]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark force evaluation by system size and workers",
		RunE:  benchForces,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 100, "steps per measurement")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIGMA\tEPSILON\tMASS\tDT\tSTEPS")
			for _, p := range config.ListPresets() {
				c := config.GetPreset(p)
				fmt.Fprintf(w, "%s\t%.3e\t%.3e\t%.3e\t%.1e\t%d\n", p, c.Sigma, c.Epsilon, c.Mass, c.Dt, c.Steps)
			}
			return w.Flush()
		},
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario]",
		Short: "run a yaml scenario of several runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [input]",
		Short: "sweep one parameter over an even range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&param, "param", "dt", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 5e-16, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 1e-14, "last value")
	sweepCmd.Flags().IntVar(&numPoints, "points", 5, "number of values")

	searchCmd := &cobra.Command{
		Use:   "search [input]",
		Short: "grid search one parameter for the smallest metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch,
	}
	addRunFlags(searchCmd)
	searchCmd.Flags().StringVar(&param, "param", "dt", "parameter to search")
	searchCmd.Flags().Float64SliceVar(&values, "values", []float64{1e-15, 2e-15, 5e-15, 1e-14}, "values to try")
	searchCmd.Flags().StringVar(&metric, "metric", "energy_drift", "metric to minimize")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [input]",
		Short: "repeat a run with randomly displaced initial positions",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&numTrials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturbation", 0.05*config.DefaultSigma, "largest displacement per coordinate (m)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "random seed, 0 for time based")

	rootCmd.AddCommand(runCmd, initCmd, listCmd, plotCmd, snapshotCmd, exportJSONCmd, analyzeCmd, compareCmd, liveCmd, benchCmd, presetsCmd,
		batchCmd, sweepCmd, searchCmd, monteCarloCmd)

	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "argon", "base preset")
	cmd.Flags().StringVar(&name, "name", "", "run name")
	cmd.Flags().StringVar(&integrator, "integrator", "verlet", "integrator")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&reportEvery, "report-every", config.DefaultReportEvery, "report cadence in steps")
	cmd.Flags().Float64Var(&minDistance, "min-distance", dynamo.DefaultMinDistance, "pair separation at or below which interactions are skipped (m)")
	cmd.Flags().IntVar(&workers, "workers", 1, "force evaluation workers")
	cmd.Flags().BoolVar(&validateState, "validate", false, "stop on non-finite state")
	cmd.Flags().BoolVar(&useLattice, "lattice", false, "generate a lattice instead of reading an input file")
}

// resolveConfig layers preset, config file, input argument and explicitly
// set flags, in that order.
func resolveConfig(cmd *cobra.Command, input string) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if input != "" {
		cfg.Input = input
	}
	if useLattice {
		cfg.Input = ""
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name = name
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("report-every") {
		cfg.ReportEvery = reportEvery
	}
	if flags.Changed("min-distance") {
		cfg.MinDistance = minDistance
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validateState
	}

	return cfg, cfg.Validate()
}

func setup(cmd *cobra.Command, input string) (*experiment.Experiment, error) {
	cfg, err := resolveConfig(cmd, input)
	if err != nil {
		return nil, err
	}

	data, err := experiment.LoadInitial(cfg)
	if err != nil {
		return nil, err
	}
	if data.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "warning: skipped %d malformed lines in %s\n", data.Skipped, cfg.Input)
	}

	return experiment.New(experiment.NewRegistry(), cfg, data)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}

	exp, err := setup(cmd, input)
	if err != nil {
		return err
	}
	cfg := exp.Config()

	if !quiet {
		exp.Simulator().AddReporter(tui.NewReporter(os.Stdout))
	}
	if watch {
		r := tui.NewLiveRenderer(os.Stdout, frameRate)
		r.Start()
		defer r.Stop()
		exp.Simulator().AddObserver(r)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d particles, %d steps, %s\n", cfg.Name, exp.System().N(), cfg.Steps, cfg.Integrator)
	start := time.Now()

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}

	elapsed := time.Since(start)
	fmt.Printf("\ncompleted %d steps in %v\n", result.StepsTaken, elapsed)
	if runErr != nil {
		fmt.Printf("stopped early: %v\n", runErr)
	}
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	for _, m := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6g\n", m, result.Metrics[m])
	}

	if !noSave && result.StepsTaken > 0 {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Name:       cfg.Name,
			Input:      cfg.Input,
			Integrator: cfg.Integrator,
			Particles:  exp.System().N(),
			Params:     exp.System().Params,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}

	return runErr
}

func initLattice(cmd *cobra.Command, args []string) error {
	output := config.DefaultInput
	if len(args) > 0 {
		output = args[0]
	}
	if side < 2 {
		return fmt.Errorf("%w: side must be at least 2, got %d", dynamo.ErrParameterBounds, side)
	}

	data := loader.Lattice(side, spacing, speed, seed)
	if err := loader.Save(output, data); err != nil {
		return err
	}
	fmt.Printf("wrote %d particles to %s\n", len(data.Positions), output)

	if configFile != "" {
		cfg := config.DefaultConfig()
		cfg.Input = output
		cfg.Lattice = config.LatticeConfig{Side: side, Spacing: spacing, Speed: speed, Seed: seed}
		if err := config.Save(configFile, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote config to %s\n", configFile)
	}
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tN\tSTEPS\tDT\tINTEG\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.1e\t%s\t%.2e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.StepsTaken,
			run.Params.Dt,
			run.Integrator,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []dynamo.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	result := dynamo.Result{Samples: samples}
	times, kinetic, potential, total, temperature := result.Series()

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d\n", meta.Particles)
	fmt.Printf("samples: %d\n\n", len(samples))

	eps := meta.Params.Epsilon
	plots := []struct {
		caption string
		data    []float64
	}{
		{"kinetic energy / ε", floats.ScaleTo(make([]float64, len(kinetic)), 1/eps, kinetic)},
		{"potential energy / ε", floats.ScaleTo(make([]float64, len(potential)), 1/eps, potential)},
		{"total energy / ε", floats.ScaleTo(make([]float64, len(total)), 1/eps, total)},
		{"temperature (K)", temperature},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Precision(4),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgPath != "" {
		charts := []struct {
			path   string
			series []export.Series
		}{
			{svgPath, []export.Series{
				{Name: "kinetic", X: times, Y: kinetic},
				{Name: "potential", X: times, Y: potential},
				{Name: "total", X: times, Y: total},
			}},
			{temperaturePath(svgPath), []export.Series{
				{Name: "temperature (K)", X: times, Y: temperature},
			}},
		}
		for _, c := range charts {
			svg := export.SeriesToSVG(c.series, svgWidth, svgHeight)
			if svg == "" {
				return fmt.Errorf("run %s has too few samples for an svg chart", meta.ID)
			}
			if err := os.WriteFile(c.path, []byte(svg), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", c.path)
		}
	}

	return nil
}

// temperaturePath derives the temperature chart path from the energy chart
// path: out/run.svg becomes out/run-temperature.svg.
func temperaturePath(energyPath string) string {
	ext := filepath.Ext(energyPath)
	if ext == "" {
		ext = ".svg"
	}
	return strings.TrimSuffix(energyPath, filepath.Ext(energyPath)) + "-temperature" + ext
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	final, err := storage.New(dataDir).LoadFinal(args[0])
	if err != nil {
		return err
	}

	pos := make([]r2.Vec, len(final))
	for i, p := range final {
		pos[i] = p.Pos
	}

	svg := export.ParticlesToSVG(pos, snapWidth, snapHeight, "#00d7ff")
	if svg == "" {
		return fmt.Errorf("no particles to draw in run %s", args[0])
	}
	if err := os.WriteFile(args[1], []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %d particles to %s\n", len(pos), args[1])
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := st.ExportJSON(f, args[0]); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("particles: %d, samples: %d\n\n", meta.Particles, len(samples))

	summary := analysis.EnergyStats(samples)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tMEAN\tSTDDEV\tMIN\tMAX\tREL")
	for _, row := range []struct {
		name string
		st   analysis.Stats
	}{
		{"kinetic (J)", summary.Kinetic},
		{"potential (J)", summary.Potential},
		{"total (J)", summary.Total},
		{"temperature (K)", summary.Temperature},
	} {
		fmt.Fprintf(w, "%s\t%.4e\t%.4e\t%.4e\t%.4e\t%.2e\n",
			row.name, row.st.Mean, row.st.StdDev, row.st.Min, row.st.Max, row.st.RelativeFluctuation)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ntotal energy drift: %.3e\n\n", summary.Drift)

	result := dynamo.Result{Samples: samples}
	_, kinetic, _, _, _ := result.Series()

	ps := analysis.PowerSpectrum(kinetic)
	if len(ps) > 2 {
		plotData := ps[1 : len(ps)/4+1]
		graph := asciigraph.Plot(plotData,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("kinetic energy power spectrum"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq := analysis.DominantFrequency(kinetic, meta.Params.Dt)
	fmt.Printf("dominant frequency: %.3e hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3e s\n", 1.0/freq)
	}

	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	input, names := args[0], args[1:]

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tTIME\tDRIFT\tMAX DRIFT\tMEAN T (K)")

	for _, integ := range names {
		if err := cmd.Flags().Set("integrator", integ); err != nil {
			return err
		}

		exp, err := setup(cmd, input)
		if err != nil {
			return fmt.Errorf("%s: %w", integ, err)
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		if err != nil {
			return fmt.Errorf("%s: %w", integ, err)
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%s\t%d\t%v\t%.3e\t%.3e\t%.2f\n",
			integ,
			result.StepsTaken,
			elapsed.Round(time.Millisecond),
			result.EnergyDrift,
			result.Metrics["energy_drift"],
			result.Metrics["mean_temperature"],
		)
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}

	exp, err := setup(cmd, input)
	if err != nil {
		return err
	}

	m := viz.NewModel(exp.Config().Name, exp.ForceField(), exp.Integrator(), exp.System())

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func benchForces(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	sides := []int{4, 8, 16}
	pool := []int{1, runtime.NumCPU()}

	fmt.Printf("benchmarking force evaluation, %d steps\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tWORKERS\tTIME\tSTEPS/SEC")

	for _, s := range sides {
		for _, nw := range pool {
			cfg := config.DefaultConfig()
			cfg.Input = ""
			cfg.Steps = benchSteps
			cfg.Workers = nw
			cfg.Lattice.Side = s

			data, err := experiment.LoadInitial(cfg)
			if err != nil {
				return err
			}
			exp, err := experiment.New(registry, cfg, data)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n",
				s*s, nw, elapsed.Round(time.Microsecond), float64(result.StepsTaken)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
