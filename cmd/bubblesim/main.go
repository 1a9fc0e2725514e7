package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/bubblesim/internal/config"
	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/experiment"
	"github.com/san-kum/bubblesim/internal/export"
	"github.com/san-kum/bubblesim/internal/layout"
	"github.com/san-kum/bubblesim/internal/logging"
	"github.com/san-kum/bubblesim/internal/sim"
	"github.com/san-kum/bubblesim/internal/viz"
)

var (
	configFile string
	preset     string
	logLevel   string
	bodies     int
	seed       int64
	width      float64
	height     float64
	source     string
	dt         float64
	duration   float64
	fill       float64
	attempts   int
	dwell      float64
	runs       int
	series     string
	asJSON     bool
	outFile    string
	svgFile    string
	traceFile  string
	plotFile   string
)

// main registers the commands and exits 1 if the selected one fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "bubblesim",
		Short:         "bubble packing and collision playground",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&bodies, "bodies", config.DefaultBodies, "number of bodies")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "random seed")
	rootCmd.PersistentFlags().Float64Var(&width, "width", config.DefaultWidth, "arena width")
	rootCmd.PersistentFlags().Float64Var(&height, "height", config.DefaultHeight, "arena height")
	rootCmd.PersistentFlags().StringVar(&source, "source", config.DefaultSource, "magnitude source")
	rootCmd.PersistentFlags().Float64Var(&fill, "fill", layout.DefaultFill, "fill factor")
	rootCmd.PersistentFlags().IntVar(&attempts, "attempts", layout.DefaultMaxAttempts, "placement attempts per body")
	rootCmd.PersistentFlags().Float64Var(&dt, "dt", config.DefaultDt, "frame length (ms)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless session",
		Args:  cobra.NoArgs,
		RunE:  runSession,
	}
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (ms)")
	runCmd.Flags().Float64Var(&dwell, "dwell", config.DefaultDwellMs, "hold time before the cascade (ms)")
	runCmd.Flags().IntVar(&runs, "runs", 1, "independent runs with consecutive seeds")
	runCmd.Flags().StringVar(&series, "plot", "energy", "series to plot (energy, travel, overlap)")
	runCmd.Flags().BoolVar(&asJSON, "json", false, "print the result as json")
	runCmd.Flags().StringVar(&outFile, "out", "", "write the result as json to a file")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "write the final frame as svg to a file")
	runCmd.Flags().StringVar(&plotFile, "plot-svg", "", "write the plotted series as svg to a file")
	runCmd.Flags().StringVar(&traceFile, "trace", "", "write every frame as json lines to a file")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "print the initial placement",
		Args:  cobra.NoArgs,
		RunE:  printPlan,
	}
	planCmd.Flags().BoolVar(&asJSON, "json", false, "print the placement as json")
	planCmd.Flags().StringVar(&svgFile, "svg", "", "write the placement as svg to a file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal session",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dwell, "dwell", config.DefaultDwellMs, "hold time before the cascade (ms)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark planning and frames",
		Args:  cobra.NoArgs,
		RunE:  bench,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and magnitude sources",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, planCmd, liveCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if logLevel != "" {
		return logging.New(os.Stderr, logging.ParseLevel(logLevel))
	}
	return logging.FromEnv()
}

// resolveConfig layers defaults, then the preset, then the config file, then
// any flag the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("bodies") {
		cfg.Bodies = bodies
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("width") {
		cfg.Arena.Width = width
	}
	if flags.Changed("height") {
		cfg.Arena.Height = height
	}
	if flags.Changed("source") {
		cfg.Source = source
	}
	if flags.Changed("fill") {
		cfg.Layout.FillFactor = fill
	}
	if flags.Changed("attempts") {
		cfg.Layout.MaxAttempts = attempts
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Lookup("time") != nil && flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Lookup("dwell") != nil && flags.Changed("dwell") {
		cfg.Gravity.DwellMs = dwell
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiment.New(cfg, newLogger())

	if runs > 1 {
		return runEnsemble(ctx, exp, cfg)
	}

	if err := exp.Setup(nil); err != nil {
		return err
	}

	var trace *export.Trace
	if traceFile != "" {
		f, err := os.Create(traceFile)
		if err != nil {
			return fmt.Errorf("create %s: %w", traceFile, err)
		}
		defer f.Close()
		trace = export.NewTrace(f)
		exp.Field().AddObserver(trace)
	}

	if !asJSON {
		fmt.Printf("running %d bodies in %gx%g for %gms...\n", cfg.Count(), cfg.Arena.Width, cfg.Arena.Height, cfg.Duration)
	}
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if trace != nil && trace.Err() != nil {
		return fmt.Errorf("write %s: %w", traceFile, trace.Err())
	}
	if err := writeOutputs(cfg, result); err != nil {
		return err
	}
	if asJSON {
		return export.WriteJSON(os.Stdout, export.NewExportData(cfg, result))
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d\n", result.StepsTaken)
	fmt.Printf("selections: %d\n", len(result.Selections))
	for _, sel := range result.Selections {
		fmt.Printf("  #%d magnitude %.2f at (%.0f, %.0f)\n", sel.Index, sel.Magnitude, sel.X, sel.Y)
	}
	fmt.Printf("cascade frames: %d (max reach %d)\n", result.Cascades, result.MaxReach)
	if p := exp.Field().Placement(); p != nil && p.Fallback {
		fmt.Printf("layout: grid fallback, radii scaled by %.3f\n", p.Scale)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if data := result.Series[series]; len(data) > 1 {
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series))
		fmt.Println()
		fmt.Println(graph)
	}
	return nil
}

func writeOutputs(cfg *config.Config, result *sim.Result) error {
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("create %s: %w", outFile, err)
		}
		defer f.Close()
		if err := export.WriteJSON(f, export.NewExportData(cfg, result)); err != nil {
			return fmt.Errorf("write %s: %w", outFile, err)
		}
	}
	if svgFile != "" {
		if err := export.WriteFile(svgFile, export.FrameSVG(result.Final, cfg.Arena)); err != nil {
			return fmt.Errorf("write %s: %w", svgFile, err)
		}
	}
	if plotFile != "" {
		plot := export.SeriesSVG(result.Series[series], 800, 240, "#00ff88")
		if plot == "" {
			return fmt.Errorf("series %q has fewer than two samples", series)
		}
		if err := export.WriteFile(plotFile, plot); err != nil {
			return fmt.Errorf("write %s: %w", plotFile, err)
		}
	}
	return nil
}

func runEnsemble(ctx context.Context, exp *experiment.Experiment, cfg *config.Config) error {
	start := time.Now()
	results, err := exp.RunEnsemble(ctx, runs)
	if err != nil {
		return err
	}

	if asJSON {
		data := make([]export.ExportData, len(results))
		for i, r := range results {
			c := *cfg
			c.Seed += int64(i)
			data[i] = export.NewExportData(&c, r)
		}
		return export.WriteJSON(os.Stdout, data)
	}

	fmt.Printf("%d runs completed in %v\n\n", len(results), time.Since(start))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tFRAMES\tSELECTIONS\tCASCADES\tENERGY\tOVERLAP")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.3f\t%.0f\n",
			cfg.Seed+int64(i), r.StepsTaken, len(r.Selections), r.Cascades,
			r.Metrics["energy"], r.Metrics["overlap"])
	}
	return w.Flush()
}

type planRow struct {
	Index     int     `json:"index"`
	Magnitude float64 `json:"magnitude"`
	Radius    float64 `json:"radius"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

func printPlan(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	mags, err := experiment.New(cfg, nil).Magnitudes()
	if err != nil {
		return err
	}
	radii := layout.Radii(mags, cfg.Arena, cfg.Layout.FillFactor)
	plan, err := layout.Plan(radii, cfg.Arena,
		layout.WithMaxAttempts(cfg.Layout.MaxAttempts),
		layout.WithRand(rand.New(rand.NewSource(cfg.Seed))),
		layout.WithLogger(newLogger()),
	)
	if err != nil {
		return err
	}

	rows := make([]planRow, len(mags))
	for i := range mags {
		rows[i] = planRow{
			Index:     i,
			Magnitude: mags[i],
			Radius:    plan.Radii[i],
			X:         plan.Positions[i].X,
			Y:         plan.Positions[i].Y,
		}
	}

	if svgFile != "" {
		frame := dynamo.Frame{Bodies: make([]dynamo.BodyView, len(rows))}
		for i, r := range rows {
			frame.Bodies[i] = dynamo.BodyView{X: r.X, Y: r.Y, Radius: r.Radius, Tag: dynamo.TagFor(r.Magnitude)}
		}
		if err := export.WriteFile(svgFile, export.FrameSVG(frame, cfg.Arena)); err != nil {
			return fmt.Errorf("write %s: %w", svgFile, err)
		}
	}

	if asJSON {
		return export.WriteJSON(os.Stdout, struct {
			Arena    dynamo.Arena `json:"arena"`
			Fallback bool         `json:"fallback"`
			Scale    float64      `json:"scale"`
			Attempts int          `json:"attempts"`
			Bodies   []planRow    `json:"bodies"`
		}{cfg.Arena, plan.Fallback, plan.Scale, plan.Attempts, rows})
	}

	fmt.Printf("arena %gx%g, %d bodies, %d attempts", cfg.Arena.Width, cfg.Arena.Height, len(rows), plan.Attempts)
	if plan.Fallback {
		fmt.Printf(", grid fallback x%.3f", plan.Scale)
	}
	fmt.Print("\n\n")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tMAGNITUDE\tRADIUS\tX\tY")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%.2f\t%.0f\t%.1f\t%.1f\n", r.Index, r.Magnitude, r.Radius, r.X, r.Y)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// Replanning bumps the seed so every R gives a new layout.
	next := *cfg
	build := func() (*sim.Field, error) {
		c := next
		next.Seed++
		exp := experiment.New(&c, nil)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}
		return exp.Field(), nil
	}

	return viz.Run(build, cfg.Dt)
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	counts := []int{10, 50, 100, 200}
	const frames = 600

	fmt.Printf("benchmarking %gx%g arena\n\n", cfg.Arena.Width, cfg.Arena.Height)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODIES\tPLAN\tFALLBACK\tFRAMES\tFRAMES/SEC")

	for _, n := range counts {
		c := *cfg
		c.Bodies = n
		c.Magnitudes.Values = nil
		exp := experiment.New(&c, nil)

		start := time.Now()
		if err := exp.Setup([]sim.Metric{}); err != nil {
			return err
		}
		planned := time.Since(start)

		field := exp.Field()
		start = time.Now()
		for i := 0; i < frames; i++ {
			field.Tick(c.Dt)
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%v\t%t\t%d\t%.0f\n",
			n, planned, field.Placement().Fallback, frames, frames/elapsed.Seconds())
	}

	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBODIES\tARENA\tSOURCE\tSCRIPT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%gx%g\t%s\t%d events\n",
			name, p.Count(), p.Arena.Width, p.Arena.Height, p.Source, len(p.Script))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nmagnitude sources:")
	for _, name := range experiment.NewRegistry().ListSources() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
