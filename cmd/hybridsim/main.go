package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/hybridsim/internal/config"
	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/experiment"
	"github.com/san-kum/hybridsim/internal/hybrid"
	"github.com/san-kum/hybridsim/internal/metrics"
	"github.com/san-kum/hybridsim/internal/model"
	"github.com/san-kum/hybridsim/internal/storage"
	"github.com/san-kum/hybridsim/internal/viz"
)

var (
	dataDir     string
	logLevel    string
	preset      string
	seed        int64
	integrator  string
	tau         float64
	progress    bool
	metricsFile string
	species     []string
	outFile     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "hybridsim",
		Short:        "hybrid stochastic/deterministic reaction network simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hybridsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [file]",
		Short: "simulate a network and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "use a preset network")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: config seed, else time)")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "integrator (euler, rk4, rk45)")
	runCmd.Flags().Float64Var(&tau, "tau", 0, "tau step override")
	runCmd.Flags().BoolVar(&progress, "progress", false, "show live progress")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write kernel diagnostics in Prometheus text format")

	evalCmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "evaluate the derivative of the initial state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  evalDerivative,
	}
	evalCmd.Flags().StringVar(&preset, "preset", "", "use a preset network")

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
	plotCmd.Flags().StringSliceVar(&species, "species", nil, "species to plot (default: all)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available preset networks",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, evalCmd, listCmd, plotCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func loadConfig(args []string) (*config.Config, error) {
	switch {
	case preset != "" && len(args) > 0:
		return nil, fmt.Errorf("use either a file or --preset, not both")
	case preset != "":
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		return cfg, nil
	case len(args) == 1:
		cfg, err := config.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("a network file or --preset is required")
	}
}

func openStore() (*storage.Store, func(), error) {
	idx, err := storage.OpenIndex(filepath.Join(dataDir, "index.db"))
	if err != nil {
		return nil, nil, err
	}
	st := storage.New(filepath.Join(dataDir, "runs"), storage.WithIndex(idx))
	if err := st.Init(); err != nil {
		_ = idx.Close()
		return nil, nil, err
	}
	return st, func() { _ = idx.Close() }, nil
}

type observerFunc func(x dynamo.State, t float64)

func (f observerFunc) OnStep(x dynamo.State, t float64) { f(x, t) }

func runSimulation(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	} else if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if integrator != "" {
		cfg.Integrator = integrator
	}
	if tau > 0 {
		cfg.TauStep = tau
	}

	reactionNames := make([]string, len(cfg.Reactions))
	for j, r := range cfg.Reactions {
		reactionNames[j] = r.Name
	}
	reg := prometheus.NewRegistry()
	diag, err := metrics.NewDiagnostics(reg, logger, reactionNames)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.NewRegistry())
	if err := exp.Setup(logger, diag); err != nil {
		return err
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	simCfg := cfg.SimConfig()
	logger.Info("running simulation",
		"network", cfg.Name, "integrator", cfg.Integrator, "seed", cfg.Seed,
		"tau", simCfg.TauStep, "duration", simCfg.Duration)
	start := time.Now()

	var result *dynamo.Result
	if progress {
		result, err = runWithProgress(cmd.Context(), exp, simCfg.Duration)
	} else {
		result, err = exp.Run(cmd.Context())
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	meta := &storage.RunMetadata{
		Network:    cfg.Name,
		Seed:       cfg.Seed,
		Dt:         simCfg.Dt,
		TauStep:    simCfg.TauStep,
		Duration:   simCfg.Duration,
		Increment:  simCfg.Increment,
		Integrator: cfg.Integrator,
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("run " + runID))
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("tau steps: %d (rejected %d)\n", result.StepsTaken, result.Rejected)

	fmt.Println("\n" + viz.HeaderStyle.Render("firings"))
	for j, n := range result.Firings {
		fmt.Printf("  %s %s\n", viz.MetricLabel.Render(fmt.Sprintf("%-16s", reactionNames[j])), viz.MetricValue.Render(fmt.Sprint(n)))
	}

	fmt.Println("\n" + viz.HeaderStyle.Render("metrics"))
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s %s\n", viz.MetricLabel.Render(fmt.Sprintf("%-28s", name)), viz.MetricValue.Render(fmt.Sprintf("%.6g", result.Metrics[name])))
	}
	return nil
}

func runWithProgress(ctx context.Context, exp *experiment.Experiment, duration float64) (*dynamo.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(viz.NewProgress(exp.Network().Name, exp.Network().Labels(), duration))
	exp.Solver().AddObserver(observerFunc(func(x dynamo.State, t float64) {
		p.Send(viz.ProgressMsg{Time: t, Values: x.Clone()})
	}))

	var result *dynamo.Result
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = exp.Run(ctx)
		p.Send(viz.DoneMsg{Err: runErr})
	}()

	_, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return nil, err
	}
	return result, runErr
}

func evalDerivative(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.NewRegistry())
	if err := exp.Setup(logger, nil); err != nil {
		return err
	}
	s := exp.Solver()
	net := exp.Network()

	counters := &hybrid.Counters{}
	data, err := s.NewIntegratorData(counters)
	if err != nil {
		return err
	}
	layout := data.Layout()
	y := s.InitialState(make([]float64, layout.NumReactions))
	dydt := make([]float64, layout.Len())
	if status := hybrid.RHS(0, y, dydt, data); status != hybrid.StatusOK {
		return fmt.Errorf("derivative evaluation failed (status %d)", status)
	}

	speciesModes := model.SpeciesModes(net)
	reactionModes := s.ReactionModes()

	fmt.Println(viz.Title.Render(net.Name) + viz.Subtle.Render(" t=0"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPECIES\tMODE\tVALUE\tPOPULATION\tDY/DT")
	for i, sp := range net.Species {
		mode := speciesModes[i].String()
		if sp.Boundary {
			mode += " (boundary)"
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%d\t%g\n", sp.Name, mode, data.Concentrations[i], data.Populations[i], dydt[i])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "REACTION\tMODE\tOFFSET RATE")
	for j, r := range net.Reactions {
		fmt.Fprintf(w, "%s\t%s\t%g\n", r.Name, reactionModes[j], dydt[layout.NumSpecies+j])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if counters.NegativePropensities > 0 || counters.UndefinedModes > 0 {
		fmt.Println(viz.StatusFailed.Render(fmt.Sprintf("negative propensities: %d, undefined modes: %d",
			counters.NegativePropensities, counters.UndefinedModes)))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNETWORK\tTIME\tDURATION\tTAU\tINTEG\tSTEPS\tREJECTED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.4f\t%s\t%d\t%d\n",
			run.ID,
			run.Network,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.TauStep,
			run.Integrator,
			run.Steps,
			run.Rejected,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	labels, states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	selected := make([]int, 0, len(labels))
	if len(species) == 0 {
		for i := range labels {
			selected = append(selected, i)
		}
	} else {
		for _, name := range species {
			i := indexOf(labels, name)
			if i < 0 {
				return fmt.Errorf("unknown species %q (available: %s)", name, strings.Join(labels, ", "))
			}
			selected = append(selected, i)
		}
	}

	fmt.Println(viz.Title.Render("run " + meta.ID))
	fmt.Printf("network: %s\n", meta.Network)
	fmt.Printf("samples: %d\n\n", len(states))

	for _, idx := range selected {
		data := make([]float64, len(states))
		for i := range states {
			if idx < len(states[i]) {
				data[i] = states[i][idx]
			}
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(labels[idx]+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func indexOf(labels []string, name string) int {
	for i, l := range labels {
		if l == name {
			return i
		}
	}
	return -1
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if outFile == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.ExportJSON(f, args[0]); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSPECIES\tREACTIONS\tINTEGRATOR\tDURATION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		speciesNames := make([]string, len(cfg.Species))
		for i, sp := range cfg.Species {
			speciesNames[i] = sp.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.1f\n",
			name, strings.Join(speciesNames, ","), len(cfg.Reactions), cfg.Integrator, cfg.Duration)
	}
	return w.Flush()
}
