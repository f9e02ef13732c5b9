package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/befsim/internal/config"
	"github.com/san-kum/befsim/internal/experiment"
	"github.com/san-kum/befsim/internal/export"
	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/metrics"
	"github.com/san-kum/befsim/internal/optim"
	"github.com/san-kum/befsim/internal/params"
	"github.com/san-kum/befsim/internal/sim"
	"github.com/san-kum/befsim/internal/storage"
	"github.com/san-kum/befsim/internal/viz"
)

const catalogFile = "catalog.db"

// loadConfig layers defaults, preset, config file and explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.FindPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (see befsim presets)", preset)
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("species") {
		cfg.Network.Species = species
		cfg.Network.Matrix = nil
		cfg.Network.File = ""
	}
	if f.Changed("connectance") {
		cfg.Network.Connectance = connectance
		cfg.Network.Links = 0
	}
	if f.Changed("links") {
		cfg.Network.Links = links
	}
	if f.Changed("stop") {
		cfg.Simulation.Stop = stop
	}
	if f.Changed("steps") {
		cfg.Simulation.Steps = steps
	}
	if f.Changed("integrator") {
		cfg.Simulation.Integrator = integrator
	}
	if f.Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if f.Changed("adaptive") {
		cfg.Simulation.Adaptive = adaptive
	}
	if f.Changed("temperature") {
		cfg.Model.T = temperature
	}
	if f.Changed("rewire") {
		cfg.Model.RewireMethod = params.RewireMethod(rewire)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runName() string {
	switch {
	case preset != "":
		return preset
	case configFile != "":
		return filepath.Base(configFile)
	}
	return "run"
}

func newExperiment(cfg *config.Config) *experiment.Experiment {
	exp := experiment.New(cfg)
	if len(metricNames) > 0 {
		exp.SetMetrics(metricNames)
	}
	return exp
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	return st, st.Init()
}

// saveOutcome stores a run and, when enabled, indexes it in the catalog.
func saveOutcome(ctx context.Context, st *storage.Store, cat *storage.Catalog, cfg *config.Config, out *experiment.Outcome) (*storage.RunMetadata, error) {
	meta, err := st.Save(storage.Record{
		Name:       runName(),
		Seed:       out.Seed,
		Integrator: cfg.Simulation.Integrator,
		Start:      cfg.Simulation.Start,
		Stop:       cfg.Simulation.Stop,
		Options:    cfg.Model,
		Result:     out.Result,
		Summary:    out.Summary,
	})
	if err != nil {
		return nil, err
	}
	if cat != nil {
		if err := cat.Index(ctx, meta); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	return meta, nil
}

func openCatalog(ctx context.Context) (*storage.Catalog, error) {
	if !useCatalog {
		return nil, nil
	}
	cat := storage.NewCatalog(filepath.Join(dataDir, catalogFile))
	if err := cat.Init(ctx); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return cat, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	cat, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	if cat != nil {
		defer cat.Close()
	}

	slog.Info("running simulation", "species", cfg.Network.Species, "stop", cfg.Simulation.Stop,
		"integrator", cfg.Simulation.Integrator, "rewire", cfg.Model.RewireMethod, "seed", cfg.Simulation.Seed)
	start := time.Now()

	out, err := newExperiment(cfg).Run(ctx)
	if err != nil {
		return err
	}
	meta, err := saveOutcome(ctx, st, cat, cfg, out)
	if err != nil {
		return err
	}

	slog.Info("run finished", "id", meta.ID, "status", out.Result.Status, "elapsed", time.Since(start))
	fmt.Println(viz.SummaryPanel(meta.ID, out.Summary))

	if ok, _ := cmd.Flags().GetBool("plot"); ok {
		opts := viz.DefaultPlotOptions()
		opts.Total = true
		fmt.Println(viz.PlotBiomass(out.Result.Biomass, opts))
	}
	return nil
}

func generateNiche(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	tol, _ := f.GetFloat64("tolerance")
	tolType, _ := f.GetString("toltype")
	allowCycles, _ := f.GetBool("allow-cycles")
	outPath, _ := f.GetString("out")

	target := foodweb.ConnectanceTarget(connectance)
	if links > 0 {
		target = foodweb.LinkTarget(links)
	}
	opts := foodweb.DefaultGenerateOptions()
	opts.Tolerance = tol
	opts.Kind = foodweb.ToleranceKind(tolType)
	opts.Acyclic = !allowCycles

	web, err := foodweb.NicheModel(rand.New(rand.NewSource(seed)), species, target, opts)
	if err != nil {
		return err
	}
	slog.Info("generated food web", "species", web.Size(), "links", foodweb.Links(web.A),
		"connectance", foodweb.Connectance(web.A), "seed", seed)

	var w io.Writer = os.Stdout
	if outPath != "" {
		file, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	return foodweb.WriteCSV(w, web.A)
}

func listRuns(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	if f.Changed("status") || f.Changed("min-persistence") || f.Changed("limit") {
		return queryCatalog(cmd)
	}

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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSPECIES\tLINKS\tSTATUS\tPERSIST\tREWIRED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.3f\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Species,
			run.Links,
			run.Status,
			run.Summary.Persistence,
			run.Rewirings,
		)
	}
	return w.Flush()
}

func queryCatalog(cmd *cobra.Command) error {
	f := cmd.Flags()
	status, _ := f.GetString("status")
	minPersistence, _ := f.GetFloat64("min-persistence")
	limit, _ := f.GetInt("limit")

	useCatalog = true
	cat, err := openCatalog(cmd.Context())
	if err != nil {
		return err
	}
	defer cat.Close()

	entries, err := cat.Query(cmd.Context(), storage.Filter{
		Status:         sim.Status(status),
		MinPersistence: minPersistence,
		Limit:          limit,
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSEED\tSPECIES\tSTATUS\tPERSIST\tREWIRED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.3f\t%d\n",
			e.ID, e.Name, e.Created.Local().Format("2006-01-02 15:04:05"),
			e.Seed, e.Species, e.Status, e.Persistence, e.Rewirings)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	f := cmd.Flags()

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, biomass, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(biomass) == 0 {
		return errors.New("no data to plot")
	}

	opts := viz.DefaultPlotOptions()
	opts.Log, _ = f.GetBool("log")
	opts.Species, _ = f.GetIntSlice("species")
	opts.Total, _ = f.GetBool("total")
	opts.Height, _ = f.GetInt("height")
	opts.Width, _ = f.GetInt("width")

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("status: %s\n", meta.Status)
	fmt.Printf("checkpoints: %d\n\n", len(biomass))
	fmt.Println(viz.PlotBiomass(biomass, opts))

	if svgPath, _ := f.GetString("svg"); svgPath != "" {
		svgOpts := export.DefaultSVGOptions()
		svgOpts.Log = opts.Log
		if err := writeFile(svgPath, func(w io.Writer) error {
			return export.BiomassSVG(w, times, biomass, svgOpts)
		}); err != nil {
			return err
		}
		slog.Info("wrote svg", "path", svgPath)
	}

	web, _ := f.GetBool("web")
	webSVG, _ := f.GetString("web-svg")
	if !web && webSVG == "" {
		return nil
	}
	a, err := st.LoadNetwork(runID)
	if err != nil {
		return err
	}
	alive := make([]bool, len(a))
	last := biomass[len(biomass)-1]
	for i := range alive {
		alive[i] = i < len(last) && last[i] > meta.Options.ExtinctionThreshold
	}
	canvas := viz.DrawWeb(a, viz.LayoutWeb(&foodweb.FoodWeb{A: a}), alive, 40, 12)
	if web {
		fmt.Println()
		fmt.Print(canvas.String())
	}
	if webSVG != "" {
		if err := writeFile(webSVG, func(w io.Writer) error { return export.CanvasSVG(w, canvas, 6) }); err != nil {
			return err
		}
		slog.Info("wrote svg", "path", webSVG)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("out")

	var w io.Writer = os.Stdout
	if outPath != "" {
		file, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	return storage.New(dataDir).ExportJSON(w, args[0])
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	f := cmd.Flags()
	numRuns, _ := f.GetInt("runs")
	limit, _ := f.GetInt("limit")
	save, _ := f.GetBool("save")
	if numRuns < 1 {
		return fmt.Errorf("need at least one run, got %d", numRuns)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ens := experiment.NewEnsemble(cfg, numRuns, cfg.Simulation.Seed)
	ens.SetLimit(limit)
	start := time.Now()
	outcomes, err := ens.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("ensemble finished", "runs", numRuns, "elapsed", time.Since(start))

	var (
		st  *storage.Store
		cat *storage.Catalog
	)
	if save {
		if st, err = openStore(); err != nil {
			return err
		}
		if cat, err = openCatalog(ctx); err != nil {
			return err
		}
		if cat != nil {
			defer cat.Close()
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTATUS\tRICHNESS\tPERSIST\tSTABILITY\tBIOMASS\tEXTINCT\tID")
	var persistence float64
	completed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			fmt.Fprintf(w, "%d\terror\t\t\t\t\t\t%v\n", out.Seed, out.Err)
			continue
		}
		id := ""
		if save {
			meta, err := saveOutcome(ctx, st, cat, cfg, out)
			if err != nil {
				return err
			}
			id = meta.ID
		}
		s := out.Summary
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%.3f\t%.4f\t%.4g\t%d\t%s\n",
			out.Seed, s.Status, s.Richness, s.Persistence, s.Stability, s.Biomass, s.Extinctions, id)
		persistence += s.Persistence
		completed++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if completed > 0 {
		fmt.Printf("\nmean persistence: %.3f over %d runs\n", persistence/float64(completed), completed)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	f := cmd.Flags()
	specs, _ := f.GetStringArray("param")
	runs, _ := f.GetInt("runs")
	limit, _ := f.GetInt("limit")
	field, _ := f.GetString("best")
	minimize, _ := f.GetBool("minimize")
	if len(specs) == 0 {
		return errors.New("need at least one --param")
	}
	if _, err := (metrics.Summary{}).Get(field); err != nil {
		return err
	}

	axes := make([]optim.Axis, 0, len(specs))
	for _, s := range specs {
		a, err := optim.ParseAxis(s)
		if err != nil {
			return err
		}
		axes = append(axes, a)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(cfg, axes, runs)
	if err != nil {
		return err
	}
	g.SetLimit(limit)

	slog.Info("sweeping", "points", g.Size(), "runs", runs)
	points, err := g.Search(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "POINT\tRUNS\tFAILED"
	for _, name := range metrics.SummaryFields {
		header += "\t" + strings.ToUpper(name)
	}
	fmt.Fprintln(w, header)
	for _, p := range points {
		if p.Err != nil {
			fmt.Fprintf(w, "%s\tinvalid: %v\n", p, p.Err)
			continue
		}
		line := fmt.Sprintf("%s\t%d\t%d", p, p.Runs, p.Failed)
		for _, name := range metrics.SummaryFields {
			line += fmt.Sprintf("\t%.4g", p.Means[name])
		}
		fmt.Fprintln(w, line)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := optim.Best(points, field, !minimize); ok {
		fmt.Printf("\nbest %s: %.4g at %s\n", field, best.Means[field], best)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Generate the web up front so the view can draw it; the experiment
	// regenerates the same web from the same seed.
	web, err := cfg.FoodWeb(rand.New(rand.NewSource(cfg.Simulation.Seed)))
	if err != nil {
		return err
	}

	// Logs would tear the alternate screen.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	model := viz.NewLiveModel(runName(), cfg.Model.ExtinctionThreshold).WithWeb(web)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	exp := newExperiment(cfg)
	exp.SetLogger(logger)
	exp.AddObserver(viz.Observer(p.Send))

	done := make(chan struct{})
	go func() {
		defer close(done)
		out, err := exp.Run(ctx)
		msg := viz.DoneMsg{Err: err}
		if out != nil {
			msg.Result = out.Result
			msg.Summary = out.Summary
		}
		p.Send(msg)
	}()

	final, err := p.Run()
	cancel()
	<-done
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := final.(viz.LiveModel); ok && m.Done() {
		return m.Err()
	}
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.FindPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset %q", args[0])
		}
		return config.Encode(os.Stdout, cfg)
	}
	for _, group := range config.ListGroups() {
		fmt.Printf("%s:\n", group)
		for _, name := range config.ListPresets(group) {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}

func showSummary(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta.Summary)
	}

	fmt.Println(viz.SummaryPanel(meta.ID, meta.Summary))
	if len(meta.Extinctions) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SPECIES\tEXTINCT AT")
		for _, e := range meta.Extinctions {
			fmt.Fprintf(w, "s%d\t%.3f\n", e.Species, e.Time)
		}
		return w.Flush()
	}
	return nil
}
