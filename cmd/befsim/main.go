package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/befsim/internal/config"
)

var (
	dataDir  string
	logLevel string
	noColor  bool

	configFile  string
	preset      string
	species     int
	connectance float64
	links       int
	stop        float64
	steps       int
	integrator  string
	seed        int64
	temperature float64
	rewire      string
	adaptive    bool
	metricNames []string
	useCatalog  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "befsim",
		Short:         "bioenergetic food web simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".befsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured logs")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "generate a food web and simulate it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().BoolVar(&useCatalog, "catalog", true, "index the run in the sqlite catalog")
	runCmd.Flags().Bool("plot", false, "plot the trajectory when done")

	nicheCmd := &cobra.Command{
		Use:   "niche",
		Short: "draw a niche model food web as CSV",
		Args:  cobra.NoArgs,
		RunE:  generateNiche,
	}
	nicheCmd.Flags().IntVar(&species, "species", config.DefaultSpecies, "number of species")
	nicheCmd.Flags().Float64Var(&connectance, "connectance", config.DefaultConnectance, "target connectance")
	nicheCmd.Flags().IntVar(&links, "links", 0, "target link count, overrides connectance")
	nicheCmd.Flags().Float64("tolerance", config.DefaultTolerance, "accepted deviation from the target")
	nicheCmd.Flags().String("toltype", "abs", "tolerance kind, abs or rel")
	nicheCmd.Flags().Bool("allow-cycles", false, "accept webs with feeding cycles")
	nicheCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	nicheCmd.Flags().StringP("out", "o", "", "output file (default stdout)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().String("status", "", "only runs with this status (uses the catalog)")
	listCmd.Flags().Float64("min-persistence", 0, "only runs at least this persistent (uses the catalog)")
	listCmd.Flags().Int("limit", 0, "maximum number of catalog rows")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored biomass trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().Bool("log", false, "log10 biomass axis")
	plotCmd.Flags().IntSlice("species", nil, "species to plot (default all)")
	plotCmd.Flags().Bool("total", false, "add total biomass")
	plotCmd.Flags().Int("height", 16, "plot height")
	plotCmd.Flags().Int("width", 72, "plot width")
	plotCmd.Flags().Bool("web", false, "also draw the final food web")
	plotCmd.Flags().String("svg", "", "write the trajectory as SVG to this file")
	plotCmd.Flags().String("web-svg", "", "write the final food web as SVG to this file")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringP("out", "o", "", "output file (default stdout)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run many seeds of one configuration in parallel",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addModelFlags(ensembleCmd)
	ensembleCmd.Flags().Int("runs", 10, "number of runs")
	ensembleCmd.Flags().Int("limit", 0, "concurrent runs (default GOMAXPROCS)")
	ensembleCmd.Flags().Bool("save", false, "store every run")
	ensembleCmd.Flags().BoolVar(&useCatalog, "catalog", true, "index saved runs in the sqlite catalog")

	sweepCmd := &cobra.Command{
		Use:     "sweep",
		Short:   "run an ensemble at every point of a parameter grid",
		Example: "  befsim sweep --preset chain --param T=283.15:303.15:5 --param K=1,2 --runs 5",
		Args:    cobra.NoArgs,
		RunE:    runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().StringArray("param", nil, "swept parameter, name=v1,v2 or name=lo:hi:step (repeatable)")
	sweepCmd.Flags().Int("runs", 5, "runs per grid point")
	sweepCmd.Flags().Int("limit", 0, "concurrent runs (default GOMAXPROCS)")
	sweepCmd.Flags().String("best", "persistence", "summary field used to pick the best point")
	sweepCmd.Flags().Bool("minimize", false, "pick the smallest value instead of the largest")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "simulate with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addModelFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	summaryCmd := &cobra.Command{
		Use:   "summary [run_id]",
		Short: "show the summary of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showSummary,
	}
	summaryCmd.Flags().Bool("json", false, "print JSON instead of a table")

	rootCmd.AddCommand(runCmd, nicheCmd, listCmd, plotCmd, exportJSONCmd, ensembleCmd, sweepCmd, liveCmd, presetsCmd, summaryCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("befsim failed", "err", err)
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.IntVar(&species, "species", config.DefaultSpecies, "number of species")
	f.Float64Var(&connectance, "connectance", config.DefaultConnectance, "target connectance")
	f.IntVar(&links, "links", 0, "target link count, overrides connectance")
	f.Float64Var(&stop, "stop", config.DefaultStop, "end time")
	f.IntVar(&steps, "steps", config.DefaultSteps, "recorded checkpoints")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "euler, rk4 or rk45")
	f.Int64Var(&seed, "seed", 1, "random seed")
	f.Float64Var(&temperature, "temperature", 0, "temperature in kelvin")
	f.StringVar(&rewire, "rewire", "none", "rewiring method: none, ADBM, Gilljam or stan")
	f.BoolVar(&adaptive, "adaptive", false, "adaptive step size")
	f.StringSliceVar(&metricNames, "metrics", nil, "metrics to record (default all)")
}

func setupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	})))
	return nil
}
