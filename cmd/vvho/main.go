package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/san-kum/vvho/internal/config"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string
	parallel   int
	noPlot     bool
	useTUI     bool

	trialDt    float64
	trialVel   float64
	trialTotal float64
	trialPos   float64

	previewWidth int
)

// main registers the commands and runs the default sweep when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:          "vvho",
		Short:        "velocity verlet harmonic oscillator sweeps",
		SilenceUsage: true,
		RunE:         runSweep,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run every time step and velocity combination",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	sweepCmd.Flags().IntVar(&parallel, "parallel", config.DefaultParallel, "concurrent trials (0 = one per cpu)")
	sweepCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip chart rendering")
	sweepCmd.Flags().BoolVar(&useTUI, "tui", false, "show a progress view")

	trialCmd := &cobra.Command{
		Use:   "trial",
		Short: "run one trial and preview it in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runTrial,
	}
	trialCmd.Flags().Float64Var(&trialDt, "dt", 0.01, "timestep")
	trialCmd.Flags().Float64Var(&trialVel, "vel", 1.0, "initial velocity")
	trialCmd.Flags().Float64Var(&trialTotal, "time", config.DefaultTotalTime, "total time")
	trialCmd.Flags().Float64Var(&trialPos, "pos", config.DefaultPosStart, "initial position")
	trialCmd.Flags().IntVar(&previewWidth, "width", 80, "preview width")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored sweeps",
		Args:  cobra.NoArgs,
		RunE:  listSweeps,
	}

	showCmd := &cobra.Command{
		Use:   "show [sweep_id]",
		Short: "summarize a stored sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  showSweep,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [sweep_id]",
		Short: "re-render charts from stored data files",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSweep,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [file.dat]",
		Short: "frequency and energy analysis of a data file",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeFile,
	}
	analyzeCmd.Flags().IntVar(&previewWidth, "width", 80, "preview width")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list sweep presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(sweepCmd, trialCmd, listCmd, showCmd, plotCmd, analyzeCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newLogger() log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	allow := level.AllowInfo()
	if verbose {
		allow = level.AllowDebug()
	}
	return level.NewFilter(logger, allow)
}

// loadSweepConfig starts from the defaults, applies a preset, then a
// config file, then flags that were set explicitly.
func loadSweepConfig(cmd *cobra.Command) (*config.Config, error) {
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

	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = parallel
	}
	if noPlot {
		cfg.Plot = false
	}

	return cfg, cfg.Validate()
}
