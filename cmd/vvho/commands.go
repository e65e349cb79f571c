package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/vvho/internal/analysis"
	"github.com/san-kum/vvho/internal/config"
	"github.com/san-kum/vvho/internal/integrators"
	"github.com/san-kum/vvho/internal/metrics"
	"github.com/san-kum/vvho/internal/physics"
	"github.com/san-kum/vvho/internal/render"
	"github.com/san-kum/vvho/internal/storage"
	"github.com/san-kum/vvho/internal/sweep"
	"github.com/san-kum/vvho/internal/viz"
)

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadSweepConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	run, err := st.Begin(cfg.TotalTime, cfg.PosStart, cfg.TimeSteps, cfg.Velocities)
	if err != nil {
		return err
	}

	var logger log.Logger = log.NewNopLogger()
	if !useTUI {
		logger = log.With(newLogger(), "sweep", run.ID())
	}

	driver := sweep.NewDriver(
		sweep.OptionsFromConfig(cfg),
		integrators.NewVerlet(),
		&sweep.FileExporter{Run: run, Plot: cfg.Plot},
		logger,
	)

	var reports []sweep.Report
	if useTUI {
		reports, err = runWithProgress(cmd.Context(), driver, cfg.Trials())
	} else {
		reports, err = driver.Run(cmd.Context())
	}

	// The manifest is written even for a failed sweep so finished trials
	// stay listed.
	manifest, closeErr := run.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	fmt.Println(viz.HeaderStyle.Render("sweep " + manifest.ID))
	fmt.Println(viz.ReportTable(reports))
	fmt.Println(viz.Subtle.Render("data: " + run.Dir()))
	return nil
}

func runWithProgress(ctx context.Context, driver *sweep.Driver, total int) ([]sweep.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := viz.NewFeed(total)
	driver.AddObserver(feed)

	type outcome struct {
		reports []sweep.Report
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		reports, err := driver.Run(ctx)
		close(feed)
		done <- outcome{reports, err}
	}()

	if _, err := tea.NewProgram(viz.NewProgressModel(total, feed, cancel)).Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}

	out := <-done
	return out.reports, out.err
}

func runTrial(cmd *cobra.Command, args []string) error {
	opts := sweep.Options{
		TotalTime:  trialTotal,
		PosStart:   trialPos,
		TimeSteps:  []float64{trialDt},
		Velocities: []float64{trialVel},
		Parallel:   1,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger := newLogger()
	driver := sweep.NewDriver(opts, integrators.NewVerlet(), nil, logger)
	p := sweep.Params{TimeStep: trialDt, Velocity: trialVel}
	res := driver.RunTrial(p)
	level.Debug(logger).Log("msg", "trial done", "dt", trialDt, "v", trialVel, "steps", res.Steps)

	var osc physics.Harmonic
	exactErr := metrics.MaxAbsError(res.Forward, func(t float64) float64 {
		return osc.Exact(trialPos, trialVel, t)
	})
	taylorErr := metrics.MaxAbsError(res.Taylor, func(t float64) float64 {
		return osc.Exact(trialPos, trialVel, t)
	})

	fmt.Println(viz.MetricsPanel(p.String(), []viz.Metric{
		{Label: "steps", Value: float64(res.Steps)},
		{Label: "reverse steps", Value: float64(res.ReverseSteps)},
		{Label: "max position (T)", Value: res.Summary.MaxPosition},
		{Label: "max energy (T)", Value: res.Summary.MaxEnergy},
		{Label: "mean energy (T)", Value: res.Summary.MeanEnergy},
		{Label: "energy drift", Value: res.Summary.EnergyDrift},
		{Label: "relative drift", Value: metrics.RelativeDrift(res.Forward)},
		{Label: "return error", Value: res.Summary.ReturnError},
		{Label: "max |x - exact|", Value: exactErr},
		{Label: "max |xT - exact|", Value: taylorErr},
	}))

	if !res.Finite {
		fmt.Println(viz.StatusWarn.Render("trajectory diverged"))
	}

	if preview := viz.TrajectoryPreview(res.Forward, previewWidth, 10); preview != "" {
		fmt.Println()
		fmt.Println(preview)
	}
	return nil
}

func listSweeps(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	sweeps, err := st.List()
	if err != nil {
		return err
	}

	if len(sweeps) == 0 {
		fmt.Println("no sweeps found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tTRIALS\tTOTAL\tDT\tV")

	for _, m := range sweeps {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%v\t%v\n",
			m.ID,
			m.Timestamp.Format("2006-01-02 15:04:05"),
			len(m.Trials),
			m.TotalTime,
			m.TimeSteps,
			m.Velocities,
		)
	}

	return w.Flush()
}

// reportsFromManifest rebuilds trial reports from stored records.
func reportsFromManifest(m *storage.Manifest) []sweep.Report {
	reports := make([]sweep.Report, 0, len(m.Trials))
	for _, t := range m.Trials {
		reports = append(reports, sweep.Report{
			Params:       sweep.Params{TimeStep: t.TimeStep, Velocity: t.Velocity},
			Steps:        t.Steps,
			ReverseSteps: t.ReverseSteps,
			Summary:      metrics.SummaryFromMap(t.Metrics),
			Finite:       !t.Diverged,
		})
	}
	return reports
}

func showSweep(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	m, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render("sweep " + m.ID))
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("%s  total time %g  x0 %g",
		m.Timestamp.Format("2006-01-02 15:04:05"), m.TotalTime, m.PosStart)))
	fmt.Println(viz.ReportTable(reportsFromManifest(m)))
	return nil
}

func plotSweep(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	m, err := st.Load(args[0])
	if err != nil {
		return err
	}

	dir := st.Dir(m.ID)
	rendered := 0
	for _, t := range m.Trials {
		if t.Steps == 0 {
			continue
		}
		s := metrics.SummaryFromMap(t.Metrics)
		spec := render.Spec{
			Title:           fmt.Sprintf("dt = %g, v0 = %g", t.TimeStep, t.Velocity),
			Forward:         filepath.Join(dir, t.Forward),
			Reverse:         filepath.Join(dir, t.Reverse),
			Taylor:          filepath.Join(dir, t.Taylor),
			PosStart:        m.PosStart,
			InitialVelocity: t.Velocity,
			MeanEnergy:      s.MeanEnergy,
			MaxPosition:     s.MaxPosition,
			MaxEnergy:       s.MaxEnergy,
			Output:          filepath.Join(dir, storage.ChartName(t.Forward)),
		}
		// Metrics dropped as non-finite read back as zero; a diverged
		// trial always gets automatic axes.
		if t.Diverged {
			spec.MaxPosition = math.Inf(1)
			spec.MaxEnergy = math.Inf(1)
		}
		if err := render.Render(spec); err != nil {
			return fmt.Errorf("trial dt=%g v=%g: %w", t.TimeStep, t.Velocity, err)
		}
		rendered++
		fmt.Println(viz.Subtle.Render(spec.Output))
	}

	fmt.Printf("rendered %d charts\n", rendered)
	return nil
}

func analyzeFile(cmd *cobra.Command, args []string) error {
	traj, err := storage.ReadTrajectory(args[0])
	if err != nil {
		return err
	}

	if traj.Len() < 4 {
		return fmt.Errorf("%s: need at least 4 samples, got %d", args[0], traj.Len())
	}

	dt := math.Abs(traj.Time[1] - traj.Time[0])
	freq := analysis.DominantFrequency(traj.Position, dt)

	panel := []viz.Metric{
		{Label: "samples", Value: float64(traj.Len())},
		{Label: "dt", Value: dt},
		{Label: "dominant frequency", Value: freq},
	}
	if freq > 0 {
		panel = append(panel, viz.Metric{Label: "spectral period", Value: 1 / freq})
	}
	if period, ok := analysis.Period(traj); ok {
		panel = append(panel, viz.Metric{Label: "crossing period", Value: period})
	}
	panel = append(panel,
		viz.Metric{Label: "energy drift", Value: metrics.EnergyDrift(traj)},
		viz.Metric{Label: "relative drift", Value: metrics.RelativeDrift(traj)},
	)
	fmt.Println(viz.MetricsPanel(filepath.Base(args[0]), panel))

	ps := analysis.PowerSpectrum(traj.Position)
	if spectrum := viz.Preview("power spectrum (x)", previewWidth, 12,
		viz.Series{Name: "|X(f)|", Values: ps[:max(len(ps)/4, 1)], Color: asciigraph.Green}); spectrum != "" {
		fmt.Println()
		fmt.Println(spectrum)
	}

	if portrait := analysis.NewPhasePortrait(traj, 2000).ASCII(previewWidth/2, 16); portrait != "" {
		fmt.Println()
		fmt.Println(viz.Title.Render("phase portrait (x, v)"))
		fmt.Print(portrait)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTRIALS\tTOTAL\tX0\tDT\tV")

	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%v\t%v\n",
			name, cfg.Trials(), cfg.TotalTime, cfg.PosStart, cfg.TimeSteps, cfg.Velocities)
	}

	return w.Flush()
}
