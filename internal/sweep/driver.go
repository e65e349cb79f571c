package sweep

import (
	"context"
	"runtime"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/vvho/internal/dynamo"
	"github.com/san-kum/vvho/internal/metrics"
)

type Driver struct {
	opts      Options
	integ     dynamo.Integrator
	exporter  Exporter
	logger    log.Logger
	observers []Observer
	mu        sync.Mutex
}

// NewDriver returns a driver for opts. A nil exporter skips export and a
// nil logger discards log output.
func NewDriver(opts Options, integ dynamo.Integrator, exporter Exporter, logger log.Logger) *Driver {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Driver{
		opts:     opts,
		integ:    integ,
		exporter: exporter,
		logger:   log.With(logger, "component", "sweep"),
	}
}

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// StepCount is the forward grid length for a run of total time at step
// dt. The conversion truncates.
func StepCount(total, dt float64) int {
	return int(total / dt)
}

// Params lists the trials in sweep order, time step major.
func (d *Driver) Params() []Params {
	params := make([]Params, 0, len(d.opts.TimeSteps)*len(d.opts.Velocities))
	for _, dt := range d.opts.TimeSteps {
		for _, v := range d.opts.Velocities {
			params = append(params, Params{TimeStep: dt, Velocity: v})
		}
	}
	return params
}

type grids struct {
	forward dynamo.Grid
	reverse dynamo.Grid
}

func (d *Driver) gridsFor(dt float64) grids {
	n := StepCount(d.opts.TotalTime, dt)
	return grids{
		forward: dynamo.ForwardGrid(n, dt),
		reverse: dynamo.ReverseGrid(n/2, dt),
	}
}

// RunTrial integrates a single trial without exporting it.
func (d *Driver) RunTrial(p Params) *TrialResult {
	return d.runTrial(p, d.gridsFor(p.TimeStep))
}

func (d *Driver) runTrial(p Params, g grids) *TrialResult {
	ic := dynamo.InitialConditions{Pos: d.opts.PosStart, Vel: p.Velocity, Mode: dynamo.Autonomous}
	fwd := d.integ.Integrate(ic, p.TimeStep, g.forward)

	ic.Mode = dynamo.TimeDriven
	taylor := d.integ.Integrate(ic, p.TimeStep, g.forward)

	// The reverse run starts from the forward state at the midpoint with
	// the velocity flipped.
	rev := dynamo.NewTrajectory(nil)
	if pos, vel, ok := fwd.At(g.reverse.Len()); ok {
		rev = d.integ.Integrate(dynamo.InitialConditions{Pos: pos, Vel: -vel}, p.TimeStep, g.reverse)
	}

	summary := metrics.Summarize(taylor)
	summary.EnergyDrift = metrics.EnergyDrift(fwd)
	if e, ok := metrics.ReturnError(fwd, rev); ok {
		summary.ReturnError = e
	}

	return &TrialResult{
		Report: Report{
			Params:       p,
			Steps:        fwd.Len(),
			ReverseSteps: rev.Len(),
			Summary:      summary,
			Finite:       fwd.IsFinite() && taylor.IsFinite() && rev.IsFinite(),
		},
		PosStart: d.opts.PosStart,
		Forward:  fwd,
		Reverse:  rev,
		Taylor:   taylor,
	}
}

func (d *Driver) workers() int {
	if d.opts.Parallel == 0 {
		return runtime.NumCPU()
	}
	return d.opts.Parallel
}

// Run executes every trial and returns their reports in sweep order. The
// first export failure cancels the trials that have not started yet.
func (d *Driver) Run(ctx context.Context) ([]Report, error) {
	if err := d.opts.Validate(); err != nil {
		return nil, err
	}

	params := d.Params()
	cache := make(map[float64]grids, len(d.opts.TimeSteps))
	for _, dt := range d.opts.TimeSteps {
		if _, ok := cache[dt]; !ok {
			cache[dt] = d.gridsFor(dt)
		}
	}

	level.Info(d.logger).Log("msg", "starting sweep", "trials", len(params), "workers", d.workers())

	reports := make([]Report, len(params))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers())

	for i, p := range params {
		i, p := i, p
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := d.runTrial(p, cache[p.TimeStep])
			if !res.Finite {
				level.Warn(d.logger).Log("msg", "trajectory diverged", "dt", p.TimeStep, "v", p.Velocity)
			}

			if d.exporter != nil {
				if err := d.exporter.Export(res); err != nil {
					level.Error(d.logger).Log("msg", "export failed", "dt", p.TimeStep, "v", p.Velocity, "err", err)
					return &dynamo.TrialError{TimeStep: p.TimeStep, Velocity: p.Velocity, Wrapped: err}
				}
			}

			d.notify(res)
			reports[i] = res.Report

			level.Debug(d.logger).Log(
				"msg", "trial done",
				"dt", p.TimeStep,
				"v", p.Velocity,
				"steps", res.Steps,
				"max_energy", res.Summary.MaxEnergy,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	level.Info(d.logger).Log("msg", "sweep complete", "trials", len(reports))
	return reports, nil
}

func (d *Driver) notify(res *TrialResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, o := range d.observers {
		o.OnTrial(res)
	}
}
