package sweep_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vvho/internal/config"
	"github.com/san-kum/vvho/internal/dynamo"
	"github.com/san-kum/vvho/internal/integrators"
	"github.com/san-kum/vvho/internal/metrics"
	"github.com/san-kum/vvho/internal/storage"
	"github.com/san-kum/vvho/internal/sweep"
)

type recordingExporter struct {
	mu      sync.Mutex
	results []sweep.Report
	failOn  float64
	err     error
}

func (e *recordingExporter) Export(res *sweep.TrialResult) error {
	if e.err != nil && res.TimeStep == e.failOn {
		return e.err
	}
	e.mu.Lock()
	e.results = append(e.results, res.Report)
	e.mu.Unlock()
	return nil
}

func smallOptions() sweep.Options {
	return sweep.Options{
		TotalTime:  10,
		TimeSteps:  []float64{0.01, 0.1, 1, 2},
		Velocities: []float64{1, 2},
		Parallel:   1,
	}
}

var _ = Describe("StepCount", func() {
	DescribeTable("truncates total/dt",
		func(total, dt float64, want int) {
			Expect(sweep.StepCount(total, dt)).To(Equal(want))
		},
		Entry("finest default step", 100.0, 0.0002, 500000),
		Entry("dt=0.01", 100.0, 0.01, 10000),
		Entry("dt=4", 100.0, 4.0, 25),
		Entry("non-dividing step", 10.0, 3.0, 3),
		Entry("step equal to total", 100.0, 100.0, 1),
		Entry("step beyond total", 100.0, 200.0, 0),
	)
})

var _ = Describe("Driver", func() {
	var integ dynamo.Integrator

	BeforeEach(func() {
		integ = integrators.NewVerlet()
	})

	Describe("Params", func() {
		It("enumerates the default sweep time step major", func() {
			d := sweep.NewDriver(sweep.OptionsFromConfig(config.DefaultConfig()), integ, nil, nil)
			params := d.Params()

			Expect(params).To(HaveLen(24))
			Expect(params[0]).To(Equal(sweep.Params{TimeStep: 0.0002, Velocity: 1}))
			Expect(params[3]).To(Equal(sweep.Params{TimeStep: 0.0002, Velocity: 8}))
			Expect(params[4]).To(Equal(sweep.Params{TimeStep: 0.001, Velocity: 1}))
			Expect(params[23]).To(Equal(sweep.Params{TimeStep: 4, Velocity: 8}))
		})
	})

	Describe("RunTrial", func() {
		It("sizes the forward and reverse runs", func() {
			d := sweep.NewDriver(smallOptions(), integ, nil, nil)
			res := d.RunTrial(sweep.Params{TimeStep: 0.01, Velocity: 1})

			Expect(res.Steps).To(Equal(1000))
			Expect(res.ReverseSteps).To(Equal(500))
			Expect(res.Forward.Len()).To(Equal(1000))
			Expect(res.Taylor.Len()).To(Equal(1000))
			Expect(res.Reverse.Len()).To(Equal(500))
		})

		It("starts the reverse run from the flipped midpoint state", func() {
			d := sweep.NewDriver(smallOptions(), integ, nil, nil)
			res := d.RunTrial(sweep.Params{TimeStep: 0.1, Velocity: 2})

			half := res.ReverseSteps
			Expect(half).To(Equal(50))
			Expect(res.Reverse.Position[0]).To(Equal(res.Forward.Position[half]))
			Expect(res.Reverse.Velocity[0]).To(Equal(-res.Forward.Velocity[half]))
			Expect(res.Reverse.Time[0]).To(BeNumerically("~", 5.0, 1e-12))
			Expect(res.Reverse.Time[half-1]).To(BeNumerically("~", 0.1, 1e-12))
		})

		It("returns to the forward trajectory's first step", func() {
			d := sweep.NewDriver(smallOptions(), integ, nil, nil)
			res := d.RunTrial(sweep.Params{TimeStep: 0.01, Velocity: 1})

			Expect(res.Summary.ReturnError).To(BeNumerically("<", 1e-9))
		})

		It("summarizes the Taylor series", func() {
			d := sweep.NewDriver(smallOptions(), integ, nil, nil)
			res := d.RunTrial(sweep.Params{TimeStep: 0.01, Velocity: 2})

			want := metrics.Summarize(res.Taylor)
			Expect(res.Summary.MaxPosition).To(Equal(want.MaxPosition))
			Expect(res.Summary.MaxEnergy).To(Equal(want.MaxEnergy))
			Expect(res.Summary.MeanEnergy).To(Equal(want.MeanEnergy))
			Expect(res.Summary.MeanEnergy).To(BeNumerically("~", 2.0, 0.1))
			Expect(res.Summary.EnergyDrift).To(Equal(metrics.EnergyDrift(res.Forward)))
		})

		It("handles a single step run without indexing past the data", func() {
			opts := smallOptions()
			opts.TotalTime = 100
			d := sweep.NewDriver(opts, integ, nil, nil)
			res := d.RunTrial(sweep.Params{TimeStep: 100, Velocity: 1})

			Expect(res.Steps).To(Equal(1))
			Expect(res.ReverseSteps).To(Equal(0))
			Expect(res.Reverse.Len()).To(Equal(0))
			Expect(res.Summary.MaxPosition).To(Equal(0.0))
			Expect(res.Summary.MeanEnergy).To(Equal(0.5))
			Expect(res.Summary.ReturnError).To(Equal(0.0))
		})

		It("produces empty series when the step exceeds the total time", func() {
			opts := smallOptions()
			d := sweep.NewDriver(opts, integ, nil, nil)
			res := d.RunTrial(sweep.Params{TimeStep: 20, Velocity: 1})

			Expect(res.Steps).To(Equal(0))
			Expect(res.Reverse.Len()).To(Equal(0))
			Expect(res.Summary).To(Equal(metrics.Summary{}))
		})

		It("separates stable and unstable step sizes", func() {
			opts := smallOptions()
			opts.TotalTime = 100
			d := sweep.NewDriver(opts, integ, nil, nil)

			Expect(d.RunTrial(sweep.Params{TimeStep: 0.01, Velocity: 1}).Finite).To(BeTrue())
			Expect(d.RunTrial(sweep.Params{TimeStep: 4, Velocity: 8}).Summary.MaxEnergy).To(BeNumerically(">", metrics.EnergyAutoscaleThreshold))
		})
	})

	Describe("Run", func() {
		It("reports every trial in sweep order", func() {
			exp := &recordingExporter{}
			d := sweep.NewDriver(smallOptions(), integ, exp, nil)

			reports, err := d.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(reports).To(HaveLen(8))
			Expect(exp.results).To(HaveLen(8))

			for i, p := range d.Params() {
				Expect(reports[i].Params).To(Equal(p))
			}
		})

		It("gives the same reports in parallel", func() {
			seq := sweep.NewDriver(smallOptions(), integ, nil, nil)
			want, err := seq.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			opts := smallOptions()
			opts.Parallel = 4
			par := sweep.NewDriver(opts, integ, nil, nil)
			got, err := par.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(got).To(Equal(want))
		})

		It("calls observers once per trial", func() {
			opts := smallOptions()
			opts.Parallel = 3
			d := sweep.NewDriver(opts, integ, nil, nil)

			seen := 0
			d.AddObserver(sweep.ObserverFunc(func(res *sweep.TrialResult) {
				Expect(res.Forward).NotTo(BeNil())
				seen++
			}))

			_, err := d.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal(8))
		})

		It("fails the sweep on an export error", func() {
			boom := errors.New("disk full")
			exp := &recordingExporter{failOn: 1, err: boom}
			d := sweep.NewDriver(smallOptions(), integ, exp, nil)

			_, err := d.Run(context.Background())
			Expect(err).To(MatchError(boom))

			var trialErr *dynamo.TrialError
			Expect(errors.As(err, &trialErr)).To(BeTrue())
			Expect(trialErr.TimeStep).To(Equal(1.0))
		})

		It("stops on a cancelled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			d := sweep.NewDriver(smallOptions(), integ, nil, nil)
			_, err := d.Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
		})

		DescribeTable("rejects invalid options",
			func(mutate func(*sweep.Options), want error) {
				opts := smallOptions()
				mutate(&opts)
				_, err := sweep.NewDriver(opts, integ, nil, nil).Run(context.Background())
				Expect(err).To(MatchError(want))
			},
			Entry("zero total time", func(o *sweep.Options) { o.TotalTime = 0 }, dynamo.ErrParameterBounds),
			Entry("negative step", func(o *sweep.Options) { o.TimeSteps = []float64{-1} }, dynamo.ErrParameterBounds),
			Entry("no velocities", func(o *sweep.Options) { o.Velocities = nil }, dynamo.ErrEmptySweep),
			Entry("negative parallel", func(o *sweep.Options) { o.Parallel = -2 }, dynamo.ErrParameterBounds),
		)
	})
})

var _ = Describe("FileExporter", func() {
	var (
		dir string
		st  *storage.Store
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "vvho-sweep")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		st = storage.New(dir)
		Expect(st.Init()).To(Succeed())
	})

	It("writes data files, charts and the manifest", func() {
		opts := sweep.Options{TotalTime: 10, TimeSteps: []float64{0.1, 20}, Velocities: []float64{1}, Parallel: 2}
		run, err := st.Begin(opts.TotalTime, opts.PosStart, opts.TimeSteps, opts.Velocities)
		Expect(err).NotTo(HaveOccurred())

		d := sweep.NewDriver(opts, integrators.NewVerlet(), &sweep.FileExporter{Run: run, Plot: true}, nil)
		_, err = d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		manifest, err := run.Close()
		Expect(err).NotTo(HaveOccurred())
		Expect(manifest.Trials).To(HaveLen(2))

		first := manifest.Trials[0]
		Expect(first.Forward).To(Equal("dt0.1_v1.dat"))
		Expect(first.Reverse).To(Equal("dt0.1_v1_rev.dat"))
		Expect(first.Taylor).To(Equal("dt0.1_v1_T.dat"))
		Expect(first.Chart).To(Equal("dt0.1_v1.png"))
		for _, name := range []string{first.Forward, first.Reverse, first.Taylor, first.Chart} {
			Expect(filepath.Join(run.Dir(), name)).To(BeAnExistingFile())
		}

		fwd, err := storage.ReadTrajectory(filepath.Join(run.Dir(), first.Forward))
		Expect(err).NotTo(HaveOccurred())
		Expect(fwd.Len()).To(Equal(100))

		// An empty forward run still writes headers but no chart.
		second := manifest.Trials[1]
		Expect(second.Steps).To(Equal(0))
		Expect(second.Chart).To(BeEmpty())
		Expect(filepath.Join(run.Dir(), second.Forward)).To(BeAnExistingFile())
	})
})
