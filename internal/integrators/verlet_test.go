package integrators_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vvho/internal/dynamo"
	"github.com/san-kum/vvho/internal/integrators"
)

func energySpread(e []float64) float64 {
	lo, hi := e[0], e[0]
	for _, v := range e {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}

func maxErrorVsSine(traj *dynamo.Trajectory, vel0 float64) float64 {
	worst := 0.0
	for i, tm := range traj.Time {
		worst = math.Max(worst, math.Abs(traj.Position[i]-vel0*math.Sin(tm)))
	}
	return worst
}

func forward(vel0, dt float64, n int, mode dynamo.Mode) *dynamo.Trajectory {
	ic := dynamo.InitialConditions{Pos: 0, Vel: vel0, Mode: mode}
	return integrators.VelocityVerlet(ic, dt, dynamo.ForwardGrid(n, dt))
}

var _ = Describe("VelocityVerlet", func() {
	Describe("initial sample", func() {
		DescribeTable("records the starting state and its energy",
			func(pos, vel float64, mode dynamo.Mode) {
				ic := dynamo.InitialConditions{Pos: pos, Vel: vel, Mode: mode}
				traj := integrators.VelocityVerlet(ic, 0.01, dynamo.ForwardGrid(10, 0.01))

				Expect(traj.Position[0]).To(Equal(pos))
				Expect(traj.Velocity[0]).To(Equal(vel))
				Expect(traj.Energy[0]).To(BeNumerically("~", 0.5*vel*vel+0.5*pos*pos, 1e-12))
			},
			Entry("at rest", 0.0, 0.0, dynamo.Autonomous),
			Entry("unit velocity", 0.0, 1.0, dynamo.Autonomous),
			Entry("displaced", 1.5, -2.0, dynamo.Autonomous),
			Entry("time-driven", 0.5, 8.0, dynamo.TimeDriven),
		)
	})

	Describe("series bookkeeping", func() {
		It("sizes every series to the grid", func() {
			grid := dynamo.ForwardGrid(137, 0.1)
			traj := integrators.VelocityVerlet(dynamo.InitialConditions{Vel: 2}, 0.1, grid)

			Expect(traj.Aligned()).To(BeTrue())
			Expect(traj.Len()).To(Equal(137))
			Expect(traj.Time).To(Equal([]float64(grid)))
		})

		It("returns only the initial sample for a single-point grid", func() {
			traj := forward(4, 0.5, 1, dynamo.Autonomous)

			Expect(traj.Len()).To(Equal(1))
			Expect(traj.Position).To(Equal([]float64{0}))
			Expect(traj.Velocity).To(Equal([]float64{4}))
			Expect(traj.Energy).To(Equal([]float64{8}))
		})

		It("returns an empty trajectory for an empty grid", func() {
			traj := forward(1, 0.5, 0, dynamo.Autonomous)

			Expect(traj.Len()).To(BeZero())
			Expect(traj.Position).To(BeEmpty())
			Expect(traj.Velocity).To(BeEmpty())
			Expect(traj.Energy).To(BeEmpty())
		})
	})

	Describe("mode asymmetry", func() {
		It("averages accelerations in autonomous mode", func() {
			traj := forward(1, 0.1, 3, dynamo.Autonomous)

			Expect(traj.Position[1]).To(BeNumerically("~", 0.1, 1e-15))
			Expect(traj.Velocity[1]).To(BeNumerically("~", 0.995, 1e-15))
		})

		It("takes first-order velocity steps with a lagged analytic acceleration in time-driven mode", func() {
			traj := forward(1, 0.1, 4, dynamo.TimeDriven)

			Expect(traj.Position[1]).To(BeNumerically("~", 0.1, 1e-15))
			Expect(traj.Velocity[1]).To(Equal(1.0))
			Expect(traj.Position[2]).To(BeNumerically("~", 0.2, 1e-15))
			Expect(traj.Velocity[2]).To(Equal(1.0))
			Expect(traj.Velocity[3]).To(BeNumerically("~", 1-0.1*math.Sin(0.1), 1e-15))
		})

		It("ignores the running position when evaluating the time-driven force", func() {
			a := forward(2, 0.05, 200, dynamo.TimeDriven)
			b := forward(2, 0.05, 200, dynamo.Autonomous)

			Expect(a.Velocity[10]).NotTo(Equal(b.Velocity[10]))
		})
	})

	Describe("autonomous energy conservation", func() {
		It("keeps energy nearly constant for a small step", func() {
			dt := 0.0002
			traj := forward(1, dt, int(100/dt), dynamo.Autonomous)

			Expect(energySpread(traj.Energy)).To(BeNumerically("<", 1e-6))
		})

		It("drifts more as the step grows", func() {
			small := forward(1, 0.0002, int(100/0.0002), dynamo.Autonomous)
			medium := forward(1, 1, 100, dynamo.Autonomous)
			large := forward(1, 4, 25, dynamo.Autonomous)

			smallSpread := energySpread(small.Energy)
			mediumSpread := energySpread(medium.Energy)

			Expect(mediumSpread).To(BeNumerically(">", smallSpread))
			Expect(mediumSpread).To(BeNumerically(">", 0.1))
			Expect(energySpread(large.Energy)).To(BeNumerically(">", mediumSpread))
		})
	})

	Describe("accuracy against the closed form", func() {
		It("reaches sin(1) after 5000 steps of 0.0002", func() {
			traj := forward(1, 0.0002, 5001, dynamo.Autonomous)

			Expect(traj.Position[5000]).To(BeNumerically("~", math.Sin(1.0), 1e-3))
		})

		It("follows v*sin(t) tightly in time-driven mode for a small step", func() {
			dt := 0.0002
			traj := forward(1, dt, int(100/dt), dynamo.TimeDriven)

			Expect(maxErrorVsSine(traj, 1)).To(BeNumerically("<", 5e-3))
		})

		It("loosens in time-driven mode as the step grows", func() {
			fine := maxErrorVsSine(forward(1, 0.0002, int(100/0.0002), dynamo.TimeDriven), 1)
			coarse := maxErrorVsSine(forward(1, 0.01, 10000, dynamo.TimeDriven), 1)
			huge := maxErrorVsSine(forward(1, 4, 25, dynamo.TimeDriven), 1)

			Expect(coarse).To(BeNumerically("<", 0.1))
			Expect(coarse).To(BeNumerically(">", fine))
			Expect(huge).To(BeNumerically(">", coarse))
		})
	})

	Describe("time reversal", func() {
		It("returns to the starting position after running back from the midpoint", func() {
			dt := 0.01
			vel0 := 2.0
			n := 5000
			fwd := forward(vel0, dt, 2*n, dynamo.Autonomous)

			pos, vel, ok := fwd.At(n)
			Expect(ok).To(BeTrue())

			rev := integrators.VelocityVerlet(
				dynamo.InitialConditions{Pos: pos, Vel: -vel, Mode: dynamo.Autonomous},
				dt, dynamo.ReverseGrid(n+1, dt),
			)

			Expect(rev.Position[n]).To(BeNumerically("~", 0, 1e-6))
			Expect(rev.Velocity[n]).To(BeNumerically("~", -vel0, 1e-6))
			Expect(rev.Position[n/2]).To(BeNumerically("~", fwd.Position[n/2], 1e-6))
		})
	})

	Describe("non-finite input", func() {
		It("propagates NaN without failing", func() {
			ic := dynamo.InitialConditions{Pos: math.NaN(), Vel: 1}
			traj := integrators.VelocityVerlet(ic, 0.1, dynamo.ForwardGrid(5, 0.1))

			Expect(traj.Len()).To(Equal(5))
			Expect(math.IsNaN(traj.Position[4])).To(BeTrue())
			Expect(traj.IsFinite()).To(BeFalse())
		})
	})
})
