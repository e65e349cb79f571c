// Package render draws the two-panel trial chart: position and total
// energy against time for the forward, time-reversed and Taylor series,
// with the closed-form solution overlaid on the position panel.
package render

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/san-kum/vvho/internal/dynamo"
	"github.com/san-kum/vvho/internal/metrics"
	"github.com/san-kum/vvho/internal/physics"
	"github.com/san-kum/vvho/internal/storage"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	widthPx      = 1500
	heightPx     = 1200
	dpi          = 96
	exactSamples = 1000
	// maxPoints bounds the points drawn per series; longer series are
	// strided.
	maxPoints = 20000
)

var ErrEmptyChart = errors.New("render: forward trajectory is empty")

var (
	blue      = color.RGBA{B: 255, A: 255}
	goldenrod = color.RGBA{R: 218, G: 165, B: 32, A: 255}
	black     = color.RGBA{A: 255}
	darkRed   = color.RGBA{R: 139, A: 255}
	red       = color.RGBA{R: 255, A: 255}
)

// Spec describes one chart. Forward, Reverse and Taylor are data file
// paths; the statistics come from the trial summary.
type Spec struct {
	Title           string
	Forward         string
	Reverse         string
	Taylor          string
	PosStart        float64
	InitialVelocity float64
	MeanEnergy      float64
	MaxPosition     float64
	MaxEnergy       float64
	Output          string
}

func (s Spec) summary() metrics.Summary {
	return metrics.Summary{
		MaxPosition: s.MaxPosition,
		MaxEnergy:   s.MaxEnergy,
		MeanEnergy:  s.MeanEnergy,
	}
}

// Render loads the three data files named by spec and draws the chart.
func Render(spec Spec) error {
	fwd, err := storage.ReadTrajectory(spec.Forward)
	if err != nil {
		return err
	}
	rev, err := storage.ReadTrajectory(spec.Reverse)
	if err != nil {
		return err
	}
	taylor, err := storage.ReadTrajectory(spec.Taylor)
	if err != nil {
		return err
	}
	return Draw(spec, fwd, rev, taylor)
}

// Draw renders in-memory trajectories to spec.Output as PNG.
func Draw(spec Spec, fwd, rev, taylor *dynamo.Trajectory) error {
	if fwd.Len() == 0 {
		return ErrEmptyChart
	}
	for _, traj := range []*dynamo.Trajectory{fwd, rev, taylor} {
		if traj != nil && !traj.Aligned() {
			return fmt.Errorf("render %s: %w", spec.Output, dynamo.ErrTrajectoryMismatch)
		}
	}

	summary := spec.summary()

	posPlot := plot.New()
	posPlot.Title.Text = spec.Title
	posPlot.X.Label.Text = "Time"
	posPlot.Y.Label.Text = "x(t)"
	posPlot.Legend.Top = true

	if err := addLine(posPlot, "Position", fwd.Time, fwd.Position, blue, 3); err != nil {
		return err
	}
	if rev != nil {
		if err := addLine(posPlot, "Time-reversed", rev.Time, rev.Position, goldenrod, 2); err != nil {
			return err
		}
	}

	var osc physics.Harmonic
	exact := plotter.NewFunction(func(t float64) float64 {
		return osc.Exact(spec.PosStart, spec.InitialVelocity, t)
	})
	exact.Samples = exactSamples
	exact.Color = black
	exact.Width = vg.Points(0.5)
	posPlot.Add(exact)
	posPlot.Legend.Add("Exact Solution", exact)

	if taylor != nil {
		if err := addLine(posPlot, "Second-order Taylor", taylor.Time, taylor.Position, darkRed, 0.5); err != nil {
			return err
		}
	}
	applyAxis(&posPlot.Y, summary.PositionAxis())

	energyPlot := plot.New()
	energyPlot.X.Label.Text = "Time"
	energyPlot.Y.Label.Text = "E"
	energyPlot.Legend.Top = true

	if err := addLine(energyPlot, "Total Energy", fwd.Time, fwd.Energy, red, 3); err != nil {
		return err
	}
	if taylor != nil {
		if err := addLine(energyPlot, "Second-order Taylor", taylor.Time, taylor.Energy, darkRed, 1); err != nil {
			return err
		}
	}
	applyAxis(&energyPlot.Y, summary.EnergyAxis())

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthPx)/dpi*vg.Inch, vg.Length(heightPx)/dpi*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	dc := draw.New(c)

	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Points(10),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
		PadY:      vg.Points(20),
	}
	canvases := plot.Align([][]*plot.Plot{{posPlot}, {energyPlot}}, tiles, dc)
	posPlot.Draw(canvases[0][0])
	energyPlot.Draw(canvases[1][0])

	return savePNG(c, spec.Output)
}

func addLine(p *plot.Plot, label string, t, v []float64, c color.Color, width float64) error {
	pts := xys(t, v)
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(width)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

// xys pairs time and value samples, striding long series and skipping
// non-finite points.
func xys(t, v []float64) plotter.XYs {
	stride := 1
	if len(t) > maxPoints {
		stride = (len(t) + maxPoints - 1) / maxPoints
	}

	pts := make(plotter.XYs, 0, len(t)/stride+1)
	for i := 0; i < len(t) && i < len(v); i += stride {
		if !finite(t[i]) || !finite(v[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: t[i], Y: v[i]})
	}
	return pts
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// applyAxis sets fixed limits. It must run after all plotters are added,
// since Add widens the axis to the data.
func applyAxis(ax *plot.Axis, r metrics.AxisRange) {
	if r.Auto {
		return
	}
	ax.Min = r.Min
	ax.Max = r.Max
}

func savePNG(c *vgimg.Canvas, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}
