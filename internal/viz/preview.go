package viz

import (
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/vvho/internal/dynamo"
)

// Series is one line of a terminal chart.
type Series struct {
	Name   string
	Values []float64
	Color  asciigraph.AnsiColor
}

// Preview plots the series on one asciigraph chart. Series are resampled
// to the chart width and non-finite values become gaps. Series without a
// finite value are left out; if none remain the result is empty.
func Preview(caption string, width, height int, series ...Series) string {
	var (
		data   [][]float64
		colors []asciigraph.AnsiColor
		names  []string
	)
	for _, s := range series {
		vals, ok := resample(s.Values, width)
		if !ok {
			continue
		}
		data = append(data, vals)
		colors = append(colors, s.Color)
		names = append(names, s.Name)
	}
	if len(data) == 0 {
		return ""
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(names...),
	)
}

// TrajectoryPreview charts position and total energy of a run.
func TrajectoryPreview(traj *dynamo.Trajectory, width, height int) string {
	if traj.Len() == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(Preview("position", width, height,
		Series{Name: "x(t)", Values: traj.Position, Color: asciigraph.Blue}))
	b.WriteString("\n\n")
	b.WriteString(Preview("total energy", width, height,
		Series{Name: "E(t)", Values: traj.Energy, Color: asciigraph.Red}))
	return b.String()
}

// resample picks at most 4*width evenly spaced samples and maps Inf to
// NaN. It reports false when no sample is finite.
func resample(values []float64, width int) ([]float64, bool) {
	limit := 4 * max(width, 1)
	stride := 1
	if len(values) > limit {
		stride = (len(values) + limit - 1) / limit
	}

	out := make([]float64, 0, len(values)/stride+1)
	anyFinite := false
	for i := 0; i < len(values); i += stride {
		v := values[i]
		if math.IsInf(v, 0) || math.IsNaN(v) {
			v = math.NaN()
		} else {
			anyFinite = true
		}
		out = append(out, v)
	}
	return out, anyFinite
}
