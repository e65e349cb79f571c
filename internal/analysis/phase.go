package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/vvho/internal/dynamo"
)

// PhasePortrait holds position/velocity pairs of a trajectory.
type PhasePortrait struct {
	Points []struct{ X, Y float64 }
}

// NewPhasePortrait samples at most maxPoints evenly spaced points of the
// trajectory. maxPoints <= 0 keeps every sample.
func NewPhasePortrait(traj *dynamo.Trajectory, maxPoints int) *PhasePortrait {
	n := traj.Len()
	stride := 1
	if maxPoints > 0 && n > maxPoints {
		stride = (n + maxPoints - 1) / maxPoints
	}

	portrait := &PhasePortrait{
		Points: make([]struct{ X, Y float64 }, 0, n/stride+1),
	}
	for i := 0; i < n; i += stride {
		x, y := traj.Position[i], traj.Velocity[i]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{X: x, Y: y})
	}

	return portrait
}

// ASCII renders the portrait on a width x height character canvas.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y

	for _, pt := range p.Points {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which the position series
// crosses zero going upward.
func Crossings(traj *dynamo.Trajectory) []float64 {
	var times []float64
	for i := 1; i < traj.Len(); i++ {
		prev, curr := traj.Position[i-1], traj.Position[i]
		if prev < 0 && curr >= 0 {
			frac := -prev / (curr - prev)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			t0, t1 := traj.Time[i-1], traj.Time[i]
			times = append(times, t0+frac*(t1-t0))
		}
	}
	return times
}

// Period returns the mean spacing between upward zero crossings. It needs
// at least two crossings.
func Period(traj *dynamo.Trajectory) (float64, bool) {
	c := Crossings(traj)
	if len(c) < 2 {
		return 0, false
	}
	return math.Abs(c[len(c)-1]-c[0]) / float64(len(c)-1), true
}
