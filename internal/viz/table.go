package viz

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/vvho/internal/sweep"
)

var (
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = cellStyle.Bold(true).Foreground(lipgloss.Color("#00ffff"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))
)

var reportHeaders = []string{"dt", "v0", "steps", "rev", "max x", "max E", "mean E", "drift", "return", "status"}

// ReportTable renders one row per trial.
func ReportTable(reports []sweep.Report) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		status := "ok"
		if !r.Finite {
			status = "diverged"
		}
		rows = append(rows, []string{
			strconv.FormatFloat(r.TimeStep, 'g', -1, 64),
			strconv.FormatFloat(r.Velocity, 'g', -1, 64),
			strconv.Itoa(r.Steps),
			strconv.Itoa(r.ReverseSteps),
			fmtMetric(r.Summary.MaxPosition),
			fmtMetric(r.Summary.MaxEnergy),
			fmtMetric(r.Summary.MeanEnergy),
			fmtMetric(r.Summary.EnergyDrift),
			fmtMetric(r.Summary.ReturnError),
			status,
		})
	}

	statusCol := len(reportHeaders) - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(reportHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == statusCol && row >= 0 && row < len(rows) && rows[row][col] != "ok":
				return cellStyle.Foreground(lipgloss.Color("#ffaa00"))
			default:
				return cellStyle
			}
		})

	return t.Render()
}

func fmtMetric(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
