// Package viz renders sweep results in the terminal.
//
//   - [Preview]: asciigraph line charts of a trajectory
//   - [ReportTable]: lipgloss table of trial summaries
//   - [ProgressModel]: Bubble Tea progress view fed by a running sweep
package viz
