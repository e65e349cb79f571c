package viz

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/vvho/internal/sweep"
)

// Feed carries finished trials from a running sweep to the progress view.
type Feed chan sweep.Report

// NewFeed returns a feed buffered for total trials, so the sweep never
// blocks on a view that has stopped reading.
func NewFeed(total int) Feed {
	return make(Feed, total)
}

func (f Feed) OnTrial(res *sweep.TrialResult) { f <- res.Report }

type reportMsg sweep.Report

type feedClosedMsg struct{}

// ProgressModel shows sweep progress and the most recent trial. It quits
// when the feed is closed. Pressing q or ctrl+c cancels the sweep.
type ProgressModel struct {
	total     int
	done      int
	last      sweep.Report
	hasLast   bool
	diverged  int
	feed      Feed
	progress  progress.Model
	cancel    context.CancelFunc
	cancelled bool
	finished  bool
}

func NewProgressModel(total int, feed Feed, cancel context.CancelFunc) ProgressModel {
	p := progress.New(
		progress.WithScaledGradient("#00ccff", "#00ff88"),
		progress.WithoutPercentage(),
	)
	return ProgressModel{
		total:    total,
		feed:     feed,
		progress: p,
		cancel:   cancel,
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return m.waitForReport()
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-8, 20), 60)
		return m, nil

	case reportMsg:
		m.done++
		m.last = sweep.Report(msg)
		m.hasLast = true
		if !m.last.Finite {
			m.diverged++
		}
		return m, m.waitForReport()

	case feedClosedMsg:
		m.finished = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m ProgressModel) waitForReport() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	feed := m.feed
	return func() tea.Msg {
		r, ok := <-feed
		if !ok {
			return feedClosedMsg{}
		}
		return reportMsg(r)
	}
}

// Percent is the fraction of trials finished.
func (m ProgressModel) Percent() float64 {
	if m.total <= 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m ProgressModel) Cancelled() bool { return m.cancelled }

func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(Title.Render("vvho sweep"))
	b.WriteString("\n\n  ")
	b.WriteString(m.progress.ViewAs(m.Percent()))
	b.WriteString(fmt.Sprintf("  %d/%d\n", m.done, m.total))

	if m.hasLast {
		b.WriteString("  ")
		b.WriteString(MetricLabel.Render("last "))
		b.WriteString(MetricValue.Render(m.last.Params.String()))
		b.WriteString(MetricLabel.Render(fmt.Sprintf("  mean E %.4g", m.last.Summary.MeanEnergy)))
		b.WriteString("\n")
	}
	if m.diverged > 0 {
		b.WriteString("  ")
		b.WriteString(StatusWarn.Render(fmt.Sprintf("%d diverged", m.diverged)))
		b.WriteString("\n")
	}

	switch {
	case m.cancelled:
		b.WriteString("\n  " + StatusError.Render("cancelled") + "\n")
	case m.finished:
		b.WriteString("\n  " + StatusOK.Render("done") + "\n")
	default:
		b.WriteString("\n  " + KeyHint.Render("q to cancel") + "\n")
	}
	return b.String()
}
