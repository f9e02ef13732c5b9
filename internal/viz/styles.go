package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/befsim/internal/metrics"
	"github.com/san-kum/befsim/internal/sim"
)

var sparkRunes = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

func Title(s string) string {
	return fg(CurrentTheme.Primary).Bold(true).Render(s)
}

func Label(s string) string {
	return fg(CurrentTheme.Muted).Width(14).Render(s)
}

func Value(s string) string {
	return fg(CurrentTheme.Text).Bold(true).Render(s)
}

func Hint(s string) string {
	return fg(CurrentTheme.Muted).Italic(true).Render(s)
}

// Panel is a rounded box in the theme's muted colour.
func Panel() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Muted).
		Padding(0, 1)
}

func StatusBadge(s sim.Status) string {
	c := CurrentTheme.Warning
	switch s {
	case sim.StatusCompleted:
		c = CurrentTheme.Success
	case sim.StatusCollapsed, sim.StatusDiverged:
		c = CurrentTheme.Error
	case "":
		return fg(CurrentTheme.Accent).Bold(true).Render("RUNNING")
	}
	return fg(c).Bold(true).Render(strings.ToUpper(string(s)))
}

// ProgressBar renders frac of width cells filled. frac is clamped to [0,1].
func ProgressBar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	frac = math.Max(0, math.Min(1, frac))
	filled := int(frac * float64(width))
	return fg(CurrentTheme.Primary).Render(strings.Repeat("█", filled)) +
		fg(CurrentTheme.Muted).Render(strings.Repeat("░", width-filled))
}

// Sparkline samples values down to width runes, scaled between their
// minimum and maximum.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	n := width
	if len(values) < n {
		n = len(values)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		v := values[i*len(values)/n]
		idx := int((v - lo) / span * float64(len(sparkRunes)-1))
		if idx < 0 {
			idx = 0
		} else if idx >= len(sparkRunes) {
			idx = len(sparkRunes) - 1
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// SummaryPanel lays out a run summary as labelled rows inside a panel.
func SummaryPanel(title string, s metrics.Summary) string {
	rows := []struct{ k, v string }{
		{"status", StatusBadge(s.Status)},
		{"species", fmt.Sprintf("%d", s.Species)},
		{"richness", fmt.Sprintf("%.3f", s.Richness)},
		{"persistence", fmt.Sprintf("%.3f", s.Persistence)},
		{"stability", fmt.Sprintf("%.4f", s.Stability)},
		{"biomass", fmt.Sprintf("%.4g", s.Biomass)},
		{"evenness", fmt.Sprintf("%.3f", s.Evenness)},
		{"extinctions", fmt.Sprintf("%d", s.Extinctions)},
		{"rewirings", fmt.Sprintf("%d", s.Rewirings)},
	}
	var b strings.Builder
	b.WriteString(Title(title))
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(Label(r.k) + Value(r.v) + "\n")
	}
	return Panel().Render(strings.TrimRight(b.String(), "\n"))
}
