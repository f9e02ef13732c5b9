package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/befsim/internal/dynamo"
	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/metrics"
	"github.com/san-kum/befsim/internal/sim"
)

const (
	historyCapacity = 600
	sparkWidth      = 40
	maxSparklines   = 12
)

// ProgressMsg carries one recorded checkpoint into the live view.
type ProgressMsg struct {
	K, Total int
	T        float64
	Biomass  []float64
}

// DoneMsg ends a live run.
type DoneMsg struct {
	Result  *sim.Result
	Summary metrics.Summary
	Err     error
}

// Observer forwards checkpoints to send, typically tea.Program.Send.
// The biomass slice is copied since the driver reuses it.
func Observer(send func(tea.Msg)) sim.Observer {
	return sim.ObserverFunc(func(k, total int, t float64, b []float64) {
		cp := make([]float64, len(b))
		copy(cp, b)
		send(ProgressMsg{K: k, Total: total, T: t, Biomass: cp})
	})
}

// LiveModel shows a run as it integrates.
type LiveModel struct {
	title     string
	threshold float64

	web    *foodweb.FoodWeb
	layout WebLayout

	k, total int
	t        float64
	biomass  []float64
	totals   []float64
	history  [][]float64

	done    bool
	result  *sim.Result
	summary metrics.Summary
	err     error

	spinner  spinner.Model
	width    int
	showWeb  bool
	showHelp bool
}

func NewLiveModel(title string, threshold float64) LiveModel {
	return LiveModel{
		title:     title,
		threshold: threshold,
		totals:    make([]float64, 0, historyCapacity),
		history:   make([][]float64, 0, historyCapacity),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		width:     100,
	}
}

// WithWeb enables the food web panel.
func (m LiveModel) WithWeb(w *foodweb.FoodWeb) LiveModel {
	m.web = w
	m.layout = LayoutWeb(w)
	m.showWeb = true
	return m
}

func (m LiveModel) Done() bool { return m.done }

func (m LiveModel) Err() error { return m.err }

func (m LiveModel) Init() tea.Cmd { return m.spinner.Tick }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "t":
			NextTheme()
		case "w":
			m.showWeb = !m.showWeb && m.web != nil
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case ProgressMsg:
		m.record(msg)
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.summary = msg.Summary
		m.err = msg.Err
	}
	return m, nil
}

func (m *LiveModel) record(msg ProgressMsg) {
	m.k, m.total, m.t = msg.K, msg.Total, msg.T
	m.biomass = msg.Biomass

	m.totals = appendCapped(m.totals, dynamo.State(msg.Biomass).Sum())
	if len(m.history) == historyCapacity {
		m.history = m.history[1:]
	}
	m.history = append(m.history, msg.Biomass)
}

func appendCapped(s []float64, v float64) []float64 {
	if len(s) == historyCapacity {
		s = s[1:]
	}
	return append(s, v)
}

func (m LiveModel) alive() []bool {
	out := make([]bool, len(m.biomass))
	for i, v := range m.biomass {
		out[i] = v > m.threshold
	}
	return out
}

// Richness counts species above threshold at the latest checkpoint.
func (m LiveModel) Richness() int {
	n := 0
	for _, ok := range m.alive() {
		if ok {
			n++
		}
	}
	return n
}

func (m LiveModel) View() string {
	var s strings.Builder

	status := sim.Status("")
	if m.done && m.result != nil {
		status = m.result.Status
	}
	s.WriteString(Title(strings.ToUpper(m.title)) + "  " + StatusBadge(status))
	if !m.done {
		s.WriteString(" " + fg(CurrentTheme.Accent).Render(m.spinner.View()))
	}
	s.WriteString("\n\n")

	frac := 0.0
	if m.total > 1 {
		frac = float64(m.k) / float64(m.total-1)
	}
	s.WriteString(ProgressBar(frac, 40) + fmt.Sprintf(" %d/%d\n\n", m.k+1, m.total))

	s.WriteString(Label("time") + Value(fmt.Sprintf("%.2f", m.t)) + "\n")
	s.WriteString(Label("richness") + Value(fmt.Sprintf("%d/%d", m.Richness(), len(m.biomass))) + "\n")
	if n := len(m.totals); n > 0 {
		s.WriteString(Label("biomass") + Value(fmt.Sprintf("%.4g", m.totals[n-1])) + "\n")
	}
	if chart := PlotSeries(m.totals, 40, 6, "total biomass"); chart != "" {
		s.WriteString("\n" + chart + "\n")
	}

	s.WriteString("\n")
	for i := 0; i < len(m.biomass) && i < maxSparklines; i++ {
		series := make([]float64, len(m.history))
		for k, row := range m.history {
			series[k] = row[i]
		}
		line := fmt.Sprintf("s%-3d %s %.3g", i, Sparkline(series, sparkWidth), m.biomass[i])
		if m.biomass[i] <= m.threshold {
			line = Hint(line)
		}
		s.WriteString(line + "\n")
	}
	if extra := len(m.biomass) - maxSparklines; extra > 0 {
		s.WriteString(Hint(fmt.Sprintf("... %d more species", extra)) + "\n")
	}

	if m.done {
		s.WriteString("\n")
		if m.err != nil {
			s.WriteString(fg(CurrentTheme.Error).Render("error: "+m.err.Error()) + "\n")
		} else {
			s.WriteString(SummaryPanel("summary", m.summary) + "\n")
		}
	}
	s.WriteString("\n" + Hint("q quit  t theme  w web  ? help"))

	body := Panel().Render(s.String())
	if m.showWeb && m.web != nil {
		net := m.web.A
		if m.result != nil && m.result.Final != nil {
			net = m.result.Final.A
		}
		var alive []bool
		if len(m.biomass) == net.Size() {
			alive = m.alive()
		}
		webView := Panel().Render(Title("food web") + "\n" + RenderWeb(net, m.layout, alive, 30, 12))
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, webView)
	}
	if m.showHelp {
		return Panel().Render(strings.Join([]string{
			Title("keys"),
			"q / esc  quit",
			"t        cycle theme",
			"w        toggle the food web panel",
			"?        toggle this help",
		}, "\n")) + "\n" + body
	}
	return body
}
