package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const historyLen = 40

// ProgressMsg reports one recorded point of a running trajectory.
type ProgressMsg struct {
	Time   float64
	Values []float64
}

// DoneMsg ends the progress view; Err is the outcome of the run.
type DoneMsg struct {
	Err error
}

// Progress is a bubbletea model showing how far a trajectory has got and a
// sparkline per species.
type Progress struct {
	title    string
	labels   []string
	duration float64

	t       float64
	latest  []float64
	history [][]float64
	done    bool
	err     error
}

func NewProgress(title string, labels []string, duration float64) Progress {
	return Progress{
		title:    title,
		labels:   labels,
		duration: duration,
		history:  make([][]float64, len(labels)),
	}
}

func (m Progress) Init() tea.Cmd { return nil }

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case ProgressMsg:
		m.t = msg.Time
		m.latest = msg.Values
		for i := range m.history {
			if i >= len(msg.Values) {
				break
			}
			h := append(m.history[i], msg.Values[i])
			if len(h) > historyLen {
				h = h[len(h)-historyLen:]
			}
			m.history[i] = h
		}
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m Progress) Fraction() float64 {
	if m.duration <= 0 {
		return 0
	}
	return min(1, m.t/m.duration)
}

func (m Progress) View() string {
	var b strings.Builder

	status := StatusRunning.Render("running")
	if m.done {
		status = StatusRunning.Render("done")
		if m.err != nil {
			status = StatusFailed.Render("failed: " + m.err.Error())
		}
	}
	b.WriteString(Title.Render(m.title) + "  " + status + "\n")
	b.WriteString(fmt.Sprintf("%s %s\n\n",
		ProgressBar(m.Fraction(), 30),
		Subtle.Render(fmt.Sprintf("t=%.3f / %.3f", m.t, m.duration))))

	for i, label := range m.labels {
		value := "-"
		if i < len(m.latest) {
			value = fmt.Sprintf("%.4g", m.latest[i])
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			MetricLabel.Render(fmt.Sprintf("%-10s", label)),
			MetricValue.Render(fmt.Sprintf("%10s", value)),
			Sparkline(m.history[i], historyLen)))
	}

	if !m.done {
		b.WriteString("\n" + Subtle.Render("q: quit") + "\n")
	}
	return Panel.Render(b.String())
}
