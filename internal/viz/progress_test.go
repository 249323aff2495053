package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestProgressUpdate(t *testing.T) {
	var m tea.Model = NewProgress("decay", []string{"A", "B"}, 10)

	for i := 0; i < historyLen+5; i++ {
		m, _ = m.Update(ProgressMsg{Time: float64(i) / 10, Values: []float64{float64(i), 1}})
	}

	p := m.(Progress)
	if got := len(p.history[0]); got != historyLen {
		t.Errorf("history length = %d, want %d", got, historyLen)
	}
	if p.latest[0] != float64(historyLen+4) {
		t.Errorf("latest = %v", p.latest)
	}
	if f := p.Fraction(); f <= 0 || f >= 1 {
		t.Errorf("fraction = %f, want in (0, 1)", f)
	}

	view := p.View()
	if !strings.Contains(view, "decay") || !strings.Contains(view, "running") {
		t.Errorf("view missing title or status:\n%s", view)
	}
}

func TestProgressDone(t *testing.T) {
	m := NewProgress("decay", []string{"A"}, 1)

	next, cmd := m.Update(DoneMsg{Err: errors.New("boom")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if view := next.View(); !strings.Contains(view, "failed: boom") {
		t.Errorf("view missing failure:\n%s", view)
	}
}

func TestProgressShortMessage(t *testing.T) {
	m := NewProgress("x", []string{"A", "B"}, 1)
	next, _ := m.Update(ProgressMsg{Time: 2, Values: []float64{3}})
	p := next.(Progress)
	if len(p.history[1]) != 0 {
		t.Error("missing value should not be recorded")
	}
	if p.Fraction() != 1 {
		t.Errorf("fraction should clamp to 1, got %f", p.Fraction())
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := Sparkline([]float64{1, 2, 3, 4, 5, 6}, 3); got == "" {
		t.Error("expected output")
	}
}
