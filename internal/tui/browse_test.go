package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/me/rtsched/internal/cyclic"
	"github.com/me/rtsched/internal/report"
	"github.com/me/rtsched/pkg/model"
)

func testReport() *report.Cyclic {
	return &report.Cyclic{
		Name:        "demo",
		Utilization: 0.5,
		Hyperperiod: 10,
		Attempts: []cyclic.Attempt{
			{FrameSize: 2, Failure: &model.PlacementError{Task: "B", Job: 1, Activation: 5, FrameSize: 2}},
			{FrameSize: 5, Timetable: &model.Timetable{
				FrameSize:   5,
				Hyperperiod: 10,
				Frames: []model.Frame{
					{Index: 0, Start: 0, Slack: 2, Jobs: []model.ScheduledJob{{Task: "A", Start: 0, End: 3}}},
					{Index: 1, Start: 5, Slack: 5, Jobs: []model.ScheduledJob{}},
				},
			}},
		},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func TestBrowse_StartsOnFirstAttempt(t *testing.T) {
	m := New(testReport())
	view := m.View()
	for _, want := range []string{"demo", "frame size 2 (1/2)", "failed", "cannot place job #1 of task B"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowse_Paging(t *testing.T) {
	m := New(testReport())

	m, _ = update(t, m, keyRunes("n"))
	if m.Index() != 1 {
		t.Fatalf("Index after n = %d, want 1", m.Index())
	}
	view := m.View()
	if !strings.Contains(view, "frame size 5 (2/2)") || !strings.Contains(view, "A#0 [0,3)") {
		t.Errorf("view after n:\n%s", view)
	}

	m, _ = update(t, m, keyRunes("n"))
	if m.Index() != 1 {
		t.Errorf("Index past the end = %d, want 1", m.Index())
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Index() != 0 {
		t.Errorf("Index after left = %d, want 0", m.Index())
	}
	m, _ = update(t, m, keyRunes("p"))
	if m.Index() != 0 {
		t.Errorf("Index before the start = %d, want 0", m.Index())
	}
}

func TestBrowse_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := update(t, New(testReport()), msg)
		if cmd == nil {
			t.Fatalf("%s: no command", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command did not quit", msg)
		}
	}
}

func TestBrowse_WindowSize(t *testing.T) {
	m, _ := update(t, New(testReport()), tea.WindowSizeMsg{Width: 120, Height: 30})
	if m.viewport.Width != 120 || m.viewport.Height != 30-chromeHeight {
		t.Errorf("viewport = %dx%d", m.viewport.Width, m.viewport.Height)
	}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 10, Height: 2})
	if m.viewport.Height != 1 {
		t.Errorf("viewport height = %d, want 1", m.viewport.Height)
	}
}

func TestBrowse_Abort(t *testing.T) {
	m := New(&report.Cyclic{Abort: "utilization 1.6667 exceeds 1: no schedule exists"})
	if !strings.Contains(m.View(), "exceeds 1") {
		t.Errorf("view:\n%s", m.View())
	}
	m, _ = update(t, m, keyRunes("n"))
	if m.Index() != 0 {
		t.Errorf("Index = %d, want 0", m.Index())
	}
}
