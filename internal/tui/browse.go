// Package tui provides an interactive browser over the timetables of a
// cyclic analysis.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/me/rtsched/internal/report"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeHeight  = 4 // header, blank line, blank line, footer
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

type keyMap struct {
	Next key.Binding
	Prev key.Binding
	Quit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next: key.NewBinding(key.WithKeys("n", "right", "l", "tab"), key.WithHelp("n", "next frame size")),
		Prev: key.NewBinding(key.WithKeys("p", "left", "h", "shift+tab"), key.WithHelp("p", "previous frame size")),
		Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model pages through the attempts of a cyclic analysis, one frame size at
// a time, with the timetable in a scrollable viewport.
type Model struct {
	report   *report.Cyclic
	index    int
	keys     keyMap
	viewport viewport.Model
}

// New creates a browser for c.
func New(c *report.Cyclic) Model {
	m := Model{
		report:   c,
		keys:     defaultKeys(),
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
	}
	m.viewport.SetContent(m.content())
	return m
}

// Index returns the position of the attempt being shown.
func (m Model) Index() int { return m.index }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chromeHeight)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.show(m.index + 1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.show(m.index - 1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) show(i int) {
	if i < 0 || i >= len(m.report.Attempts) || i == m.index {
		return
	}
	m.index = i
	m.viewport.SetContent(m.content())
	m.viewport.GotoTop()
}

func (m Model) content() string {
	if len(m.report.Attempts) == 0 {
		if m.report.Abort != "" {
			return failStyle.Render(m.report.Abort)
		}
		return "no frame size was attempted"
	}
	a := m.report.Attempts[m.index]
	if a.Failure != nil {
		return failStyle.Render(a.Failure.Error())
	}
	return report.TimetableTable(a.Timetable)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	name := m.report.Name
	if name == "" {
		name = "task set"
	}
	title := titleStyle.Render(fmt.Sprintf("%s  U=%.4f  H=%d", name, m.report.Utilization, m.report.Hyperperiod))
	n := len(m.report.Attempts)
	if n == 0 {
		return title
	}
	a := m.report.Attempts[m.index]
	status := okStyle.Render("packed")
	if a.Failure != nil {
		status = failStyle.Render("failed")
	}
	return fmt.Sprintf("%s  frame size %d (%d/%d) %s", title, a.FrameSize, m.index+1, n, status)
}

func (m Model) footerView() string {
	help := fmt.Sprintf("%s %s • %s %s • ↑/↓ scroll • %s %s • %3.f%%",
		m.keys.Next.Help().Key, m.keys.Next.Help().Desc,
		m.keys.Prev.Help().Key, m.keys.Prev.Help().Desc,
		m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc,
		m.viewport.ScrollPercent()*100)
	return footerStyle.Render(help)
}

// Run starts the browser on the given terminal streams and blocks until the
// user quits.
func Run(c *report.Cyclic, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(c), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
