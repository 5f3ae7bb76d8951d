package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/quoter/internal/logtail"
)

type logLinesMsg struct {
	lines []string
	err   error
}

// logState tracks the log pane.
type logState struct {
	lines  []string
	err    error
	follow bool
}

func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(m.width, m.contentHeight())
	m.logState.follow = true
}

func (m *Model) resizeLogViewport() {
	m.logViewport.Width = m.width
	m.logViewport.Height = m.contentHeight()
}

func loadLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		raw, err := logtail.Read(path, LogBufferLimit)
		return logLinesMsg{lines: logtail.FormatLines(raw), err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err != nil {
		return
	}
	m.logState.lines = msg.lines
	m.updateLogViewport()
}

func (m *Model) updateLogViewport() {
	styles := m.theme.Styles()
	if len(m.logState.lines) == 0 {
		m.logViewport.SetContent(styles.MutedText.Render("No log entries yet."))
		return
	}
	rendered := make([]string, len(m.logState.lines))
	for i, line := range m.logState.lines {
		rendered[i] = styleLogLine(styles, truncate(line, m.width))
	}
	m.logViewport.SetContent(strings.Join(rendered, "\n"))
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// styleLogLine tints a formatted line by its level column.
func styleLogLine(styles Styles, line string) string {
	switch {
	case strings.Contains(line, " ERROR "), strings.Contains(line, " DPANIC "), strings.Contains(line, " FATAL "):
		return styles.DangerText.Render(line)
	case strings.Contains(line, " WARN "):
		return styles.WarningText.Render(line)
	case strings.Contains(line, " DEBUG "):
		return styles.FaintText.Render(line)
	default:
		return styles.Text.Render(line)
	}
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = m.logViewport.AtBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = m.logViewport.AtBottom()
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true
	}
	return m, nil
}

func (m Model) renderLogs() string {
	if m.logState.err != nil {
		return m.theme.Styles().DangerText.Render("Log unavailable: " + m.logState.err.Error())
	}
	return m.logViewport.View()
}
