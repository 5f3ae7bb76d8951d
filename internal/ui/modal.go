package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quoter/internal/quote"
	"github.com/five82/quoter/internal/syncer"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// resolveChoiceMsg carries the user's pick from the conflict modal.
type resolveChoiceMsg struct {
	resolution syncer.Resolution
}

// conflictModal lists pending conflicts and offers the three resolutions.
type conflictModal struct {
	conflicts []quote.Conflict
}

func newConflictModal(conflicts []quote.Conflict) conflictModal {
	return conflictModal{conflicts: conflicts}
}

func (c conflictModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	if key.Matches(km, keys.Escape) {
		return c, nil, true
	}
	var choice syncer.Resolution
	switch km.String() {
	case "s":
		choice = syncer.UseServer
	case "l":
		choice = syncer.UseLocal
	case "m":
		choice = syncer.Merge
	default:
		return c, nil, false
	}
	return c, func() tea.Msg { return resolveChoiceMsg{resolution: choice} }, true
}

func (c conflictModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	inner := minInt(60, width-8)

	var b strings.Builder
	b.WriteString(styles.WarningText.Bold(true).Render(fmt.Sprintf("%d sync conflict(s)", len(c.conflicts))))
	b.WriteString("\n\n")

	shown := c.conflicts
	if len(shown) > 3 {
		shown = shown[:3]
	}
	for _, cf := range shown {
		b.WriteString(styles.Text.Render(truncate(cf.Local.Text, inner)))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("  local: %s  server: %s", cf.Local.Category, cf.Server.Category)))
		b.WriteString("\n")
	}
	if extra := len(c.conflicts) - len(shown); extra > 0 {
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("… and %d more", extra)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(choiceLine(theme, "s", "use server"))
	b.WriteString(choiceLine(theme, "l", "keep local"))
	b.WriteString(choiceLine(theme, "m", "merge both"))
	b.WriteString(choiceLine(theme, "esc", "decide later"))

	return placeModal(theme, theme.Warning, inner, width, height, b.String())
}

// confirmModal asks a yes/no question and emits onYes when confirmed.
type confirmModal struct {
	title  string
	body   string
	onYes  tea.Msg
	danger bool
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch km.String() {
	case "y", "Y":
		yes := c.onYes
		return c, func() tea.Msg { return yes }, true
	case "n", "N":
		return c, nil, true
	}
	if key.Matches(km, keys.Escape) {
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	border := theme.Accent
	title := styles.Text.Bold(true).Render(c.title)
	if c.danger {
		border = theme.Danger
		title = styles.DangerText.Render(c.title)
	}
	content := title + "\n\n" + styles.Text.Render(c.body) + "\n\n" +
		choiceLine(theme, "y", "yes") + choiceLine(theme, "n", "no")
	return placeModal(theme, border, minInt(50, width-8), width, height, content)
}

func choiceLine(theme Theme, k, desc string) string {
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Warning)).Width(6)
	return keyStyle.Render(k) + theme.Styles().Text.Render(desc) + "\n"
}

func placeModal(theme Theme, border string, inner, width, height int, content string) string {
	if inner < 20 {
		inner = 20
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Width(inner + 4)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
