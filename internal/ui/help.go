package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var helpSectionTitles = []string{"Quotes", "Sync", "Data", "General"}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	groups := m.keys.FullHelp()
	for i, group := range groups {
		b.WriteString(styles.AccentText.Bold(true).Render(helpSectionTitles[i]))
		b.WriteString("\n")
		for _, binding := range group {
			b.WriteString(renderHelpItem(m.theme, binding))
		}
		if i < len(groups)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(40)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func renderHelpItem(theme Theme, binding key.Binding) string {
	h := binding.Help()
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Warning)).
		Width(12)
	return keyStyle.Render(h.Key) + theme.Styles().Text.Render(h.Desc) + "\n"
}
