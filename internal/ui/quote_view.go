package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderQuote renders the current quote card, or the matching empty state.
func (m Model) renderQuote() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	var body string
	switch {
	case !m.hasQuote && m.total == 0:
		body = styles.MutedText.Render("No quotes yet.") + "\n\n" +
			styles.FaintText.Render("Press a to add one, i to import a file, or s to sync.")
	case !m.hasQuote:
		body = styles.MutedText.Render("Press space for a quote.")
	default:
		body = m.renderCard()
	}

	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, body)
}

func (m Model) renderCard() string {
	styles := m.theme.Styles()
	width := minInt(QuoteMaxWidth, m.width-8)
	if width < 20 {
		width = 20
	}

	text := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Text)).
		Italic(true).
		Width(width).
		Render("“" + m.current.Text + "”")

	meta := []string{styles.CategoryStyle(m.current.Category).Render(m.current.Category)}
	if m.current.FromServer() {
		meta = append(meta, styles.FaintText.Render("from server"))
	}
	if m.restored {
		meta = append(meta, styles.FaintText.Render("last viewed"))
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(meta, " "))

	// An empty category falls back to the whole collection.
	if m.filter != "" && m.filtered == 0 && m.total > 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.WarningText.Render("No quotes in “" + m.filter + "”, showing one from all categories."))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(1, 3).
		Render(b.String())
}
