package ui

import (
	"fmt"
	"strings"

	"github.com/five82/quoter/internal/state"
)

// renderHeader renders the top status line: logo, counts, filter and sync state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	filter := m.filter
	if filter == "" {
		filter = state.FilterAll
	}

	parts := []string{
		bg.Render("quoter", styles.Logo),
		bg.Render(fmt.Sprintf("%d/%d quotes", m.filtered, m.total), styles.Text),
		bg.Render("category:", styles.MutedText) + bg.Space() + bg.Render(filter, styles.AccentText),
	}

	s := m.syncState
	phase := styles.PhaseStyle(s.Phase).Render(strings.ToUpper(s.Phase.String()))
	parts = append(parts, phase)

	if m.width >= LayoutCompactWidth {
		auto := bg.Render("auto-sync off", styles.FaintText)
		if s.AutoSync {
			auto = bg.Render("auto-sync on", styles.SuccessText)
		}
		parts = append(parts,
			auto,
			bg.Render("synced "+humanizeSince(s.LastSync, m.now), styles.MutedText),
		)
		if len(s.PendingConflicts) > 0 {
			parts = append(parts, bg.Render(fmt.Sprintf("%d conflict(s), press r", len(s.PendingConflicts)), styles.WarningText))
		}
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  │  "))
}

// renderFooter renders the flash message, or the short key help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	var line string
	switch {
	case m.flash.text != "" && m.flash.isError:
		line = styles.DangerText.Render(m.flash.text)
	case m.flash.text != "":
		line = styles.SuccessText.Render(m.flash.text)
	case m.view == ViewLogs:
		line = styles.MutedText.Render(truncateMiddle(m.backend.LogPath(), m.width-4)) +
			styles.FaintText.Render("  j/k scroll · g/G top/bottom · l back")
	default:
		line = m.help.View(m.keys)
	}
	return styles.Footer.Width(m.width).Render(line)
}
