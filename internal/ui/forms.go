package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type addSubmitMsg struct {
	text     string
	category string
}

type importSubmitMsg struct {
	path string
}

// addForm collects the text and category of a new quote.
type addForm struct {
	inputs   [2]textinput.Model // text, category
	focusIdx int
	err      string
}

func newAddForm(theme Theme) addForm {
	var f addForm
	labels := []string{"The quote", "category, e.g. wisdom"}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.CharLimit = 500
		ti.Width = 50
		ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))
		ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Text))
		f.inputs[i] = ti
	}
	f.inputs[1].CharLimit = 40
	f.inputs[0].Focus()
	return f
}

func (f addForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Escape):
			return f, nil, true
		case key.Matches(km, keys.NextField), key.Matches(km, keys.PrevField):
			f.inputs[f.focusIdx].Blur()
			f.focusIdx = (f.focusIdx + 1) % len(f.inputs)
			return f, f.inputs[f.focusIdx].Focus(), false
		case key.Matches(km, keys.Confirm):
			text := strings.TrimSpace(f.inputs[0].Value())
			category := strings.TrimSpace(f.inputs[1].Value())
			if text == "" || category == "" {
				f.err = "Both fields are required"
				return f, nil, false
			}
			return f, func() tea.Msg { return addSubmitMsg{text: text, category: category} }, true
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focusIdx], cmd = f.inputs[f.focusIdx].Update(msg)
	return f, cmd, false
}

func (f addForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Add Quote"))
	b.WriteString("\n\n")
	for i, label := range []string{"Text", "Category"} {
		labelStyle := styles.MutedText
		if i == f.focusIdx {
			labelStyle = styles.AccentText
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}
	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("tab next field · enter save · esc cancel"))
	return placeModal(theme, theme.Accent, minInt(56, width-8), width, height, b.String())
}

// importForm asks for the path of an exported JSON file.
type importForm struct {
	input textinput.Model
}

func newImportForm(theme Theme, dir string) importForm {
	ti := textinput.New()
	ti.Placeholder = "/path/to/quotes-export.json"
	ti.CharLimit = 1024
	ti.Width = 50
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Text))
	if dir != "" {
		ti.SetValue(strings.TrimSuffix(dir, "/") + "/")
	}
	ti.Focus()
	return importForm{input: ti}
}

func (f importForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Escape):
			return f, nil, true
		case key.Matches(km, keys.Confirm):
			path := strings.TrimSpace(f.input.Value())
			if path == "" {
				return f, nil, false
			}
			return f, func() tea.Msg { return importSubmitMsg{path: path} }, true
		}
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd, false
}

func (f importForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	content := styles.Text.Bold(true).Render("Import Quotes") + "\n\n" +
		styles.AccentText.Render("File") + "\n" +
		f.input.View() + "\n\n" +
		styles.FaintText.Render("enter import · esc cancel")
	return placeModal(theme, theme.Accent, minInt(56, width-8), width, height, content)
}
