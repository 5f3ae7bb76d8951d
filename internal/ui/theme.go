package ui

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quoter/internal/syncer"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// PhaseColors is keyed by syncer.Phase.String().
	PhaseColors map[string]string

	// CategoryColors tint category badges; a category hashes onto one.
	CategoryColors []string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Background)),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		phaseColors:    t.PhaseColors,
		categoryColors: t.CategoryColors,
		background:     t.Background,
		muted:          t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style

	phaseColors    map[string]string
	categoryColors []string
	background     string
	muted          string
}

// PhaseStyle returns a badge style for the given sync phase.
func (s Styles) PhaseStyle(phase syncer.Phase) lipgloss.Style {
	color := s.phaseColors[phase.String()]
	if color == "" {
		color = s.muted
	}
	return s.badge(color)
}

// CategoryStyle returns a badge style for a category. The same category
// always maps to the same color.
func (s Styles) CategoryStyle(category string) lipgloss.Style {
	if len(s.categoryColors) == 0 {
		return s.badge(s.muted)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(category))
	return s.badge(s.categoryColors[int(h.Sum32()%uint32(len(s.categoryColors)))])
}

func (s Styles) badge(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy of Styles with all text styles having the specified background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	out.Background = s.Background.Background(bg)
	out.Surface = s.Surface.Background(bg)
	out.Text = s.Text.Background(bg)
	out.MutedText = s.MutedText.Background(bg)
	out.FaintText = s.FaintText.Background(bg)
	out.AccentText = s.AccentText.Background(bg)
	out.SuccessText = s.SuccessText.Background(bg)
	out.WarningText = s.WarningText.Background(bg)
	out.DangerText = s.DangerText.Background(bg)
	out.Header = s.Header.Background(bg)
	out.Footer = s.Footer.Background(bg)
	out.Logo = s.Logo.Background(bg)
	return out
}

// Theme definitions

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		SurfaceAlt: "#212e3f", // bg2

		Border:      "#39506d", // bg4
		BorderFocus: "#719cd6", // blue

		Text:    "#cdcecf", // fg1
		Muted:   "#738091", // comment
		Faint:   "#71839b", // fg3
		Accent:  "#719cd6", // blue
		Success: "#81b29a", // green
		Warning: "#dbc074", // yellow
		Danger:  "#c94f6d", // red
		Info:    "#63cdcf", // cyan

		PhaseColors: map[string]string{
			"idle":     "#738091",
			"syncing":  "#719cd6",
			"online":   "#81b29a",
			"conflict": "#dbc074",
			"offline":  "#c94f6d",
		},
		CategoryColors: []string{"#719cd6", "#81b29a", "#9d79d6", "#63cdcf", "#f4a261", "#dbc074"},
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name: "Kanagawa",

		Background: "#16161D", // sumiInk0
		Surface:    "#1F1F28", // sumiInk3
		SurfaceAlt: "#2A2A37", // sumiInk4

		Border:      "#54546D", // sumiInk6
		BorderFocus: "#7E9CD8", // crystalBlue

		Text:    "#DCD7BA", // fujiWhite
		Muted:   "#C8C093", // oldWhite
		Faint:   "#727169", // fujiGray
		Accent:  "#7E9CD8", // crystalBlue
		Success: "#98BB6C", // springGreen
		Warning: "#E6C384", // carpYellow
		Danger:  "#E46876", // waveRed
		Info:    "#7FB4CA", // springBlue

		PhaseColors: map[string]string{
			"idle":     "#727169",
			"syncing":  "#7E9CD8",
			"online":   "#98BB6C",
			"conflict": "#E6C384",
			"offline":  "#E46876",
		},
		CategoryColors: []string{"#7E9CD8", "#98BB6C", "#957FB8", "#7FB4CA", "#FFA066", "#E6C384"},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800

		Border:      "#334155", // slate-700
		BorderFocus: "#38bdf8", // sky-400

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500

		PhaseColors: map[string]string{
			"idle":     "#64748b",
			"syncing":  "#0ea5e9",
			"online":   "#16a34a",
			"conflict": "#f59e0b",
			"offline":  "#dc2626",
		},
		CategoryColors: []string{"#38bdf8", "#22c55e", "#a78bfa", "#06b6d4", "#f59e0b", "#14b8a6"},
	}
}
