package ui

import (
	"testing"

	"github.com/five82/quoter/internal/syncer"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Nightfox" || names[1] != "Kanagawa" || names[2] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Nightfox Kanagawa Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa).Name = %q, want Kanagawa", got)
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestThemesCoverEveryPhase(t *testing.T) {
	phases := []syncer.Phase{syncer.Idle, syncer.Syncing, syncer.Online, syncer.Conflict, syncer.Offline}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, p := range phases {
			if th.PhaseColors[p.String()] == "" {
				t.Fatalf("theme %s has no color for phase %s", name, p)
			}
		}
		if len(th.CategoryColors) == 0 {
			t.Fatalf("theme %s has no category colors", name)
		}
	}
}

func TestCategoryStyle_Stable(t *testing.T) {
	styles := GetTheme("Slate").Styles()
	a := styles.CategoryStyle("wisdom").GetBackground()
	b := styles.CategoryStyle("wisdom").GetBackground()
	if a != b {
		t.Fatalf("CategoryStyle(wisdom) background changed: %v then %v", a, b)
	}
}
