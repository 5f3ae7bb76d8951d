package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.AutoSync != nil {
		t.Fatalf("AutoSync = %v, want nil", *p.AutoSync)
	}
	if !p.AutoSyncOr(true) || p.AutoSyncOr(false) {
		t.Fatalf("AutoSyncOr should return the fallback when unset")
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "quoter")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"Slate\"\nauto_sync = false\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
	if p.AutoSyncOr(true) {
		t.Fatalf("AutoSyncOr(true) = true, want saved false")
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	p := Prefs{Theme: "Slate"}.WithAutoSync(true)
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", loaded.Theme, "Slate")
	}
	if !loaded.AutoSyncOr(false) {
		t.Fatalf("AutoSync not persisted")
	}
}

func TestLoad_EmptyThemeFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}
