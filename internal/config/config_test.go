package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RemoteURL != defaultRemoteURL {
		t.Fatalf("RemoteURL = %q, want %q", cfg.RemoteURL, defaultRemoteURL)
	}

	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.Storage != "badger" {
		t.Fatalf("Storage = %q, want badger", cfg.Storage)
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Fatalf("SyncInterval = %s, want 30s", cfg.SyncInterval)
	}
	if cfg.RemoteLimit != 10 || cfg.AutoSync || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
remote_url = "  127.0.0.1:9999  "
data_dir = "  ~/.quoter  "
storage = "SQLite"
sync_interval = 5
auto_sync = true
remote_limit = 3
log_level = "DEBUG"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RemoteURL != "127.0.0.1:9999" {
		t.Fatalf("RemoteURL = %q, want %q", cfg.RemoteURL, "127.0.0.1:9999")
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.Storage != "sqlite" {
		t.Fatalf("Storage = %q, want sqlite", cfg.Storage)
	}
	if cfg.SyncInterval != 5*time.Second {
		t.Fatalf("SyncInterval = %s, want 5s", cfg.SyncInterval)
	}
	if !cfg.AutoSync || cfg.RemoteLimit != 3 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LogPath() != filepath.Join(cfg.DataDir, "quoter.log") {
		t.Fatalf("LogPath = %q, want %q", cfg.LogPath(), filepath.Join(cfg.DataDir, "quoter.log"))
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
remote_url = "   "
data_dir = ""
sync_interval = 0
remote_limit = -1
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RemoteURL != defaultRemoteURL {
		t.Fatalf("RemoteURL = %q, want %q", cfg.RemoteURL, defaultRemoteURL)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.SyncInterval != defaultSyncInterval*time.Second || cfg.RemoteLimit != defaultRemoteLimit {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`remote_url = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_UnknownStorageFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`storage = "redis"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "storage") {
		t.Fatalf("Load error = %v, want storage error", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenDataDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/quoter.log")) {
		t.Fatalf("LogPath = %q, want it to end with /quoter.log", got)
	}
	if !strings.HasSuffix(cfg.ExportDir(), filepath.FromSlash("/exports")) {
		t.Fatalf("ExportDir = %q, want it to end with /exports", cfg.ExportDir())
	}
}
