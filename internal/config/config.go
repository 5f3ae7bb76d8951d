package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds quoter's runtime settings.
type Config struct {
	RemoteURL    string
	DataDir      string
	Storage      string
	SyncInterval time.Duration
	AutoSync     bool
	RemoteLimit  int
	LogLevel     string
}

const (
	defaultConfigPath   = "~/.config/quoter/config.toml"
	defaultDataDir      = "~/.local/share/quoter"
	defaultRemoteURL    = "https://jsonplaceholder.typicode.com"
	defaultStorage      = "badger"
	defaultSyncInterval = 30
	defaultRemoteLimit  = 10
	defaultLogLevel     = "info"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		RemoteURL:    defaultRemoteURL,
		DataDir:      mustExpand(defaultDataDir),
		Storage:      defaultStorage,
		SyncInterval: defaultSyncInterval * time.Second,
		RemoteLimit:  defaultRemoteLimit,
		LogLevel:     defaultLogLevel,
	}
}

// Load locates and parses the quoter config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		RemoteURL    string `toml:"remote_url"`
		DataDir      string `toml:"data_dir"`
		Storage      string `toml:"storage"`
		SyncInterval int    `toml:"sync_interval"`
		AutoSync     bool   `toml:"auto_sync"`
		RemoteLimit  int    `toml:"remote_limit"`
		LogLevel     string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.RemoteURL); v != "" {
		cfg.RemoteURL = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Storage)); v != "" {
		if v != "badger" && v != "sqlite" {
			return Config{}, fmt.Errorf("parse config: storage %q must be badger or sqlite", raw.Storage)
		}
		cfg.Storage = v
	}
	if raw.SyncInterval > 0 {
		cfg.SyncInterval = time.Duration(raw.SyncInterval) * time.Second
	}
	if raw.RemoteLimit > 0 {
		cfg.RemoteLimit = raw.RemoteLimit
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	cfg.AutoSync = raw.AutoSync

	return cfg, nil
}

// LogPath returns the path of quoter's own log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/quoter.log")
	}
	return filepath.Join(c.DataDir, "quoter.log")
}

// ExportDir is where exports land when no directory is given.
func (c Config) ExportDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/exports")
	}
	return filepath.Join(c.DataDir, "exports")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
