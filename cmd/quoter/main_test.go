package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/quoter/internal/remote"
)

// setupCLI points quoter at a temp home, a temp data dir and a simulated remote.
func setupCLI(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	srv := remote.NewServer(remote.DefaultSeed(), nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfgDir := filepath.Join(home, ".config", "quoter")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	cfg := fmt.Sprintf("remote_url = %q\ndata_dir = %q\nstorage = \"sqlite\"\n", ts.URL, filepath.Join(home, "data"))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(cfg), 0o600))
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func lines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestCLI_AddFilterRandomList(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "add", "Stay curious", "Learning")
	require.NoError(t, err)
	assert.Equal(t, "Added to learning (4 quotes)\n", out)

	out, err = execute(t, "categories")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"motivation", "life", "dreams", "learning"}, lines(out))

	out, err = execute(t, "filter", "learning")
	require.NoError(t, err)
	assert.Contains(t, out, "Filter: learning (1 of 4 quotes)")

	// The filter persists across invocations.
	out, err = execute(t, "random")
	require.NoError(t, err)
	assert.Contains(t, out, "Stay curious")

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Len(t, lines(out), 1)

	out, err = execute(t, "list", "--all")
	require.NoError(t, err)
	assert.Len(t, lines(out), 4)
}

func TestCLI_AddRejectsEmptyFields(t *testing.T) {
	setupCLI(t)

	_, err := execute(t, "add", "  ", "life")
	require.Error(t, err)

	_, err = execute(t, "add", "only text")
	require.Error(t, err)
}

func TestCLI_ExportClearImport(t *testing.T) {
	home := setupCLI(t)

	_, err := execute(t, "add", "Stay curious", "learning")
	require.NoError(t, err)

	exportDir := filepath.Join(home, "exports")
	out, err := execute(t, "export", "--dir", exportDir)
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "quotes_export_"), "path = %q", path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = execute(t, "clear")
	require.ErrorContains(t, err, "--yes")

	out, err = execute(t, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "All data cleared")

	// A cleared store starts over from the built-in quotes.
	out, err = execute(t, "filter")
	require.NoError(t, err)
	assert.Contains(t, out, "Filter: all (3 of 3 quotes)")

	out, err = execute(t, "import", path)
	require.NoError(t, err)
	assert.Equal(t, "Imported 1 (valid 4, skipped 0, duplicates 3)\n", out)
}

func TestCLI_SyncConflictNeedsResolution(t *testing.T) {
	setupCLI(t)

	// The seed shares one text with the built-in quotes.
	out, err := execute(t, "sync")
	require.ErrorContains(t, err, "conflict(s) pending")
	assert.Contains(t, out, "1 conflict(s):")

	out, err = execute(t, "sync", "--resolve", "server")
	require.NoError(t, err)
	assert.Contains(t, out, "Sync online: fetched 5, added 5")

	out, err = execute(t, "list", "--all")
	require.NoError(t, err)
	assert.Len(t, lines(out), 5)

	out, err = execute(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "fetched 5, added 0")

	_, err = execute(t, "sync", "--resolve", "bogus")
	require.Error(t, err)
}

func TestCLI_ImportSkipsInvalidEntries(t *testing.T) {
	home := setupCLI(t)

	path := filepath.Join(home, "partial.json")
	doc := `[{"text":"Keep going","category":"grit"},{"text":"","category":"life"}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	out, err := execute(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "Imported 1 (valid 1, skipped 1, duplicates 0)")

	_, err = execute(t, "import", filepath.Join(home, "missing.json"))
	require.Error(t, err)
}
