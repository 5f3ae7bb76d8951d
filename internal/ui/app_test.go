package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/quoter/internal/codec"
	"github.com/five82/quoter/internal/quote"
	"github.com/five82/quoter/internal/state"
	"github.com/five82/quoter/internal/syncer"
)

type fakeBackend struct {
	quotes   []quote.Quote
	filter   string
	viewed   *quote.Quote
	syncErr  error
	resolved []syncer.Resolution
	autoSync bool
	cleared  bool
	imported string
	theme    string
	listener func(syncer.State)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{quotes: quote.Defaults(), filter: state.FilterAll}
}

func (f *fakeBackend) ShowRandom(context.Context) (quote.Quote, bool, error) {
	if len(f.quotes) == 0 {
		return quote.Quote{}, false, nil
	}
	q := f.quotes[0]
	f.viewed = &q
	return q, true, nil
}

func (f *fakeBackend) LastViewed(context.Context) (quote.Quote, bool) {
	if f.viewed == nil {
		return quote.Quote{}, false
	}
	return *f.viewed, true
}

func (f *fakeBackend) AddQuote(_ context.Context, text, category string) (quote.Quote, error) {
	q, err := quote.New(text, category)
	if err != nil {
		return quote.Quote{}, err
	}
	f.quotes = append(f.quotes, q)
	return q, nil
}

func (f *fakeBackend) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, q := range f.quotes {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	return out
}

func (f *fakeBackend) SetFilter(_ context.Context, category string) (state.FilterStatus, error) {
	f.filter = category
	if len(f.quotes) == 0 {
		return state.FilterStoreEmpty, nil
	}
	return state.FilterOK, nil
}

func (f *fakeBackend) Filter() string { return f.filter }

func (f *fakeBackend) Counts() (int, int) {
	if f.filter == state.FilterAll {
		return len(f.quotes), len(f.quotes)
	}
	n := 0
	for _, q := range f.quotes {
		if q.Category == f.filter {
			n++
		}
	}
	return n, len(f.quotes)
}

func (f *fakeBackend) Sync(context.Context) (syncer.Result, error) {
	if f.syncErr != nil {
		return syncer.Result{Phase: syncer.Conflict}, f.syncErr
	}
	return syncer.Result{Phase: syncer.Online, Fetched: 10, Added: 2}, nil
}

func (f *fakeBackend) Resolve(_ context.Context, r syncer.Resolution) (syncer.Result, error) {
	f.resolved = append(f.resolved, r)
	f.syncErr = nil
	return syncer.Result{Phase: syncer.Online}, nil
}

func (f *fakeBackend) SyncState() syncer.State {
	return syncer.State{Phase: syncer.Idle, Online: true, AutoSync: f.autoSync}
}

func (f *fakeBackend) OnSyncChange(fn func(syncer.State)) func() {
	f.listener = fn
	return func() { f.listener = nil }
}

func (f *fakeBackend) SetAutoSync(enabled bool) error {
	f.autoSync = enabled
	return nil
}

func (f *fakeBackend) Export(string) (string, error) { return "/tmp/quotes-export.json", nil }
func (f *fakeBackend) ExportDir() string             { return "/tmp" }

func (f *fakeBackend) ImportFile(_ context.Context, path string) (codec.Report, error) {
	f.imported = path
	return codec.Report{Total: 3, Valid: 3, Added: 3}, nil
}

func (f *fakeBackend) ClearAll(context.Context) error {
	f.quotes = nil
	f.viewed = nil
	f.filter = state.FilterAll
	f.cleared = true
	return nil
}

func (f *fakeBackend) SetTheme(name string) error {
	f.theme = name
	return nil
}

func (f *fakeBackend) LogPath() string { return "/tmp/quoter.log" }

func newTestModel(t *testing.T, b *fakeBackend) Model {
	t.Helper()
	m := New(Options{Backend: b, Now: func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }})
	m, _ = step(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func step(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command, got nil")
	}
	return step(m, cmd())
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_RestoresLastViewedOnStart(t *testing.T) {
	b := newFakeBackend()
	last := quote.Quote{Text: "Remembered", Category: "life"}
	b.viewed = &last

	m := newTestModel(t, b)
	m, _ = run(t, m, restoreQuoteCmd(m.ctx, b))

	if !m.hasQuote || m.current.Text != "Remembered" || !m.restored {
		t.Fatalf("current = %#v restored=%v, want last viewed quote", m.current, m.restored)
	}
	if !strings.Contains(m.View(), "Remembered") {
		t.Fatalf("View does not show the restored quote")
	}
}

func TestModel_NextQuoteKey(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)

	m, cmd := step(m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = run(t, m, cmd)
	if !m.hasQuote || m.current.Text != b.quotes[0].Text {
		t.Fatalf("current = %#v, want %q", m.current, b.quotes[0].Text)
	}
	if m.restored {
		t.Fatalf("restored = true after a fresh draw")
	}
}

func TestModel_AddQuoteForm(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)

	m, _ = step(m, keyRunes("a"))
	if _, ok := m.modal.(addForm); !ok {
		t.Fatalf("modal = %T, want addForm", m.modal)
	}

	// Empty submit keeps the form open.
	m, cmd := step(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.modal == nil {
		t.Fatalf("empty submit closed the form")
	}

	m, _ = step(m, keyRunes("Stay curious"))
	m, _ = step(m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = step(m, keyRunes("Learning"))
	m, cmd = step(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.modal != nil {
		t.Fatalf("form still open after submit")
	}
	m, cmd = run(t, m, cmd)
	m, _ = run(t, m, cmd)

	if len(b.quotes) != 4 {
		t.Fatalf("backend has %d quotes, want 4", len(b.quotes))
	}
	if m.current.Text != "Stay curious" || m.current.Category != "learning" {
		t.Fatalf("current = %#v, want the added quote", m.current)
	}
	if m.total != 4 {
		t.Fatalf("total = %d, want 4", m.total)
	}
}

func TestModel_CycleFilter(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)

	m, cmd := step(m, keyRunes("f"))
	m, _ = run(t, m, cmd)
	if b.filter != "motivation" || m.filter != "motivation" {
		t.Fatalf("filter = %q (model %q), want motivation", b.filter, m.filter)
	}
	if m.filtered != 1 || m.total != 3 {
		t.Fatalf("counts = %d/%d, want 1/3", m.filtered, m.total)
	}
}

func TestModel_SyncConflictOpensChooser(t *testing.T) {
	b := newFakeBackend()
	b.syncErr = &quote.ConflictError{Conflicts: []quote.Conflict{{
		Local:  quote.Quote{Text: "Same", Category: "life"},
		Server: quote.Quote{Text: "Same", Category: "wisdom", Source: quote.SourceServer, ServerID: "2"},
	}}}
	m := newTestModel(t, b)

	m, cmd := step(m, keyRunes("s"))
	m, _ = run(t, m, cmd)
	if _, ok := m.modal.(conflictModal); !ok {
		t.Fatalf("modal = %T, want conflictModal", m.modal)
	}
	if !strings.Contains(m.View(), "use server") {
		t.Fatalf("conflict modal does not list choices")
	}

	m, cmd = step(m, keyRunes("m"))
	if m.modal != nil {
		t.Fatalf("modal still open after choosing")
	}
	m, cmd = run(t, m, cmd) // resolveChoiceMsg
	m, _ = run(t, m, cmd)   // resolvedMsg

	if len(b.resolved) != 1 || b.resolved[0] != syncer.Merge {
		t.Fatalf("resolved = %v, want [merge]", b.resolved)
	}
	if !strings.HasPrefix(m.flash.text, "Resolve done") {
		t.Fatalf("flash = %q, want resolve summary", m.flash.text)
	}
}

func TestModel_ClearRequiresConfirmation(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)

	m, _ = step(m, keyRunes("D"))
	m, _ = step(m, keyRunes("n"))
	if b.cleared || m.modal != nil {
		t.Fatalf("cleared=%v modal=%T after declining", b.cleared, m.modal)
	}

	m, _ = step(m, keyRunes("D"))
	m, cmd := step(m, keyRunes("y"))
	m, cmd = run(t, m, cmd)
	m, _ = run(t, m, cmd)

	if !b.cleared {
		t.Fatalf("ClearAll not called")
	}
	if m.hasQuote || m.total != 0 {
		t.Fatalf("hasQuote=%v total=%d after clear", m.hasQuote, m.total)
	}
	if !strings.Contains(m.View(), "No quotes yet") {
		t.Fatalf("View does not show the empty state")
	}
}

func TestModel_ImportForm(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)

	m, _ = step(m, keyRunes("i"))
	m, _ = step(m, keyRunes("in.json"))
	m, cmd := step(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = run(t, m, cmd)
	m, _ = run(t, m, cmd)

	if b.imported != "/tmp/in.json" {
		t.Fatalf("imported path = %q, want /tmp/in.json", b.imported)
	}
	if !strings.HasPrefix(m.flash.text, "Imported 3") {
		t.Fatalf("flash = %q, want import summary", m.flash.text)
	}
}

func TestModel_AutoSyncToggleAndStateUpdates(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)

	m, cmd := step(m, keyRunes("A"))
	m, _ = run(t, m, cmd)
	if !b.autoSync || !m.syncState.AutoSync {
		t.Fatalf("auto-sync = %v (model %v), want on", b.autoSync, m.syncState.AutoSync)
	}

	b.listener(syncer.State{Phase: syncer.Offline, AutoSync: true})
	m, _ = run(t, m, waitSyncStateCmd(m.syncCh))
	if m.syncState.Phase != syncer.Offline {
		t.Fatalf("phase = %s, want offline", m.syncState.Phase)
	}
	if !strings.Contains(m.View(), "OFFLINE") {
		t.Fatalf("header does not show the offline phase")
	}
}

func TestModel_ThemeCyclePersists(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)

	m, _ = step(m, keyRunes("T"))
	if m.theme.Name != "Kanagawa" || b.theme != "Kanagawa" {
		t.Fatalf("theme = %q (saved %q), want Kanagawa", m.theme.Name, b.theme)
	}
}

func TestModel_FlashExpires(t *testing.T) {
	b := newFakeBackend()
	m := newTestModel(t, b)

	m, cmd := step(m, keyRunes("x"))
	m, _ = run(t, m, cmd)
	if !strings.Contains(m.flash.text, "quotes-export.json") {
		t.Fatalf("flash = %q, want export path", m.flash.text)
	}
	m, _ = step(m, tickMsg(m.flash.at.Add(StatusMessageTTL+time.Second)))
	if m.flash.text != "" {
		t.Fatalf("flash = %q, want expired", m.flash.text)
	}
}
