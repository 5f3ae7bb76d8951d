package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/quoter/internal/codec"
	"github.com/five82/quoter/internal/quote"
	"github.com/five82/quoter/internal/state"
	"github.com/five82/quoter/internal/syncer"
)

// View represents the current active view.
type View int

const (
	ViewQuote View = iota
	ViewLogs
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Backend   Backend
	ThemeName string
	Now       func() time.Time
}

type flash struct {
	text    string
	isError bool
	at      time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx     context.Context
	backend Backend
	keys    keyMap
	help    help.Model
	clock   func() time.Time

	// UI state
	theme  Theme
	view   View
	width  int
	height int
	ready  bool
	now    time.Time

	// Quote state
	current  quote.Quote
	hasQuote bool
	restored bool
	filter   string
	filtered int
	total    int

	// Sync state
	syncState  syncer.State
	syncCh     chan syncer.State
	cancelSync func()

	// Log state
	logViewport viewport.Model
	logState    logState

	// Overlays
	showHelp bool
	modal    Modal
	flash    flash
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	m := Model{
		ctx:     ctx,
		backend: opts.Backend,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		clock:   clock,
		theme:   GetTheme(themeName),
		view:    ViewQuote,
		now:     clock(),
		syncCh:  make(chan syncer.State, 16),
	}
	if m.backend != nil {
		ch := m.syncCh
		m.cancelSync = m.backend.OnSyncChange(func(s syncer.State) {
			select {
			case ch <- s:
			default:
			}
		})
		m.syncState = m.backend.SyncState()
		m.refreshCounts()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(DefaultUIInterval),
		restoreQuoteCmd(m.ctx, m.backend),
		waitSyncStateCmd(m.syncCh),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.resizeLogViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case quoteMsg:
		m.restored = msg.restored
		if msg.err != nil {
			m.setError("Could not save last viewed quote", msg.err)
		}
		m.current, m.hasQuote = msg.q, msg.ok
		m.refreshCounts()
		return m, nil

	case addSubmitMsg:
		return m, addQuoteCmd(m.ctx, m.backend, msg.text, msg.category)

	case addedMsg:
		if msg.err != nil {
			m.setError("Add failed", msg.err)
			return m, nil
		}
		m.setFlash(fmt.Sprintf("Added quote to %s", msg.q.Category))
		m.current, m.hasQuote, m.restored = msg.q, true, false
		m.refreshCounts()
		return m, nil

	case filterMsg:
		if msg.err != nil {
			m.setError("Filter not saved", msg.err)
		}
		m.refreshCounts()
		switch msg.status {
		case state.FilterStoreEmpty:
			m.hasQuote = false
			return m, nil
		case state.FilterNoQuotesInCategory:
			m.setFlash("No quotes in " + msg.category)
		}
		return m, randomQuoteCmd(m.ctx, m.backend)

	case syncDoneMsg:
		return m.handleSyncDone(msg.result, msg.err, "Sync")

	case resolveChoiceMsg:
		return m, resolveCmd(m.ctx, m.backend, msg.resolution)

	case resolvedMsg:
		return m.handleSyncDone(msg.result, msg.err, "Resolve")

	case syncStateMsg:
		m.syncState = syncer.State(msg)
		m.refreshCounts()
		return m, waitSyncStateCmd(m.syncCh)

	case autoSyncMsg:
		if msg.err != nil {
			m.setError("Auto-sync preference not saved", msg.err)
		} else if msg.enabled {
			m.setFlash("Auto-sync enabled")
		} else {
			m.setFlash("Auto-sync disabled")
		}
		m.syncState = m.backend.SyncState()
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.setError("Export failed", msg.err)
		} else {
			m.setFlash("Exported to " + msg.path)
		}
		return m, nil

	case importSubmitMsg:
		return m, importCmd(m.ctx, m.backend, msg.path)

	case importedMsg:
		return m.handleImported(msg)

	case clearConfirmedMsg:
		return m, clearCmd(m.ctx, m.backend)

	case clearedMsg:
		if msg.err != nil {
			m.setError("Clear incomplete", msg.err)
		} else {
			m.setFlash("All data cleared")
		}
		m.current, m.hasQuote, m.restored = quote.Quote{}, false, false
		m.syncState = m.backend.SyncState()
		m.refreshCounts()
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.modal != nil {
		return m.updateModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if err := m.backend.SetTheme(m.theme.Name); err != nil {
			m.setError("Theme not saved", err)
		}
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		if m.view == ViewLogs {
			m.view = ViewQuote
			return m, nil
		}
		m.view = ViewLogs
		return m, loadLogsCmd(m.backend.LogPath())

	case key.Matches(msg, m.keys.Escape):
		m.view = ViewQuote
		return m, nil
	}

	if m.view == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m.handleQuoteKey(msg)
}

func (m Model) handleQuoteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextQuote):
		return m, randomQuoteCmd(m.ctx, m.backend)

	case key.Matches(msg, m.keys.AddQuote):
		m.modal = newAddForm(m.theme)
		return m, nil

	case key.Matches(msg, m.keys.CycleFilter):
		next := nextFilter(m.filter, m.backend.Categories())
		return m, setFilterCmd(m.ctx, m.backend, next)

	case key.Matches(msg, m.keys.Sync):
		m.setFlash("Syncing…")
		return m, syncCmd(m.ctx, m.backend)

	case key.Matches(msg, m.keys.ToggleAutoSync):
		return m, setAutoSyncCmd(m.backend, !m.syncState.AutoSync)

	case key.Matches(msg, m.keys.Conflicts):
		pending := m.backend.SyncState().PendingConflicts
		if len(pending) == 0 {
			m.setFlash("No pending conflicts")
			return m, nil
		}
		m.modal = newConflictModal(pending)
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(m.backend)

	case key.Matches(msg, m.keys.Import):
		m.modal = newImportForm(m.theme, m.backend.ExportDir())
		return m, nil

	case key.Matches(msg, m.keys.ClearAll):
		m.modal = confirmModal{
			title:  "Clear all data?",
			body:   "Every quote, the filter and sync state will be removed.",
			onYes:  clearConfirmedMsg{},
			danger: true,
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
	} else {
		m.modal = next
	}
	return m, cmd
}

func (m Model) handleSyncDone(res syncer.Result, err error, op string) (tea.Model, tea.Cmd) {
	m.syncState = m.backend.SyncState()
	m.refreshCounts()

	var conflictErr *quote.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		m.modal = newConflictModal(conflictErr.Conflicts)
		return m, nil
	case errors.Is(err, syncer.ErrSyncInProgress):
		m.setFlash("Sync already running")
		return m, nil
	case errors.Is(err, syncer.ErrSuperseded):
		m.setFlash(op + " discarded after reset")
		return m, nil
	case err != nil:
		m.setError(op+" failed", err)
		return m, nil
	}

	msg := fmt.Sprintf("%s done: %d fetched, %d added", op, res.Fetched, res.Added)
	if res.Push.Attempted > 0 {
		msg += fmt.Sprintf(", %d/%d pushed", res.Push.Pushed, res.Push.Attempted)
	}
	m.setFlash(msg)
	if !m.hasQuote && m.total > 0 {
		return m, randomQuoteCmd(m.ctx, m.backend)
	}
	return m, nil
}

func (m Model) handleImported(msg importedMsg) (tea.Model, tea.Cmd) {
	r := msg.report
	var (
		invalid    *quote.ValidationError
		storageErr *quote.StorageError
	)
	if errors.As(msg.err, &invalid) && !errors.As(msg.err, &storageErr) && r.Valid > 0 {
		// Some entries were skipped; the rest went in.
		msg.err = nil
	}
	if msg.err != nil {
		var parseErr *codec.ParseError
		switch {
		case errors.As(msg.err, &parseErr):
			m.setError("Import failed: not a quote export", msg.err)
		case errors.Is(msg.err, codec.ErrEmptyImport):
			m.setError("Import failed: no valid quotes", msg.err)
		default:
			m.setError("Import failed", msg.err)
		}
		return m, nil
	}
	m.setFlash(fmt.Sprintf("Imported %d (skipped %d, duplicates %d)", r.Added, r.Skipped, r.Duplicates))
	m.refreshCounts()
	if !m.hasQuote && m.total > 0 {
		return m, randomQuoteCmd(m.ctx, m.backend)
	}
	return m, nil
}

// handleTick refreshes clock-driven state and expires the flash line.
func (m Model) handleTick(t time.Time) (tea.Model, tea.Cmd) {
	m.now = t
	if m.flash.text != "" && t.Sub(m.flash.at) > StatusMessageTTL {
		m.flash = flash{}
	}
	cmds := []tea.Cmd{tickCmd(DefaultUIInterval)}
	if m.view == ViewLogs && m.logState.follow {
		cmds = append(cmds, loadLogsCmd(m.backend.LogPath()))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) refreshCounts() {
	m.filter = m.backend.Filter()
	m.filtered, m.total = m.backend.Counts()
}

func (m *Model) setFlash(text string) {
	m.flash = flash{text: text, at: m.clock()}
}

func (m *Model) setError(prefix string, err error) {
	m.flash = flash{text: prefix + ": " + err.Error(), isError: true, at: m.clock()}
}

func (m Model) contentHeight() int {
	h := m.height - 2 // header + footer
	if h < 1 {
		return 1
	}
	return h
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.view == ViewLogs {
		b.WriteString(m.renderLogs())
	} else {
		b.WriteString(m.renderQuote())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// Messages

type tickMsg time.Time

type quoteMsg struct {
	q        quote.Quote
	ok       bool
	restored bool
	err      error
}

type addedMsg struct {
	q   quote.Quote
	err error
}

type filterMsg struct {
	category string
	status   state.FilterStatus
	err      error
}

type syncDoneMsg struct {
	result syncer.Result
	err    error
}

type resolvedMsg struct {
	result syncer.Result
	err    error
}

type syncStateMsg syncer.State

type autoSyncMsg struct {
	enabled bool
	err     error
}

type exportedMsg struct {
	path string
	err  error
}

type importedMsg struct {
	report codec.Report
	err    error
}

type clearConfirmedMsg struct{}

type clearedMsg struct {
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// restoreQuoteCmd shows the last viewed quote, or a random one when the
// session holds none, which is always the case on a fresh process.
func restoreQuoteCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		if q, ok := b.LastViewed(ctx); ok {
			return quoteMsg{q: q, ok: true, restored: true}
		}
		q, ok, err := b.ShowRandom(ctx)
		return quoteMsg{q: q, ok: ok, err: err}
	}
}

func randomQuoteCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		q, ok, err := b.ShowRandom(ctx)
		return quoteMsg{q: q, ok: ok, err: err}
	}
}

func addQuoteCmd(ctx context.Context, b Backend, text, category string) tea.Cmd {
	return func() tea.Msg {
		q, err := b.AddQuote(ctx, text, category)
		return addedMsg{q: q, err: err}
	}
}

func setFilterCmd(ctx context.Context, b Backend, category string) tea.Cmd {
	return func() tea.Msg {
		status, err := b.SetFilter(ctx, category)
		return filterMsg{category: category, status: status, err: err}
	}
}

func syncCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		res, err := b.Sync(ctx)
		return syncDoneMsg{result: res, err: err}
	}
}

func resolveCmd(ctx context.Context, b Backend, r syncer.Resolution) tea.Cmd {
	return func() tea.Msg {
		res, err := b.Resolve(ctx, r)
		return resolvedMsg{result: res, err: err}
	}
}

func waitSyncStateCmd(ch <-chan syncer.State) tea.Cmd {
	return func() tea.Msg {
		return syncStateMsg(<-ch)
	}
}

func setAutoSyncCmd(b Backend, enabled bool) tea.Cmd {
	return func() tea.Msg {
		return autoSyncMsg{enabled: enabled, err: b.SetAutoSync(enabled)}
	}
}

func exportCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		path, err := b.Export("")
		return exportedMsg{path: path, err: err}
	}
}

func importCmd(ctx context.Context, b Backend, path string) tea.Cmd {
	return func() tea.Msg {
		report, err := b.ImportFile(ctx, path)
		return importedMsg{report: report, err: err}
	}
}

func clearCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		return clearedMsg{err: b.ClearAll(ctx)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	if m.cancelSync != nil {
		defer m.cancelSync()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
