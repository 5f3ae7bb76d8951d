package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/quoter/internal/codec"
	"github.com/five82/quoter/internal/config"
	"github.com/five82/quoter/internal/kv"
	"github.com/five82/quoter/internal/logging"
	"github.com/five82/quoter/internal/prefs"
	"github.com/five82/quoter/internal/quote"
	"github.com/five82/quoter/internal/remote"
	"github.com/five82/quoter/internal/schedule"
	"github.com/five82/quoter/internal/session"
	"github.com/five82/quoter/internal/state"
	"github.com/five82/quoter/internal/syncer"
)

// storageQuota caps a single stored value, mirroring a browser storage quota.
const storageQuota = 5 << 20

// Options configure the quoter application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/quoter/prefs.toml
	Verbose    bool
	// LogToStderr skips the log file; used by one-shot commands in tests.
	LogToStderr bool
}

// App is the explicit application state shared by the CLI and the TUI.
type App struct {
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Log       *zap.Logger

	Store   *state.Store
	Session *session.Store
	Client  *remote.Client
	Engine  *syncer.Engine
	Pinger  *schedule.Pinger

	Loaded state.LoadReport

	durable kv.Store
	now     func() time.Time
}

// New loads config and prefs, opens storage and loads the quote store.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	userPrefs, _ := prefs.Load(opts.PrefsPath)

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logPath := cfg.LogPath()
	if opts.LogToStderr {
		logPath = ""
	}
	logger, err := logging.New(level, logPath)
	if err != nil {
		return nil, err
	}

	durable, err := kv.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage, err)
	}
	sess, err := session.NewMemory()
	if err != nil {
		_ = durable.Close()
		return nil, err
	}
	client, err := remote.NewClient(cfg.RemoteURL, remote.WithLogger(logger.Named("remote")))
	if err != nil {
		_ = durable.Close()
		_ = sess.Close()
		return nil, fmt.Errorf("init remote client: %w", err)
	}

	return assemble(ctx, cfg, userPrefs, opts.PrefsPath, logger, kv.WithQuota(durable, storageQuota), sess, client), nil
}

func assemble(ctx context.Context, cfg config.Config, p prefs.Prefs, prefsPath string, logger *zap.Logger,
	durable kv.Store, sess *session.Store, client *remote.Client) *App {
	store := state.New(durable, state.WithLogger(logger.Named("store")))
	report := store.Load(ctx)
	if report.Warning != nil {
		logger.Warn("quote storage degraded", zap.Error(report.Warning))
	}

	pinger := schedule.NewPinger(client.Ping, cfg.SyncInterval)
	engine := syncer.New(store, client,
		syncer.WithRecorder(sess),
		syncer.WithNetwork(pinger),
		syncer.WithLogger(logger.Named("sync")),
		syncer.WithInterval(cfg.SyncInterval),
		syncer.WithLimit(cfg.RemoteLimit),
	)

	logger.Info("quoter started",
		zap.String("storage", cfg.Storage),
		zap.String("data_dir", cfg.DataDir),
		zap.String("remote", client.BaseURL()),
		zap.Int("quotes", report.Count),
		zap.Bool("defaults", report.FromDefaults))

	return &App{
		Config:    cfg,
		Prefs:     p,
		PrefsPath: prefsPath,
		Log:       logger,
		Store:     store,
		Session:   sess,
		Client:    client,
		Engine:    engine,
		Pinger:    pinger,
		Loaded:    report,
		durable:   durable,
		now:       time.Now,
	}
}

// Start turns on the background pieces the TUI relies on: connectivity
// probing and, when enabled, auto-sync.
func (a *App) Start(ctx context.Context) {
	a.Engine.Start(ctx)
	go a.Pinger.Run(ctx)
	if a.Prefs.AutoSyncOr(a.Config.AutoSync) {
		a.Engine.SetAutoSync(true)
	}
}

// Close stops background work and releases storage.
func (a *App) Close() error {
	a.Engine.Close()
	err := errors.Join(a.durable.Close(), a.Session.Close())
	_ = a.Log.Sync()
	return err
}

// ShowRandom picks a quote under the current filter and records it as last viewed.
func (a *App) ShowRandom(ctx context.Context) (quote.Quote, bool, error) {
	q, ok := a.Store.PickRandom()
	if !ok {
		return quote.Quote{}, false, nil
	}
	return q, true, a.Session.SetLastViewed(ctx, q, a.now())
}

// LastViewed returns the quote shown most recently in this session.
func (a *App) LastViewed(ctx context.Context) (quote.Quote, bool) {
	v, ok := a.Session.LastViewed(ctx)
	return v.Quote, ok
}

// AddQuote validates and stores a new local quote.
func (a *App) AddQuote(ctx context.Context, text, category string) (quote.Quote, error) {
	q, err := a.Store.Add(ctx, text, category)
	if err == nil {
		a.Log.Info("quote added", zap.String("category", q.Category))
	}
	return q, err
}

// Categories lists the distinct categories in the store.
func (a *App) Categories() []string { return a.Store.Categories() }

// SetFilter selects a category or "all".
func (a *App) SetFilter(ctx context.Context, category string) (state.FilterStatus, error) {
	return a.Store.SetFilter(ctx, category)
}

// Filter returns the current filter.
func (a *App) Filter() string { return a.Store.Filter() }

// Counts returns the filtered and total quote counts.
func (a *App) Counts() (filtered, total int) {
	return len(a.Store.Filtered()), a.Store.Len()
}

// Sync runs one sync cycle.
func (a *App) Sync(ctx context.Context) (syncer.Result, error) { return a.Engine.Sync(ctx) }

// Resolve settles pending conflicts.
func (a *App) Resolve(ctx context.Context, r syncer.Resolution) (syncer.Result, error) {
	return a.Engine.Resolve(ctx, r)
}

// SyncState returns the engine state.
func (a *App) SyncState() syncer.State { return a.Engine.State() }

// OnSyncChange forwards engine state changes to fn.
func (a *App) OnSyncChange(fn func(syncer.State)) func() { return a.Engine.OnChange(fn) }

// SetAutoSync toggles auto-sync and remembers the choice in prefs.
func (a *App) SetAutoSync(enabled bool) error {
	a.Engine.SetAutoSync(enabled)
	a.Prefs = a.Prefs.WithAutoSync(enabled)
	if err := prefs.Save(a.PrefsPath, a.Prefs); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}

// SetTheme remembers the TUI theme in prefs.
func (a *App) SetTheme(name string) error {
	a.Prefs.Theme = name
	if err := prefs.Save(a.PrefsPath, a.Prefs); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}

// Export writes the collection into dir, or the configured export dir when empty.
func (a *App) Export(dir string) (string, error) {
	if dir == "" {
		dir = a.Config.ExportDir()
	}
	path, err := codec.WriteExport(dir, a.Store.Quotes(), a.now())
	if err != nil {
		return "", err
	}
	a.Log.Info("quotes exported", zap.String("path", path), zap.Int("count", a.Store.Len()))
	return path, nil
}

// ImportFile merges a JSON export into the store.
func (a *App) ImportFile(ctx context.Context, path string) (codec.Report, error) {
	report, err := codec.ImportFile(ctx, path, a.Store)
	a.Log.Info("quotes imported",
		zap.String("path", path),
		zap.Int("valid", report.Valid),
		zap.Int("skipped", report.Skipped),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("added", report.Added),
		zap.Error(err))
	return report, err
}

// ClearAll purges durable and session storage and resets filter and sync
// state. Auto-sync is switched off in prefs too, so the reset outlives a
// restart.
func (a *App) ClearAll(ctx context.Context) error {
	// Reset first so a cycle in flight cannot merge into the cleared store.
	a.Engine.Reset()
	errs := []error{a.Store.Clear(ctx), a.Session.Clear(ctx)}
	if a.Prefs.AutoSyncOr(a.Config.AutoSync) {
		a.Prefs = a.Prefs.WithAutoSync(false)
		if err := prefs.Save(a.PrefsPath, a.Prefs); err != nil {
			errs = append(errs, fmt.Errorf("save prefs: %w", err))
		}
	}
	err := errors.Join(errs...)
	a.Log.Warn("all data cleared", zap.Error(err))
	return err
}

// ExportDir is where exports land by default.
func (a *App) ExportDir() string { return a.Config.ExportDir() }

// LogPath is where the log pane reads from.
func (a *App) LogPath() string { return a.Config.LogPath() }

// Theme returns the saved theme name.
func (a *App) Theme() string { return a.Prefs.Theme }
