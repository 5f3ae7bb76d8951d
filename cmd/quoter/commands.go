package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/quoter/internal/app"
	"github.com/five82/quoter/internal/logging"
	"github.com/five82/quoter/internal/quote"
	"github.com/five82/quoter/internal/remote"
	"github.com/five82/quoter/internal/state"
	"github.com/five82/quoter/internal/syncer"
)

type globalOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "quoter",
		Short: "Random quotes with categories, import/export and remote sync",
		Long: `quoter keeps a local collection of categorized quotes, shows them at
random, and syncs with a remote endpoint.

Run without arguments to start the terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), g.appOptions())
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ~/.config/quoter/config.toml)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRandomCmd(g),
		newAddCmd(g),
		newCategoriesCmd(g),
		newFilterCmd(g),
		newListCmd(g),
		newExportCmd(g),
		newImportCmd(g),
		newSyncCmd(g),
		newClearCmd(g),
		newServeRemoteCmd(g),
	)
	return root
}

func (g *globalOptions) appOptions() app.Options {
	return app.Options{ConfigPath: g.configPath, Verbose: g.verbose}
}

// withApp opens the application for one command and closes it afterwards.
func (g *globalOptions) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := app.New(cmd.Context(), g.appOptions())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	if w := a.Loaded.Warning; w != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
	}
	return fn(a)
}

func newRandomCmd(g *globalOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print a random quote from the active category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withApp(cmd, func(a *app.App) error {
				ctx := cmd.Context()
				if category != "" {
					status, err := a.SetFilter(ctx, category)
					if err != nil {
						return err
					}
					if status == state.FilterNoQuotesInCategory {
						fmt.Fprintf(cmd.ErrOrStderr(), "no quotes in %q, drawing from all categories\n", a.Filter())
					}
				}
				q, ok, err := a.ShowRandom(ctx)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "No quotes yet. Add one with `quoter add` or import a file.")
					return nil
				}
				printQuote(cmd.OutOrStdout(), q)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "switch to this category before drawing")
	return cmd
}

func newAddCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT CATEGORY",
		Short: "Add a local quote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(a *app.App) error {
				q, err := a.AddQuote(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added to %s (%d quotes)\n", q.Category, a.Store.Len())
				return nil
			})
		},
	}
}

func newCategoriesCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withApp(cmd, func(a *app.App) error {
				for _, c := range a.Categories() {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			})
		},
	}
}

func newFilterCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filter [CATEGORY]",
		Short: "Show or set the active category (\"all\" clears it)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(a *app.App) error {
				out := cmd.OutOrStdout()
				status := a.Store.Status()
				if len(args) == 1 {
					var err error
					status, err = a.SetFilter(cmd.Context(), args[0])
					if err != nil {
						return err
					}
				}
				filtered, total := a.Counts()
				fmt.Fprintf(out, "Filter: %s (%d of %d quotes)\n", a.Filter(), filtered, total)
				if status != state.FilterOK {
					fmt.Fprintf(out, "Note: %s\n", status)
				}
				return nil
			})
		},
	}
}

func newListCmd(g *globalOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotes under the active category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withApp(cmd, func(a *app.App) error {
				quotes := a.Store.Filtered()
				if all {
					quotes = a.Store.Quotes()
				}
				for _, q := range quotes {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", q.Category, q.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "ignore the active category")
	return cmd
}

func newExportCmd(g *globalOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection to a dated JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withApp(cmd, func(a *app.App) error {
				path, err := a.Export(dir)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default <data_dir>/exports)")
	return cmd
}

func newImportCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Merge quotes from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(a *app.App) error {
				r, err := a.ImportFile(cmd.Context(), args[0])
				var (
					invalid    *quote.ValidationError
					storageErr *quote.StorageError
				)
				if errors.As(err, &invalid) && !errors.As(err, &storageErr) && r.Valid > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
					err = nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d (valid %d, skipped %d, duplicates %d)\n",
					r.Added, r.Valid, r.Skipped, r.Duplicates)
				return nil
			})
		},
	}
}

func newSyncCmd(g *globalOptions) *cobra.Command {
	var resolve string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle against the remote",
		Long: `Fetches remote quotes, merges what is missing locally and pushes local
quotes. When a remote quote shares its text with a local one the cycle stops;
pass --resolve to settle those conflicts in the same run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resolution syncer.Resolution
			if resolve != "" {
				r, err := syncer.ParseResolution(resolve)
				if err != nil {
					return err
				}
				resolution = r
			}
			return g.withApp(cmd, func(a *app.App) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()

				res, err := a.Sync(ctx)
				var conflictErr *quote.ConflictError
				if errors.As(err, &conflictErr) {
					printConflicts(out, conflictErr.Conflicts)
					if resolve == "" {
						return fmt.Errorf("%d conflict(s) pending; rerun with --resolve server|local|merge", len(conflictErr.Conflicts))
					}
					res, err = a.Resolve(ctx, resolution)
				}
				printResult(out, res)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&resolve, "resolve", "", "settle conflicts with server, local or merge")
	return cmd
}

func newClearCmd(g *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored quote, the filter and sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			return g.withApp(cmd, func(a *app.App) error {
				if err := a.ClearAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All data cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

func newServeRemoteCmd(g *globalOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-remote",
		Short: "Serve an in-memory stand-in for the remote quote endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := "info"
			if g.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, "")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			srv := remote.NewServer(remote.DefaultSeed(), logger.Named("remote"))
			logger.Info("point remote_url at this server", zap.String("url", "http://"+addr))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3000", "listen address")
	return cmd
}

func printQuote(w io.Writer, q quote.Quote) {
	fmt.Fprintf(w, "“%s”\n  [%s]", q.Text, q.Category)
	if q.FromServer() {
		fmt.Fprint(w, " (server)")
	}
	fmt.Fprintln(w)
}

func printConflicts(w io.Writer, conflicts []quote.Conflict) {
	fmt.Fprintf(w, "%d conflict(s):\n", len(conflicts))
	for _, c := range conflicts {
		fmt.Fprintf(w, "  %s\n    local: %s  server: %s\n", strings.TrimSpace(c.Local.Text), c.Local.Category, c.Server.Category)
	}
}

func printResult(w io.Writer, res syncer.Result) {
	fmt.Fprintf(w, "Sync %s: fetched %d, added %d", res.Phase, res.Fetched, res.Added)
	if res.Push.Attempted > 0 {
		fmt.Fprintf(w, ", pushed %d/%d", res.Push.Pushed, res.Push.Attempted)
	}
	fmt.Fprintln(w)
}
