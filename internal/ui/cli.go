package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/clashmap/internal/board"
	"github.com/javiermolinar/clashmap/internal/config"
	"github.com/javiermolinar/clashmap/internal/db"
	"github.com/javiermolinar/clashmap/internal/grid"
	"github.com/javiermolinar/clashmap/internal/logging"
	"github.com/javiermolinar/clashmap/internal/normalize"
	"github.com/javiermolinar/clashmap/internal/reschedule"
	"github.com/javiermolinar/clashmap/internal/source"
	"github.com/javiermolinar/clashmap/internal/window"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	store      source.Store
	sqlite     *db.SQLite // set when the store was opened by the app
	config     *config.Config
	configPath string
	logger     *zap.Logger
	root       *cobra.Command
	now        func() time.Time
	debug      bool
}

// Option configures an App.
type Option func(*App)

// WithStore uses an already open store instead of the configured database.
func WithStore(s source.Store) Option {
	return func(a *App) { a.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) { a.logger = logging.OrNop(l) }
}

// WithConfigPath sets the file the config command reads and writes.
func WithConfigPath(path string) Option {
	return func(a *App) { a.configPath = path }
}

// WithClock injects the source of "now".
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{
		config:     cfg,
		configPath: config.DefaultConfigPath(),
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "clashmap",
		Short: "Find and resolve clashes across schedule sources",
		Long: `Clashmap merges personal, department, project and company schedules,
finds overlapping entries, and helps move them apart.

Run without a subcommand to open the interactive grid, or to print it when
output is not a terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !a.debug {
				return nil
			}
			l, err := logging.New(a.config.Log.Env, "debug")
			if err != nil {
				return err
			}
			a.logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interactive(cmd) {
				return a.runTUI()
			}
			return a.runGrid(cmd, false)
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (stderr, or clashmap-debug.log in the TUI)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.conflictsCmd())
	a.root.AddCommand(a.gridCmd())
	a.root.AddCommand(a.moveCmd())
	a.root.AddCommand(a.adjustCmd())
	a.root.AddCommand(a.watchCmd())
	a.root.AddCommand(a.summaryCmd())
	a.root.AddCommand(a.tuiCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clashmap %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// Close releases the store if the app opened it.
func (a *App) Close() error {
	if a.sqlite != nil {
		return a.sqlite.Close()
	}
	return nil
}

// ensureStore opens the configured database on first use.
func (a *App) ensureStore() error {
	if a.store != nil {
		return nil
	}
	if err := ensureDir(a.config.Storage.DBPath); err != nil {
		return err
	}
	s, err := db.New(a.config.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.sqlite = s
	a.store = s
	return nil
}

func (a *App) window() (window.Window, error) {
	loc, err := a.config.Location()
	if err != nil {
		return window.Window{}, err
	}
	return window.New(a.now(), a.config.Window.Days, a.config.Window.HourStart, a.config.Window.HourEnd, loc)
}

func (a *App) adapter() (*normalize.Adapter, error) {
	loc, err := a.config.Location()
	if err != nil {
		return nil, err
	}
	return normalize.New(
		normalize.WithLocation(loc),
		normalize.WithDefaultDuration(a.config.DefaultDuration()),
		normalize.WithLogger(a.logger),
	), nil
}

// buildBoard loads every source and computes the current board.
func (a *App) buildBoard(ctx context.Context) (*board.Board, error) {
	if err := a.ensureStore(); err != nil {
		return nil, err
	}
	win, err := a.window()
	if err != nil {
		return nil, err
	}
	adapter, err := a.adapter()
	if err != nil {
		return nil, err
	}

	b := board.Builder{
		Store:   a.store,
		Adapter: adapter,
		Mapper:  grid.NewMapper(a.config.Window.MinRenderHours),
		Logger:  a.logger,
	}
	return b.Build(ctx, win, a.now())
}

func (a *App) coordinator(b *board.Board) (*reschedule.Coordinator, error) {
	adapter, err := a.adapter()
	if err != nil {
		return nil, err
	}
	return reschedule.NewCoordinator(a.store, adapter, b.All,
		reschedule.WithTimeout(a.config.Timeout()),
		reschedule.WithLogger(a.logger),
		reschedule.WithClock(a.now),
	), nil
}

func (a *App) strategy(win window.Window) reschedule.Strategy {
	if a.config.Reschedule.Strategy == config.StrategyEarliest {
		return reschedule.EarliestFit{Window: win, Gap: a.config.Gap(), NotBefore: a.now()}
	}
	return reschedule.GreedyTailAppend{Gap: a.config.Gap(), NotBefore: a.now()}
}
