package ui

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/javiermolinar/clashmap/internal/logging"
	"github.com/javiermolinar/clashmap/internal/tui"
)

func (a *App) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive conflict grid",
		Long: `Open a full-screen grid of the visible window. Move the cursor with the
arrow keys, pick a record up with enter and drop it on another hour, or press
a to review and apply an auto-adjust plan.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runTUI()
		},
	}
}

// DebugLogPath is where the TUI logs when --debug is set.
const DebugLogPath = "clashmap-debug.log"

func (a *App) runTUI() error {
	if err := a.ensureStore(); err != nil {
		return err
	}

	// stderr is drawn over by the alternate screen.
	a.logger = logging.Nop()
	if a.debug {
		l, err := logging.NewWithOutput(a.config.Log.Env, "debug", DebugLogPath)
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()
		a.logger = l
	}

	m := tui.New(tui.Deps{
		Load:        a.buildBoard,
		Coordinator: a.coordinator,
		Strategy:    a.strategy,
		Palette:     a.palette(),
		Logger:      a.logger,
	})
	return tui.Run(m)
}

// interactive reports whether cmd writes to a terminal.
func interactive(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
