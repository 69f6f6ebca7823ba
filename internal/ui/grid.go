package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/clashmap/internal/theme"
	"github.com/javiermolinar/clashmap/internal/tui/view"
)

func (a *App) gridCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the conflict grid for the visible window",
		Long: `Print one block per week with a column per day and a row per visible hour.
Clashing records are highlighted with the theme's conflict colour.`,
		Example: `  clashmap grid
  clashmap grid --no-color`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGrid(cmd, noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colours")

	return cmd
}

func (a *App) runGrid(cmd *cobra.Command, noColor bool) error {
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
		DisableColor()
	}

	b, err := a.buildBoard(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), view.RenderBoard(b, a.palette(), termWidth()))
	return nil
}

func (a *App) palette() *theme.Palette {
	th, err := theme.Load(a.config.UI.Theme)
	if err != nil {
		a.logger.Sugar().Warnw("falling back to default theme", "theme", a.config.UI.Theme, "error", err)
	}
	return theme.NewPalette(th)
}
