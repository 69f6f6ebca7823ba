package ui

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/clashmap/internal/reschedule"
)

func (a *App) adjustCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Plan or apply moves that resolve every conflict",
		Long: `For each conflict group, keep one record in place and move the others
to the first free time after everything else, separated by the configured gap.

A completed record stays in place if the group has one; otherwise the
highest priority, earliest record stays. Completed records are never moved.

Without --apply the plan is only printed.`,
		Example: `  clashmap adjust
  clashmap adjust --apply`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.buildBoard(cmd.Context())
			if err != nil {
				return err
			}
			coord, err := a.coordinator(b)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			loc := b.Window.Location
			moves := coord.Plan(b.Window, a.strategy(b.Window))
			if len(moves) == 0 {
				fmt.Fprintln(out, formatDone("Nothing to adjust."))
				return nil
			}

			if !apply {
				fmt.Fprintln(out, formatHeader(fmt.Sprintf("Planned %s:", pluralize(len(moves), "move"))))
				for _, m := range moves {
					fmt.Fprintf(out, "  %s\n", formatMove(m, loc))
				}
				fmt.Fprintln(out, formatMuted("\nRun with --apply to write these changes."))
				return nil
			}

			applied, err := coord.Apply(cmd.Context(), moves)
			for _, m := range applied {
				fmt.Fprintf(out, "  %s %s\n", formatDone("✓"), formatMove(m, loc))
			}
			if err != nil {
				a.logger.Error("auto-adjust stopped",
					zap.Int("applied", len(applied)),
					zap.Int("planned", len(moves)),
					zap.String("kind", reschedule.ErrorKind(err)),
				)
				return fmt.Errorf("applied %d of %d moves: %w", len(applied), len(moves), err)
			}
			fmt.Fprintf(out, "Applied %s.\n", pluralize(len(applied), "move"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Write the planned moves to the sources")

	return cmd
}
