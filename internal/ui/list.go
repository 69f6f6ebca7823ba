package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clashmap/internal/dateutil"
	"github.com/javiermolinar/clashmap/internal/record"
)

func (a *App) listCmd() *cobra.Command {
	var sourceType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records in the visible window",
		Long: `List every record that intersects the visible window, grouped by day.

Completed records are marked with ✓, overdue ones with !.
Records that clash with another one are marked with ⚠.`,
		Example: `  clashmap list
  clashmap list --type=company`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var src record.SourceType
			if sourceType != "" {
				var err error
				if src, err = record.ParseSourceType(sourceType); err != nil {
					return err
				}
			}

			b, err := a.buildBoard(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			loc := b.Window.Location
			recs := b.Filter(src)
			if len(recs) == 0 {
				fmt.Fprintln(out, "No records found in the visible window.")
			}

			var currentDate string
			for _, r := range recs {
				date := r.Interval.Start.In(loc).Format(dayLayout)
				if date != currentDate {
					if currentDate != "" {
						fmt.Fprintln(out)
					}
					fmt.Fprintln(out, formatHeader(fmt.Sprintf("=== %s ===", date)))
					currentDate = date
				}

				start := r.Interval.Start.In(loc)
				end := r.Interval.End.In(loc)
				line := fmt.Sprintf("  %s %s %-12s %s-%s %s",
					statusSymbol(r.EffectiveStatus(b.Now)),
					sourceTag(r.Source),
					r.ID,
					start.Format(dateutil.ClockLayout),
					end.Format(dateutil.ClockLayout),
					r.Title,
				)
				if partners := b.Result.Partners(r.Key()); len(partners) > 0 {
					line += " " + formatConflict(fmt.Sprintf("⚠ %s", pluralize(len(partners), "clash")))
				}
				fmt.Fprintln(out, line)
			}

			if n := b.Dropped(); n > 0 {
				fmt.Fprintln(out, formatMuted(fmt.Sprintf("\n%s skipped: missing or invalid date/time", pluralize(n, "record"))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sourceType, "type", "t", "", "Only list one source (personal, department, project, company)")

	return cmd
}
