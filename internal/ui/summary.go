package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/summary"
)

func (a *App) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show booked time and clashes per source",
		Long: `Show how much time each source books in the visible window, how many of
its records clash, and which day is the busiest.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.buildBoard(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary.Summarize(b))
			return nil
		},
	}
}

func printSummary(out io.Writer, s *summary.Summary) {
	last := s.End.AddDate(0, 0, -1)
	header := fmt.Sprintf("WINDOW: %s - %s", s.Start.Format("Mon Jan 2"), last.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(out, "\n  %s\n", formatHeader(header))
	fmt.Fprintln(out, strings.Repeat("─", 64))

	if s.Records() == 0 {
		fmt.Fprintln(out, "  No records in the visible window.")
		return
	}

	for _, src := range record.AllSources() {
		st := s.Sources[src]
		if st.Records == 0 {
			continue
		}
		line := fmt.Sprintf("  %s %3d  %7s", sourceTag(src), st.Records, formatDuration(st.Minutes))
		if st.Clashing > 0 {
			line += "  " + formatConflict(fmt.Sprintf("%d clashing", st.Clashing))
		}
		if st.Overdue > 0 {
			line += "  " + formatOverdue(fmt.Sprintf("%d overdue", st.Overdue))
		}
		if st.Completed > 0 {
			line += "  " + formatDone(fmt.Sprintf("%d done", st.Completed))
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, strings.Repeat("─", 64))

	fmt.Fprintf(out, "  Booked: %s  |  Records: %d  |  Clashing: %s\n",
		formatDuration(s.TotalMinutes()), s.Records(), clashBar(s.Clashing(), s.Records(), 20))
	if s.Groups > 0 {
		fmt.Fprintf(out, "  %s, %s overlapping\n",
			pluralize(s.Groups, "conflict group"), formatDuration(s.OverlapMinutes))
	}
	if day, minutes := s.BusiestDay(); day >= 0 {
		fmt.Fprintf(out, "  Busiest day: %s (%s)\n", s.Days[day].Date.Format(dayLayout), formatDuration(minutes))
	}
	if s.Dropped > 0 {
		fmt.Fprintf(out, "  %s\n", formatMuted(fmt.Sprintf("%s skipped", pluralize(s.Dropped, "record"))))
	}
}

// clashBar draws the share of clashing records as a bar.
func clashBar(clashing, total, width int) string {
	if total == 0 {
		return "[" + strings.Repeat("░", width) + "] 0%"
	}
	filled := clashing * width / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %d%%", formatConflict(bar), clashing*100/total)
}

// formatDuration formats minutes as a human-readable duration.
func formatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%02dm", hours, mins)
}
