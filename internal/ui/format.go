package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/clashmap/internal/conflict"
	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/reschedule"
	"github.com/javiermolinar/clashmap/internal/tui/view"
)

const dayLayout = "Mon 2006-01-02"

// statusSymbol returns the symbol for a record's effective status.
func statusSymbol(s record.Status) string {
	switch s {
	case record.StatusCompleted:
		return formatDone("✓")
	case record.StatusOverdue:
		return formatOverdue("!")
	default:
		return " "
	}
}

// sourceTag returns a fixed-width coloured source label.
func sourceTag(src record.SourceType) string {
	return formatSource(src, fmt.Sprintf("%-10s", src))
}

// formatGroup renders a conflict group without colour so it can be copied.
func formatGroup(i int, g conflict.Group, loc *time.Location) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Conflict %d (%d records, %s)\n", i+1, g.Len(), formatInterval(g.Span(), loc))
	for _, m := range g.Members {
		fmt.Fprintf(&sb, "  %-10s %-12s %s  %s\n", m.Source, m.ID, formatInterval(m.Interval, loc), m.Title)
	}
	return sb.String()
}

// formatMove renders one planned or applied move.
func formatMove(m reschedule.Move, loc *time.Location) string {
	return fmt.Sprintf("%-24s %s  →  %s  %s",
		m.Key, formatInterval(m.From, loc), formatInterval(m.To, loc), m.Title)
}

var (
	pluralize      = view.Pluralize
	formatInterval = view.FormatInterval
)
