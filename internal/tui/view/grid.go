// Package view provides rendering helpers for the TUI and the grid command.
package view

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/clashmap/internal/board"
	"github.com/javiermolinar/clashmap/internal/dateutil"
	"github.com/javiermolinar/clashmap/internal/grid"
	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/theme"
	"github.com/javiermolinar/clashmap/internal/window"
)

const (
	// GutterWidth is the width of the hour label column.
	GutterWidth = 6
	minColWidth = 8
)

// Ghost is the preview of a record being moved.
type Ghost struct {
	Title string
	Hours int // rows the record would cover
}

// GridState holds everything needed to draw one week row of the board.
type GridState struct {
	Board   *board.Board
	Palette *theme.Palette
	Width   int
	Week    int
	Cursor  *grid.TimeSlot
	Ghost   *Ghost
}

// ColWidth returns the width of one day column for a terminal width.
func ColWidth(width int) int {
	return max(minColWidth, (width-GutterWidth)/window.DaysPerWeek-1)
}

// RenderBoard draws every week of the board followed by the legend.
func RenderBoard(b *board.Board, pal *theme.Palette, width int) string {
	var sb strings.Builder
	for w := range b.Window.Weeks() {
		sb.WriteString(RenderWeek(GridState{Board: b, Palette: pal, Width: width, Week: w}))
		sb.WriteString("\n")
	}
	sb.WriteString(Legend(b, pal))
	sb.WriteString("\n")
	return sb.String()
}

// RenderWeek draws one week row: a header with the dates and one line per
// visible hour.
func RenderWeek(s GridState) string {
	b, pal := s.Board, s.Palette
	win := b.Window
	weeks := win.Weeks()
	if s.Week < 0 || s.Week >= len(weeks) {
		return ""
	}
	days := weeks[s.Week]
	colWidth := ColWidth(s.Width)

	byDay := make(map[int][]grid.Cell)
	for _, c := range b.Cells {
		byDay[c.Position.DayIndex] = append(byDay[c.Position.DayIndex], c)
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(pal.Fg).Width(colWidth)
	today := header.Foreground(pal.Accent)
	muted := lipgloss.NewStyle().Foreground(pal.FgMuted)
	gutter := muted.Width(GutterWidth)

	lines := make([]string, 0, win.VisibleHours()+1)

	row := []string{gutter.Render("")}
	for _, d := range days {
		style := header
		if dateutil.SameDay(d, b.Now.In(win.Location)) {
			style = today
		}
		row = append(row, style.Render(d.Format("Mon 01/02")), " ")
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))

	for h := win.HourStart; h < win.HourEnd; h++ {
		offset := float64(h - win.HourStart)
		row := []string{gutter.Render(fmt.Sprintf("%02d:00", h))}
		for i := range days {
			slot := grid.TimeSlot{Week: s.Week, Day: i, Hour: h}
			row = append(row, s.renderSlot(slot, cellsAt(byDay[slot.DayIndex()], offset), offset, colWidth), " ")
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	return strings.Join(lines, "\n") + "\n"
}

func (s GridState) renderSlot(slot grid.TimeSlot, covering []grid.Cell, offset float64, width int) string {
	pal := s.Palette
	style := lipgloss.NewStyle().Width(width)
	text := "·"
	switch {
	case s.ghostCovers(slot):
		text = "↦ " + s.Ghost.Title
		style = style.Background(pal.Accent).Foreground(pal.Bg)
	case len(covering) > 0:
		text, style = cellText(covering, offset, width), cellStyle(covering, pal, width)
	default:
		style = style.Foreground(pal.FgMuted)
	}

	if s.Cursor != nil && *s.Cursor == slot {
		style = style.Reverse(true)
		if len(covering) == 0 && !s.ghostCovers(slot) {
			text = "[ ]"
		}
	}
	return style.Render(ansi.Truncate(text, width, "…"))
}

func (s GridState) ghostCovers(slot grid.TimeSlot) bool {
	if s.Ghost == nil || s.Cursor == nil {
		return false
	}
	c := *s.Cursor
	hours := max(1, s.Ghost.Hours)
	return slot.Week == c.Week && slot.Day == c.Day && slot.Hour >= c.Hour && slot.Hour < c.Hour+hours
}

// cellsAt returns the cells that cover the hour row starting at offset.
func cellsAt(cells []grid.Cell, offset float64) []grid.Cell {
	var out []grid.Cell
	for _, c := range cells {
		if c.Position.StartOffsetHours < offset+1 && c.Position.EndOffsetHours() > offset {
			out = append(out, c)
		}
	}
	return out
}

// CellsAt returns the cells of the board covering a slot, in start order.
func CellsAt(b *board.Board, slot grid.TimeSlot) []grid.Cell {
	var day []grid.Cell
	for _, c := range b.Cells {
		if c.Position.DayIndex == slot.DayIndex() {
			day = append(day, c)
		}
	}
	return cellsAt(day, float64(slot.Hour-b.Window.HourStart))
}

// cellText shows the title on the row where the first covering record
// begins and a continuation mark on later rows.
func cellText(covering []grid.Cell, offset float64, width int) string {
	first := covering[0]
	conflicting := false
	for _, c := range covering {
		conflicting = conflicting || c.Conflicting
	}

	text := "┊"
	if math.Floor(first.Position.StartOffsetHours) == offset {
		text = first.Record.Title
		if first.Record.Adjusted {
			text = "↻ " + text
		}
	}
	if conflicting {
		text = "⚠ " + text
	}
	if extra := len(covering) - 1; extra > 0 {
		suffix := fmt.Sprintf(" +%d", extra)
		text = ansi.Truncate(text, width-len(suffix), "…") + suffix
	}
	return text
}

func cellStyle(covering []grid.Cell, pal *theme.Palette, width int) lipgloss.Style {
	style := lipgloss.NewStyle().Width(width)
	for _, c := range covering {
		if c.Conflicting {
			return style.Background(pal.ConflictBg).Foreground(pal.TextOnConflict).Bold(true)
		}
	}
	src := covering[0].Record.Source
	return style.Background(pal.SourceBg(src)).Foreground(pal.TextOnSource(src))
}

// Legend lists the source colours and the conflict and skip counts.
func Legend(b *board.Board, pal *theme.Palette) string {
	parts := make([]string, 0, len(record.AllSources())+2)
	for _, src := range record.AllSources() {
		parts = append(parts, lipgloss.NewStyle().Foreground(pal.Source(src)).Render("■ "+string(src)))
	}
	conflicts := fmt.Sprintf("⚠ %s", Pluralize(len(b.Result.Groups), "conflict group"))
	parts = append(parts, lipgloss.NewStyle().Foreground(pal.Conflict).Render(conflicts))
	if n := b.Dropped(); n > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(pal.FgMuted).Render(fmt.Sprintf("%s skipped", Pluralize(n, "record"))))
	}
	return strings.Join(parts, "  ")
}

// Pluralize returns "n word" or "n words".
func Pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
