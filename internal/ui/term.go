package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/javiermolinar/clashmap/internal/record"
)

// Color definitions for consistent styling across the UI.
var (
	// Conflicts: bold red so clashes stand out
	colorConflict = color.New(color.FgRed, color.Bold)

	// Overdue: yellow warning
	colorOverdue = color.New(color.FgYellow)

	// Completed: green
	colorDone = color.New(color.FgGreen)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)

	sourceColors = map[record.SourceType]*color.Color{
		record.SourcePersonal:   color.New(color.FgCyan),
		record.SourceDepartment: color.New(color.FgBlue),
		record.SourceProject:    color.New(color.FgMagenta),
		record.SourceCompany:    color.New(color.FgGreen),
	}
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

// formatSource colours s with the colour of src.
func formatSource(src record.SourceType, s string) string {
	if c, ok := sourceColors[src]; ok {
		return c.Sprint(s)
	}
	return s
}

func formatConflict(s string) string {
	return colorConflict.Sprint(s)
}

func formatOverdue(s string) string {
	return colorOverdue.Sprint(s)
}

func formatDone(s string) string {
	return colorDone.Sprint(s)
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
