package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// FooterState holds the lines shown under the grid.
type FooterState struct {
	Width      int
	DetailLine string // the record under the cursor
	LegendLine string
	StatusLine string
	HelpLine   string
}

// RenderFooter renders the non-empty footer lines, each cut to the width.
func RenderFooter(s FooterState) string {
	lines := make([]string, 0, 4)
	for _, l := range []string{s.DetailLine, s.LegendLine, s.StatusLine, s.HelpLine} {
		if l == "" {
			continue
		}
		if s.Width > 0 && lipgloss.Width(l) > s.Width {
			l = ansi.Truncate(l, s.Width, "…")
		}
		lines = append(lines, l)
	}
	return strings.Join(lines, "\n")
}
