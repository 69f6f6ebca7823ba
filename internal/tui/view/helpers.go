package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PadLines pads content to width and height with a background colour.
// Lines wider than width are left as they are.
func PadLines(content string, width, height int, bg lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]

	fill := lipgloss.NewStyle().Background(bg)
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + fill.Render(strings.Repeat(" ", width-w))
		}
	}
	return strings.Join(lines, "\n")
}

// Overlay centers top over base, cutting the base lines around it.
func Overlay(base, top string, width, height int) string {
	topLines := strings.Split(top, "\n")
	topWidth := 0
	for _, line := range topLines {
		topWidth = max(topWidth, lipgloss.Width(line))
	}
	if topWidth == 0 {
		return base
	}
	topWidth = min(topWidth, width)

	row0 := max(0, (height-len(topLines))/2)
	col0 := max(0, (width-topWidth)/2)

	baseLines := strings.Split(PadLines(base, width, height, lipgloss.Color("")), "\n")
	for i, line := range topLines {
		r := row0 + i
		if r >= len(baseLines) {
			break
		}
		if w := lipgloss.Width(line); w > topWidth {
			line = ansi.Cut(line, 0, topWidth)
		} else if w < topWidth {
			line += strings.Repeat(" ", topWidth-w)
		}
		left := ansi.Cut(baseLines[r], 0, col0)
		right := ansi.Cut(baseLines[r], col0+topWidth, width)
		baseLines[r] = left + line + ansi.ResetStyle + right
	}
	return strings.Join(baseLines, "\n")
}
