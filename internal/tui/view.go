package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/clashmap/internal/dateutil"
	"github.com/javiermolinar/clashmap/internal/tui/view"
)

// View renders the TUI.
func (m Model) View() string {
	pal := m.deps.Palette
	if m.board == nil {
		if m.err != nil {
			return lipgloss.NewStyle().Foreground(pal.Conflict).Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
		}
		return "Loading...\n"
	}

	var ghost *view.Ghost
	if m.mode == ModeMove && m.moving != nil {
		ghost = &view.Ghost{Title: m.moving.Title, Hours: m.ghostHours()}
	}
	cursor := m.cursor

	body := m.renderHeader() + "\n" + view.RenderWeek(view.GridState{
		Board:   m.board,
		Palette: pal,
		Width:   m.width,
		Week:    m.cursor.Week,
		Cursor:  &cursor,
		Ghost:   ghost,
	})

	base := body + view.RenderFooter(view.FooterState{
		Width:      m.width,
		DetailLine: m.detailLine(),
		LegendLine: view.Legend(m.board, pal),
		StatusLine: m.statusLine(),
		HelpLine:   m.help.View(m.keys),
	})

	if m.mode != ModeModal {
		return base
	}
	if m.width <= 0 || m.height <= 0 {
		return base + "\n" + m.renderModal()
	}
	return view.Overlay(base, m.renderModal(), m.width, m.height)
}

func (m Model) renderHeader() string {
	pal := m.deps.Palette
	win := m.board.Window
	weeks := win.Weeks()
	week := weeks[m.cursor.Week]

	title := lipgloss.NewStyle().Bold(true).Foreground(pal.Accent).Render("clashmap")
	span := fmt.Sprintf("%s – %s", week[0].Format("Jan 2"), week[len(week)-1].Format("Jan 2"))
	info := lipgloss.NewStyle().Foreground(pal.FgMuted).Render(
		fmt.Sprintf("week %d/%d  %s", m.cursor.Week+1, len(weeks), span))

	parts := []string{title, info}
	switch {
	case m.loading:
		parts = append(parts, lipgloss.NewStyle().Foreground(pal.FgMuted).Render("loading…"))
	case m.mode == ModeMove:
		parts = append(parts, lipgloss.NewStyle().Bold(true).Foreground(pal.Warning).Render("MOVE"))
	}
	return strings.Join(parts, "  ")
}

// detailLine describes the selected record under the cursor.
func (m Model) detailLine() string {
	rec, ok := m.current()
	if !ok {
		return ""
	}
	pal := m.deps.Palette
	loc := m.board.Window.Location

	parts := []string{
		lipgloss.NewStyle().Foreground(pal.Source(rec.Source)).Render(rec.Key().String()),
		rec.Title,
		view.FormatInterval(rec.Interval, loc),
	}
	if st := rec.EffectiveStatus(m.board.Now); st != "" {
		parts = append(parts, string(st))
	}
	if n := len(m.board.Result.Partners(rec.Key())); n > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(pal.Conflict).Render(
			fmt.Sprintf("⚠ clashes with %s", view.Pluralize(n, "record"))))
	}
	if cells := m.covering(); len(cells) > 1 {
		parts = append(parts, lipgloss.NewStyle().Foreground(pal.FgMuted).Render(
			fmt.Sprintf("(%d/%d, tab for next)", m.selected%len(cells)+1, len(cells))))
	}
	return strings.Join(parts, "  ")
}

func (m Model) statusLine() string {
	if m.statusMsg == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(m.deps.Palette.Warning).Render(m.statusMsg)
}

func (m Model) renderModal() string {
	loc := m.board.Window.Location
	switch m.modal {
	case ModalAdjust:
		body := make([]string, 0, len(m.plan))
		for _, mv := range m.plan {
			body = append(body, fmt.Sprintf("%s  %s → %s",
				mv.Title,
				view.FormatInterval(mv.From, loc),
				mv.To.Start.In(loc).Format("Mon 01/02 "+dateutil.ClockLayout)))
		}
		title := fmt.Sprintf("Auto-adjust: %s", view.Pluralize(len(m.plan), "move"))
		return view.RenderModal(title, body, "y apply · esc cancel", m.modals)

	case ModalConflict:
		body := make([]string, 0, m.group.Len())
		for _, r := range m.group.Members {
			body = append(body, fmt.Sprintf("%-10s %s  %s", r.Source, view.FormatInterval(r.Interval, loc), r.Title))
		}
		title := fmt.Sprintf("Conflict: %s", view.Pluralize(m.group.Len(), "record"))
		return view.RenderModal(title, body, "y copy · esc close", m.modals)
	}
	return ""
}
