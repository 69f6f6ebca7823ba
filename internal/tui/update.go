package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/clashmap/internal/reschedule"
	"github.com/javiermolinar/clashmap/internal/tui/commands"
	"github.com/javiermolinar/clashmap/internal/tui/view"
)

const statusTTL = 4 * time.Second

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case commands.BoardLoadedMsg:
		m.board = msg.Board
		m.loading = false
		m.err = nil
		switch {
		case m.coord != nil:
			// Keep one coordinator per session so record locks outlive reloads.
			m.coord.Replace(msg.Board.All)
		case m.deps.Coordinator != nil:
			coord, err := m.deps.Coordinator(msg.Board)
			if err != nil {
				m.err = err
				return m, m.setStatus(fmt.Sprintf("Error: %v", err))
			}
			m.coord = coord
		}
		if !m.placed {
			m.cursor = initialCursor(msg.Board)
			m.placed = true
		}
		m.clampCursor()
		m.selected = 0
		return m, nil

	case commands.MovedMsg:
		rec := msg.Record
		status := fmt.Sprintf("Moved %q to %s", rec.Title, m.formatStart(rec.Interval.Start))
		return m, tea.Batch(m.setStatus(status), commands.LoadBoard(m.deps.Load))

	case commands.AdjustedMsg:
		var status string
		if msg.Err != nil {
			m.deps.Logger.Error("auto-adjust stopped",
				zap.String("kind", reschedule.ErrorKind(msg.Err)),
				zap.Int("applied", len(msg.Applied)),
				zap.Int("planned", msg.Planned),
				zap.Error(msg.Err))
			status = fmt.Sprintf("Applied %d of %d moves: %v", len(msg.Applied), msg.Planned, msg.Err)
		} else {
			status = fmt.Sprintf("Applied %s", view.Pluralize(len(msg.Applied), "move"))
		}
		return m, tea.Batch(m.setStatus(status), commands.LoadBoard(m.deps.Load))

	case commands.ErrMsg:
		m.loading = false
		m.err = msg.Err
		m.deps.Logger.Warn("tui operation failed", zap.String("kind", reschedule.ErrorKind(msg.Err)), zap.Error(msg.Err))
		switch {
		case errors.Is(msg.Err, reschedule.ErrInvalidTarget), errors.Is(msg.Err, reschedule.ErrRecordNotFound):
			return m, m.setStatus(fmt.Sprintf("Cannot move: %v", msg.Err))
		case errors.Is(msg.Err, reschedule.ErrPersistenceFailure):
			// The move was rolled back; rebuild so the grid matches the store.
			return m, tea.Batch(m.setStatus(fmt.Sprintf("Error: %v", msg.Err)), commands.LoadBoard(m.deps.Load))
		}
		return m, m.setStatus(fmt.Sprintf("Error: %v", msg.Err))

	case commands.StatusMsg:
		return m, m.setStatus(msg.Msg)

	case commands.ClearStatusMsg:
		m.statusMsg = ""
		return m, nil
	}

	return m, nil
}

// setStatus shows msg and schedules it to be cleared.
func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	return commands.ClearStatusAfter(statusTTL)
}

func (m Model) formatStart(t time.Time) string {
	loc := time.Local
	if m.board != nil && m.board.Window.Location != nil {
		loc = m.board.Window.Location
	}
	return t.In(loc).Format("Mon 01/02 15:04")
}
