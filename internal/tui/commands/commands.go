// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/clashmap/internal/board"
	"github.com/javiermolinar/clashmap/internal/grid"
	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/reschedule"
	"github.com/javiermolinar/clashmap/internal/window"
)

// Loader fetches every source and computes a fresh board.
type Loader func(ctx context.Context) (*board.Board, error)

// BoardLoadedMsg is sent when a board has been (re)built.
type BoardLoadedMsg struct {
	Board *board.Board
}

// MovedMsg is sent when a record was moved and persisted.
type MovedMsg struct {
	Record record.ScheduleRecord
}

// AdjustedMsg is sent when an auto-adjust run finished. Err is set when it
// stopped early; Applied holds the moves that were persisted.
type AdjustedMsg struct {
	Applied []reschedule.Move
	Planned int
	Err     error
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsg is sent for temporary status messages.
type StatusMsg struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadBoard rebuilds the board.
func LoadBoard(load Loader) tea.Cmd {
	return func() tea.Msg {
		b, err := load(context.Background())
		if err != nil {
			return ErrMsg{Err: err}
		}
		return BoardLoadedMsg{Board: b}
	}
}

// MoveToSlot moves one record to the start of a grid slot.
func MoveToSlot(coord *reschedule.Coordinator, key record.Key, slot grid.TimeSlot, win window.Window) tea.Cmd {
	return func() tea.Msg {
		rec, err := coord.MoveToSlot(context.Background(), key, slot, win)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return MovedMsg{Record: rec}
	}
}

// Apply persists planned auto-adjust moves in order.
func Apply(coord *reschedule.Coordinator, moves []reschedule.Move) tea.Cmd {
	return func() tea.Msg {
		applied, err := coord.Apply(context.Background(), moves)
		return AdjustedMsg{Applied: applied, Planned: len(moves), Err: err}
	}
}

// ShowStatus displays msg in the status line.
func ShowStatus(msg string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Msg: msg}
	}
}

// ClearStatusAfter clears the status line after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
