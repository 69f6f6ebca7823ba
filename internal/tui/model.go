// Package tui provides the interactive conflict grid.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/clashmap/internal/board"
	"github.com/javiermolinar/clashmap/internal/conflict"
	"github.com/javiermolinar/clashmap/internal/grid"
	"github.com/javiermolinar/clashmap/internal/logging"
	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/reschedule"
	"github.com/javiermolinar/clashmap/internal/theme"
	"github.com/javiermolinar/clashmap/internal/tui/commands"
	"github.com/javiermolinar/clashmap/internal/tui/view"
	"github.com/javiermolinar/clashmap/internal/window"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeMove        // a record is picked up and follows the cursor
	ModeModal
)

// ModalType identifies the type of modal.
type ModalType int

const (
	ModalNone ModalType = iota
	ModalAdjust
	ModalConflict
)

// Deps wires the model to the host application.
type Deps struct {
	Load commands.Loader
	// Coordinator is called on the first load only; later loads refresh
	// its working set.
	Coordinator func(*board.Board) (*reschedule.Coordinator, error)
	Strategy    func(window.Window) reschedule.Strategy
	Palette     *theme.Palette
	Logger      *zap.Logger
}

// Model is the main TUI model.
type Model struct {
	deps   Deps
	keys   KeyMap
	help   help.Model
	modals view.ModalStyles

	board *board.Board
	coord *reschedule.Coordinator

	cursor   grid.TimeSlot
	placed   bool // cursor positioned after the first load
	selected int  // index into the records covering the cursor
	mode     Mode
	modal    ModalType

	moving *record.ScheduleRecord
	plan   []reschedule.Move
	group  conflict.Group

	loading   bool
	statusMsg string
	err       error

	width  int
	height int
}

// New creates a new TUI model.
func New(deps Deps) Model {
	if deps.Palette == nil {
		deps.Palette = theme.NewPalette(nil)
	}
	deps.Logger = logging.OrNop(deps.Logger)

	return Model{
		deps:    deps,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		modals:  view.NewModalStyles(deps.Palette),
		loading: true,
	}
}

// Init loads the first board.
func (m Model) Init() tea.Cmd {
	return commands.LoadBoard(m.deps.Load)
}

// Run starts the TUI in the alternate screen and blocks until it exits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// covering returns the cells under the cursor.
func (m Model) covering() []grid.Cell {
	if m.board == nil {
		return nil
	}
	return view.CellsAt(m.board, m.cursor)
}

// current returns the selected record under the cursor.
func (m Model) current() (record.ScheduleRecord, bool) {
	cells := m.covering()
	if len(cells) == 0 {
		return record.ScheduleRecord{}, false
	}
	return cells[m.selected%len(cells)].Record, true
}

// initialCursor points at the first conflict, or at the current hour, or at
// the top of the first day.
func initialCursor(b *board.Board) grid.TimeSlot {
	win := b.Window
	if len(b.Result.Groups) > 0 {
		if slot, ok := grid.SlotAt(win, b.Result.Groups[0].Members[0].Interval.Start); ok {
			return slot
		}
	}
	if slot, ok := grid.SlotAt(win, b.Now); ok {
		return slot
	}
	return grid.TimeSlot{Hour: win.HourStart}
}

// daysIn returns the number of days in a week row.
func (m Model) daysIn(week int) int {
	weeks := m.board.Window.Weeks()
	if week < 0 || week >= len(weeks) {
		return 0
	}
	return len(weeks[week])
}

func (m *Model) clampCursor() {
	if m.board == nil {
		return
	}
	win := m.board.Window
	weeks := len(win.Weeks())
	m.cursor.Week = max(0, min(m.cursor.Week, weeks-1))
	m.cursor.Day = max(0, min(m.cursor.Day, m.daysIn(m.cursor.Week)-1))
	m.cursor.Hour = max(win.HourStart, min(m.cursor.Hour, win.HourEnd-1))
}
