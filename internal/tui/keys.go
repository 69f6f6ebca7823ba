package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/clashmap/internal/conflict"
	"github.com/javiermolinar/clashmap/internal/tui/commands"
	"github.com/javiermolinar/clashmap/internal/tui/view"
)

// KeyMap defines the TUI key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PrevWeek key.Binding
	NextWeek key.Binding
	Cycle    key.Binding
	Pick     key.Binding
	Cancel   key.Binding
	Adjust   key.Binding
	Details  key.Binding
	Confirm  key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "earlier")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "later")),
		Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev day")),
		Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next day")),
		PrevWeek: key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "prev week")),
		NextWeek: key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next week")),
		Cycle:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next record")),
		Pick:     key.NewBinding(key.WithKeys("enter", "m"), key.WithHelp("enter", "move/drop")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Adjust:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-adjust")),
		Details:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "conflict")),
		Confirm:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pick, k.Adjust, k.Details, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.PrevWeek, k.NextWeek, k.Cycle},
		{k.Pick, k.Cancel, k.Adjust, k.Details},
		{k.Reload, k.Help, k.Quit},
	}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.board == nil {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.mode {
	case ModeModal:
		return m.handleModalKeys(msg)
	case ModeMove:
		return m.handleMoveKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// navigate moves the cursor and reports whether msg was a navigation key.
func (m *Model) navigate(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor.Hour--
	case key.Matches(msg, m.keys.Down):
		m.cursor.Hour++
	case key.Matches(msg, m.keys.Left):
		if m.cursor.Day > 0 {
			m.cursor.Day--
		} else if m.cursor.Week > 0 {
			m.cursor.Week--
			m.cursor.Day = m.daysIn(m.cursor.Week) - 1
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor.Day < m.daysIn(m.cursor.Week)-1 {
			m.cursor.Day++
		} else if m.cursor.Week < len(m.board.Window.Weeks())-1 {
			m.cursor.Week++
			m.cursor.Day = 0
		}
	case key.Matches(msg, m.keys.PrevWeek):
		m.cursor.Week--
	case key.Matches(msg, m.keys.NextWeek):
		m.cursor.Week++
	default:
		return false
	}
	m.clampCursor()
	m.selected = 0
	return true
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.navigate(msg) {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Cycle):
		if n := len(m.covering()); n > 0 {
			m.selected = (m.selected + 1) % n
		}

	case key.Matches(msg, m.keys.Pick):
		rec, ok := m.current()
		if !ok {
			return m, commands.ShowStatus("Nothing to move here")
		}
		m.moving = &rec
		m.mode = ModeMove
		return m, commands.ShowStatus(fmt.Sprintf("Moving %q: pick a slot and press enter", rec.Title))

	case key.Matches(msg, m.keys.Adjust):
		if m.coord == nil {
			return m, nil
		}
		m.plan = m.coord.Plan(m.board.Window, m.deps.Strategy(m.board.Window))
		if len(m.plan) == 0 {
			return m, commands.ShowStatus("Nothing to adjust")
		}
		m.mode = ModeModal
		m.modal = ModalAdjust

	case key.Matches(msg, m.keys.Details):
		rec, ok := m.current()
		if !ok {
			return m, nil
		}
		g, ok := m.board.Result.GroupOf(rec.Key())
		if !ok {
			return m, commands.ShowStatus(fmt.Sprintf("%q has no conflicts", rec.Title))
		}
		m.group = g
		m.mode = ModeModal
		m.modal = ModalConflict

	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, commands.LoadBoard(m.deps.Load)
	}

	return m, nil
}

// handleMoveKeys handles keys while a record is picked up.
func (m Model) handleMoveKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.navigate(msg) {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = ModeNormal
		m.moving = nil
		return m, commands.ShowStatus("Move cancelled")

	case key.Matches(msg, m.keys.Pick):
		if m.coord == nil || m.moving == nil {
			return m, nil
		}
		k, slot := m.moving.Key(), m.cursor
		m.mode = ModeNormal
		m.moving = nil
		m.loading = true
		return m, commands.MoveToSlot(m.coord, k, slot, m.board.Window)

	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

// handleModalKeys handles keys while a modal is open.
func (m Model) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel), msg.String() == "n", msg.String() == "q":
		m.closeModal()
		return m, nil

	case key.Matches(msg, m.keys.Confirm), msg.String() == "enter":
		switch m.modal {
		case ModalAdjust:
			plan := m.plan
			m.closeModal()
			m.loading = true
			return m, commands.Apply(m.coord, plan)
		case ModalConflict:
			if err := clipboard.WriteAll(m.conflictText()); err != nil {
				m.deps.Logger.Warn("clipboard copy failed", zap.Error(err))
				return m, commands.ShowStatus(fmt.Sprintf("Copy failed: %v", err))
			}
			m.closeModal()
			return m, commands.ShowStatus("Conflict copied to clipboard")
		}
	}
	return m, nil
}

func (m *Model) closeModal() {
	m.mode = ModeNormal
	m.modal = ModalNone
	m.plan = nil
	m.group = conflict.Group{}
}

// conflictText renders the open conflict group as plain text.
func (m Model) conflictText() string {
	loc := m.board.Window.Location
	var sb strings.Builder
	fmt.Fprintf(&sb, "Conflict (%d records, %s)\n", m.group.Len(), view.FormatInterval(m.group.Span(), loc))
	for _, r := range m.group.Members {
		fmt.Fprintf(&sb, "  %-10s %-12s %s  %s\n", r.Source, r.ID, view.FormatInterval(r.Interval, loc), r.Title)
	}
	return sb.String()
}

// ghostHours is the number of grid rows a moving record covers.
func (m Model) ghostHours() int {
	if m.moving == nil {
		return 0
	}
	return max(1, int(math.Ceil(m.moving.Duration().Hours())))
}
