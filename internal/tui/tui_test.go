package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/clashmap/internal/board"
	"github.com/javiermolinar/clashmap/internal/grid"
	"github.com/javiermolinar/clashmap/internal/normalize"
	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/reschedule"
	"github.com/javiermolinar/clashmap/internal/source"
	"github.com/javiermolinar/clashmap/internal/tui/commands"
	"github.com/javiermolinar/clashmap/internal/window"
)

var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestMemory() *source.Memory {
	return source.NewMemory(source.Set{
		Personal: []source.PersonalRaw{
			{ID: "p1", Title: "Standup", Date: "2025-03-10", Time: "10:00", DurationMinutes: 60},
		},
		Company: []source.CompanyRaw{
			{ScheduleID: "c1", Title: "All hands", StartTime: "2025-03-10T10:30:00Z", EndTime: "2025-03-10T11:30:00Z"},
		},
	})
}

func newTestModel(t *testing.T) (Model, *source.Memory) {
	t.Helper()
	store := newTestMemory()
	return newTestModelWithStore(t, store), store
}

func newTestModelWithStore(t *testing.T, store source.Store) Model {
	t.Helper()
	adapter := normalize.New(normalize.WithLocation(time.UTC))
	win := window.Default(testNow, time.UTC)
	builder := board.Builder{Store: store, Adapter: adapter, Mapper: grid.NewMapper(0)}

	m := New(Deps{
		Load: func(ctx context.Context) (*board.Board, error) {
			return builder.Build(ctx, win, testNow)
		},
		Coordinator: func(b *board.Board) (*reschedule.Coordinator, error) {
			return reschedule.NewCoordinator(store, adapter, b.All,
				reschedule.WithClock(func() time.Time { return testNow })), nil
		},
		Strategy: func(window.Window) reschedule.Strategy {
			return reschedule.GreedyTailAppend{Gap: time.Hour, NotBefore: testNow}
		},
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	m = update(t, m, m.Init()())
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func TestModel_InitialLoad(t *testing.T) {
	m, _ := newTestModel(t)

	if m.board == nil || m.coord == nil {
		t.Fatal("expected board and coordinator after load")
	}
	if want := (grid.TimeSlot{Week: 0, Day: 0, Hour: 10}); m.cursor != want {
		t.Errorf("cursor should start on the first conflict: got %v, want %v", m.cursor, want)
	}

	rec, ok := m.current()
	if !ok || rec.ID != "p1" {
		t.Fatalf("expected p1 under the cursor, got %+v", rec)
	}

	m, _ = press(t, m, tab)
	if rec, _ := m.current(); rec.ID != "c1" {
		t.Errorf("tab should select the next record, got %s", rec.ID)
	}

	out := m.View()
	for _, want := range []string{"clashmap", "week 1/2", "All hands", "clashes with 1 record"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_Navigation(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want grid.TimeSlot
	}{
		{name: "up", keys: []tea.KeyMsg{runes("k")}, want: grid.TimeSlot{Hour: 9}},
		{name: "up stops at first hour", keys: []tea.KeyMsg{runes("k"), runes("k"), runes("k")}, want: grid.TimeSlot{Hour: 9}},
		{name: "down stops at last hour", keys: repeat(runes("j"), 20), want: grid.TimeSlot{Hour: 18}},
		{name: "left stops at first day", keys: []tea.KeyMsg{runes("h")}, want: grid.TimeSlot{Hour: 10}},
		{name: "right", keys: []tea.KeyMsg{runes("l"), runes("l")}, want: grid.TimeSlot{Day: 2, Hour: 10}},
		{name: "right wraps to next week", keys: repeat(runes("l"), 7), want: grid.TimeSlot{Week: 1, Day: 0, Hour: 10}},
		{name: "left wraps to previous week", keys: []tea.KeyMsg{runes("]"), runes("h")}, want: grid.TimeSlot{Week: 0, Day: 6, Hour: 10}},
		{name: "next week stops at last", keys: []tea.KeyMsg{runes("]"), runes("]"), runes("]")}, want: grid.TimeSlot{Week: 1, Hour: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t)
			m, _ = press(t, m, tt.keys...)
			if m.cursor != tt.want {
				t.Errorf("cursor: got %v, want %v", m.cursor, tt.want)
			}
		})
	}
}

func repeat(k tea.KeyMsg, n int) []tea.KeyMsg {
	out := make([]tea.KeyMsg, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func TestModel_MoveFlow(t *testing.T) {
	m, store := newTestModel(t)

	m, _ = press(t, m, enter)
	if m.mode != ModeMove || m.moving == nil || m.moving.ID != "p1" {
		t.Fatalf("expected p1 picked up, mode=%v", m.mode)
	}
	if !strings.Contains(m.View(), "MOVE") {
		t.Error("view should show the move indicator")
	}

	m, cmd := press(t, m, runes("l"), runes("j"), runes("j"), runes("j"), enter)
	if m.mode != ModeNormal || m.moving != nil {
		t.Errorf("dropping should return to normal mode, got %v", m.mode)
	}
	if cmd == nil {
		t.Fatal("expected a move command")
	}

	msg := cmd()
	moved, ok := msg.(commands.MovedMsg)
	if !ok {
		t.Fatalf("expected MovedMsg, got %#v", msg)
	}
	if want := time.Date(2025, 3, 11, 13, 0, 0, 0, time.UTC); !moved.Record.Interval.Start.Equal(want) {
		t.Errorf("moved start: got %v, want %v", moved.Record.Interval.Start, want)
	}
	if store.Updates() != 1 {
		t.Errorf("expected one store update, got %d", store.Updates())
	}

	m = update(t, m, msg)
	if !strings.Contains(m.statusMsg, "Moved \"Standup\"") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}

	m = update(t, m, m.Init()())
	if m.board.Result.HasConflicts() {
		t.Error("expected no conflicts after the move")
	}
}

// heldStore counts concurrent updates per record and holds each one until
// release is closed.
type heldStore struct {
	*source.Memory
	arrived chan struct{}
	release chan struct{}

	mu       sync.Mutex
	inflight map[string]int
	maxSame  int
}

func (s *heldStore) Update(ctx context.Context, src record.SourceType, id string, fields source.Fields) (source.Raw, error) {
	k := string(src) + "/" + id
	s.mu.Lock()
	s.inflight[k]++
	s.maxSame = max(s.maxSame, s.inflight[k])
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inflight[k]--
		s.mu.Unlock()
	}()

	s.arrived <- struct{}{}
	<-s.release
	return s.Memory.Update(ctx, src, id, fields)
}

func TestModel_MovesOfSameRecordSerializeAcrossReload(t *testing.T) {
	mem := newTestMemory()
	store := &heldStore{
		Memory:   mem,
		arrived:  make(chan struct{}, 2),
		release:  make(chan struct{}),
		inflight: make(map[string]int),
	}
	m := newTestModelWithStore(t, store)
	coord := m.coord

	// Drop p1 on Tuesday; its update stays in flight.
	m, cmd := press(t, m, enter, runes("l"), enter)
	first := make(chan tea.Msg, 1)
	go func() { first <- cmd() }()
	select {
	case <-store.arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("first update never reached the store")
	}

	m, cmd = press(t, m, runes("r"))
	m = update(t, m, cmd())
	if m.coord != coord {
		t.Fatal("reload must keep the session coordinator")
	}

	// p1 is still stored on Monday; drop it on Wednesday.
	m, _ = press(t, m, runes("h"), enter)
	if m.moving == nil || m.moving.ID != "p1" {
		t.Fatalf("expected p1 picked up after reload, mode=%v", m.mode)
	}
	m, cmd = press(t, m, runes("l"), runes("l"), enter)
	second := make(chan tea.Msg, 1)
	go func() { second <- cmd() }()

	time.Sleep(20 * time.Millisecond)
	close(store.release)

	for _, ch := range []chan tea.Msg{first, second} {
		if msg, ok := (<-ch).(commands.MovedMsg); !ok {
			t.Errorf("expected MovedMsg, got %#v", msg)
		}
	}
	if store.maxSame != 1 {
		t.Errorf("moves of p1 overlapped in the store: max in flight %d", store.maxSame)
	}

	m = update(t, m, m.Init()())
	rec, ok := m.coord.Get(record.Key{Source: record.SourcePersonal, ID: "p1"})
	if want := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC); !ok || !rec.Interval.Start.Equal(want) {
		t.Errorf("p1 should end on the second drop: got %v, want %v", rec.Interval.Start, want)
	}
}

func TestModel_MoveCancel(t *testing.T) {
	m, store := newTestModel(t)

	m, _ = press(t, m, enter, runes("l"))
	m, cmd := press(t, m, esc)
	if m.mode != ModeNormal || m.moving != nil {
		t.Errorf("esc should cancel the move, mode=%v", m.mode)
	}
	if msg, ok := cmd().(commands.StatusMsg); !ok || msg.Msg != "Move cancelled" {
		t.Errorf("expected cancel status, got %#v", msg)
	}
	if store.Updates() != 0 {
		t.Errorf("cancel must not touch the store, got %d updates", store.Updates())
	}
}

func TestModel_PickEmptySlot(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := press(t, m, runes("j"), runes("j"), runes("j"), enter)
	if m.mode != ModeNormal {
		t.Errorf("picking an empty slot should stay in normal mode, got %v", m.mode)
	}
	if msg, ok := cmd().(commands.StatusMsg); !ok || msg.Msg != "Nothing to move here" {
		t.Errorf("unexpected message %#v", msg)
	}
}

func TestModel_AutoAdjust(t *testing.T) {
	m, store := newTestModel(t)

	m, _ = press(t, m, runes("a"))
	if m.mode != ModeModal || m.modal != ModalAdjust {
		t.Fatalf("expected adjust modal, mode=%v modal=%v", m.mode, m.modal)
	}
	if len(m.plan) != 1 {
		t.Fatalf("expected one planned move, got %d", len(m.plan))
	}
	if !strings.Contains(m.View(), "Auto-adjust: 1 move") {
		t.Error("view should show the adjust modal")
	}

	m, cmd := press(t, m, runes("y"))
	if m.mode != ModeNormal || m.plan != nil {
		t.Errorf("confirming should close the modal")
	}
	msg, ok := cmd().(commands.AdjustedMsg)
	if !ok || msg.Err != nil || len(msg.Applied) != 1 {
		t.Fatalf("unexpected adjust result %#v", msg)
	}
	if store.Updates() != 1 {
		t.Errorf("expected one store update, got %d", store.Updates())
	}

	m = update(t, m, msg)
	if m.statusMsg != "Applied 1 move" {
		t.Errorf("unexpected status %q", m.statusMsg)
	}
	m = update(t, m, m.Init()())
	if m.board.Result.HasConflicts() {
		t.Error("expected no conflicts after auto-adjust")
	}

	m, cmd = press(t, m, runes("a"))
	if m.mode != ModeNormal {
		t.Error("nothing to adjust should not open a modal")
	}
	if msg, ok := cmd().(commands.StatusMsg); !ok || msg.Msg != "Nothing to adjust" {
		t.Errorf("unexpected message %#v", msg)
	}
}

func TestModel_AdjustDeclined(t *testing.T) {
	m, store := newTestModel(t)

	m, _ = press(t, m, runes("a"), runes("n"))
	if m.mode != ModeNormal || m.modal != ModalNone {
		t.Errorf("n should close the modal")
	}
	if store.Updates() != 0 {
		t.Errorf("declining must not touch the store")
	}
}

func TestModel_ConflictModal(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, runes("c"))
	if m.mode != ModeModal || m.modal != ModalConflict {
		t.Fatalf("expected conflict modal, mode=%v modal=%v", m.mode, m.modal)
	}
	if m.group.Len() != 2 {
		t.Errorf("expected a group of 2, got %d", m.group.Len())
	}
	if !strings.Contains(m.View(), "Conflict: 2 records") {
		t.Error("view should show the conflict modal")
	}
	if text := m.conflictText(); !strings.Contains(text, "c1") || !strings.Contains(text, "p1") {
		t.Errorf("conflict text should list both members:\n%s", text)
	}

	m, _ = press(t, m, esc)
	if m.mode != ModeNormal {
		t.Error("esc should close the modal")
	}
}

func TestModel_ErrMsg(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
	}{
		{name: "invalid target", err: fmt.Errorf("%w: in the past", reschedule.ErrInvalidTarget), status: "Cannot move"},
		{name: "not found", err: fmt.Errorf("%w: personal/x", reschedule.ErrRecordNotFound), status: "Cannot move"},
		{name: "persistence", err: fmt.Errorf("%w: boom", reschedule.ErrPersistenceFailure), status: "Error:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t)
			next, cmd := m.Update(commands.ErrMsg{Err: tt.err})
			m = next.(Model)
			if !strings.HasPrefix(m.statusMsg, tt.status) {
				t.Errorf("status: got %q, want prefix %q", m.statusMsg, tt.status)
			}
			if cmd == nil {
				t.Error("expected a follow-up command")
			}
		})
	}
}

func TestModel_LoadError(t *testing.T) {
	boom := errors.New("store unavailable")
	m := New(Deps{Load: func(context.Context) (*board.Board, error) { return nil, boom }})

	m = update(t, m, m.Init()())
	if !errors.Is(m.err, boom) {
		t.Errorf("expected load error to be kept, got %v", m.err)
	}
	if !strings.Contains(m.View(), "store unavailable") {
		t.Error("view should show the load error")
	}

	_, cmd := press(t, m, runes("q"))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit before the board loads")
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := press(t, m, runes("q"))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestInitialCursor_NoConflicts(t *testing.T) {
	win := window.Default(testNow, time.UTC)

	b := &board.Board{Window: win, Now: testNow.Add(3 * time.Hour)}
	if got := initialCursor(b); got != (grid.TimeSlot{Hour: 11}) {
		t.Errorf("cursor should follow the current hour, got %v", got)
	}

	b.Now = testNow
	if got := initialCursor(b); got != (grid.TimeSlot{Hour: 9}) {
		t.Errorf("cursor should fall back to the first hour, got %v", got)
	}
}

func TestGhostHours(t *testing.T) {
	m, _ := newTestModel(t)
	if m.ghostHours() != 0 {
		t.Error("no ghost without a moving record")
	}
	rec := record.ScheduleRecord{Interval: record.Interval{Start: testNow, End: testNow.Add(90 * time.Minute)}}
	m.moving = &rec
	if m.ghostHours() != 2 {
		t.Errorf("90 minutes should cover 2 rows, got %d", m.ghostHours())
	}
}
