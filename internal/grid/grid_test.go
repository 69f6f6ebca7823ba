package grid

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/window"
)

func newTestWindow(t *testing.T) window.Window {
	t.Helper()
	// Monday, March 10, 2025
	w, err := window.New(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC), 14, 9, 19, time.UTC)
	if err != nil {
		t.Fatalf("window.New failed: %v", err)
	}
	return w
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, time.UTC)
}

func rec(id string, start, end time.Time) record.ScheduleRecord {
	return record.ScheduleRecord{ID: id, Source: record.SourcePersonal, Interval: record.Interval{Start: start, End: end}}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMap(t *testing.T) {
	win := newTestWindow(t)
	m := NewMapper(0)

	tests := []struct {
		name         string
		rec          record.ScheduleRecord
		wantOK       bool
		wantDay      int
		wantWeek     int
		wantWeekday  int
		wantOffset   float64
		wantDuration float64
	}{
		{name: "inside hours", rec: rec("a", at(10, 10, 0), at(10, 11, 30)), wantOK: true, wantOffset: 1, wantDuration: 1.5},
		{name: "starts before visible hours", rec: rec("b", at(11, 8, 0), at(11, 10, 30)), wantOK: true, wantDay: 1, wantWeekday: 1, wantOffset: 0, wantDuration: 1.5},
		{name: "runs past visible hours", rec: rec("c", at(12, 18, 0), at(12, 21, 0)), wantOK: true, wantDay: 2, wantWeekday: 2, wantOffset: 9, wantDuration: 1},
		{name: "second week", rec: rec("d", at(18, 9, 15), at(18, 10, 0)), wantOK: true, wantDay: 8, wantWeek: 1, wantWeekday: 1, wantOffset: 0.25, wantDuration: 0.75},
		{name: "short record gets min height", rec: rec("e", at(10, 12, 0), at(10, 12, 5)), wantOK: true, wantOffset: 3, wantDuration: DefaultMinHeight},
		{name: "ends on later day", rec: rec("f", at(13, 17, 0), at(14, 2, 0)), wantOK: true, wantDay: 3, wantWeekday: 3, wantOffset: 8, wantDuration: 2},
		{name: "entirely before hours", rec: rec("g", at(10, 7, 0), at(10, 9, 0))},
		{name: "entirely after hours", rec: rec("h", at(10, 19, 0), at(10, 20, 0))},
		{name: "before window", rec: rec("i", at(9, 10, 0), at(9, 11, 0))},
		{name: "after window", rec: rec("j", at(24, 10, 0), at(24, 11, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := m.Map(tt.rec, win)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if pos.DayIndex != tt.wantDay || pos.Week != tt.wantWeek || pos.Weekday != tt.wantWeekday {
				t.Errorf("cell: got day %d week %d weekday %d, want %d/%d/%d",
					pos.DayIndex, pos.Week, pos.Weekday, tt.wantDay, tt.wantWeek, tt.wantWeekday)
			}
			if !approx(pos.StartOffsetHours, tt.wantOffset) {
				t.Errorf("offset: got %v, want %v", pos.StartOffsetHours, tt.wantOffset)
			}
			if !approx(pos.DurationHours, tt.wantDuration) {
				t.Errorf("duration: got %v, want %v", pos.DurationHours, tt.wantDuration)
			}
			if pos.StartOffsetHours < 0 || pos.EndOffsetHours() > float64(win.VisibleHours())+1e-9 {
				t.Errorf("position escapes the column: %+v", pos)
			}
		})
	}
}

func TestMap_MinHeightNeverExceedsColumn(t *testing.T) {
	win := newTestWindow(t)
	m := NewMapper(1)

	pos, ok := m.Map(rec("late", at(10, 18, 50), at(10, 18, 55)), win)
	if !ok {
		t.Fatal("expected a position")
	}
	if pos.EndOffsetHours() > float64(win.VisibleHours())+1e-9 {
		t.Errorf("min height pushed the cell past the column: %+v", pos)
	}
}

func TestLayout(t *testing.T) {
	win := newTestWindow(t)
	a := rec("a", at(10, 10, 0), at(10, 11, 0))
	b := rec("b", at(10, 10, 30), at(10, 12, 0))
	hidden := rec("hidden", at(10, 20, 0), at(10, 21, 0))

	cells := NewMapper(0).Layout([]record.ScheduleRecord{a, b, hidden}, win, map[record.Key]bool{a.Key(): true, b.Key(): true})
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	for _, c := range cells {
		if !c.Conflicting {
			t.Errorf("%s should be flagged conflicting", c.Record.ID)
		}
	}
}

func TestTimeSlot(t *testing.T) {
	win := newTestWindow(t)

	tests := []struct {
		name    string
		slot    TimeSlot
		want    time.Time
		wantErr bool
	}{
		{name: "first cell", slot: TimeSlot{Week: 0, Day: 0, Hour: 9}, want: at(10, 9, 0)},
		{name: "second week", slot: TimeSlot{Week: 1, Day: 4, Hour: 14}, want: at(21, 14, 0)},
		{name: "last hour", slot: TimeSlot{Week: 1, Day: 6, Hour: 18}, want: at(23, 18, 0)},
		{name: "hour too early", slot: TimeSlot{Week: 0, Day: 0, Hour: 8}, wantErr: true},
		{name: "hour at end", slot: TimeSlot{Week: 0, Day: 0, Hour: 19}, wantErr: true},
		{name: "week out of range", slot: TimeSlot{Week: 2, Day: 0, Hour: 9}, wantErr: true},
		{name: "day out of range", slot: TimeSlot{Week: 0, Day: 7, Hour: 9}, wantErr: true},
		{name: "negative week", slot: TimeSlot{Week: -1, Day: 0, Hour: 9}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.slot.Start(win)
			if tt.wantErr {
				if !errors.Is(err, ErrSlotOutOfRange) {
					t.Errorf("expected ErrSlotOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Start: got %v, want %v", got, tt.want)
			}

			back, ok := SlotAt(win, got.Add(30*time.Minute))
			if !ok || back != tt.slot {
				t.Errorf("SlotAt: got %v, %v; want %v", back, ok, tt.slot)
			}
		})
	}
}

func TestSlotAt_Outside(t *testing.T) {
	win := newTestWindow(t)
	for _, tm := range []time.Time{at(10, 8, 59), at(10, 19, 0), at(9, 12, 0), at(24, 12, 0)} {
		if s, ok := SlotAt(win, tm); ok {
			t.Errorf("SlotAt(%v) = %v, expected no slot", tm, s)
		}
	}
}
