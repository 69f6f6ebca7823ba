// Package grid maps schedule records onto a days-by-hours grid and converts
// grid slots back into absolute instants.
package grid

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/window"
)

// ErrSlotOutOfRange is returned for a slot outside the window's days or hours.
var ErrSlotOutOfRange = errors.New("slot out of range")

// DefaultMinHeight is the smallest rendered height, in hours.
const DefaultMinHeight = 0.25

// Position places a record on the grid. Offsets and durations are fractional
// hours relative to the window's first visible hour.
type Position struct {
	DayIndex         int
	Week             int
	Weekday          int // column within the week row
	StartOffsetHours float64
	DurationHours    float64
}

// EndOffsetHours returns StartOffsetHours + DurationHours.
func (p Position) EndOffsetHours() float64 {
	return p.StartOffsetHours + p.DurationHours
}

// Mapper computes grid positions.
type Mapper struct {
	MinHeight float64
}

// NewMapper returns a Mapper with the given minimum height, or the default
// when minHeight is not positive.
func NewMapper(minHeight float64) Mapper {
	if minHeight <= 0 {
		minHeight = DefaultMinHeight
	}
	return Mapper{MinHeight: minHeight}
}

// Map returns the grid position of rec, or false when it has no visible part
// in the window: its start day is outside the window, or it lies entirely
// before or after the visible hours.
//
// A record starting before the first visible hour is clipped to offset 0.
// A record ending on a later day extends to the bottom of its start column.
func (m Mapper) Map(rec record.ScheduleRecord, win window.Window) (Position, bool) {
	loc := win.Location
	if loc == nil {
		loc = time.Local
	}
	start := rec.Interval.Start.In(loc)
	end := rec.Interval.End.In(loc)

	day, ok := win.DayIndex(start)
	if !ok {
		return Position{}, false
	}

	visible := float64(win.VisibleHours())
	startOffset := hourOf(start) - float64(win.HourStart)
	endOffset := visible
	if end.Year() == start.Year() && end.YearDay() == start.YearDay() {
		endOffset = hourOf(end) - float64(win.HourStart)
	}

	if endOffset <= 0 || startOffset >= visible {
		return Position{}, false
	}

	startOffset = clamp(startOffset, 0, visible)
	duration := endOffset - startOffset
	if duration < m.minHeight() {
		duration = m.minHeight()
	}
	if duration > visible-startOffset {
		duration = visible - startOffset
	}

	return Position{
		DayIndex:         day,
		Week:             day / window.DaysPerWeek,
		Weekday:          day % window.DaysPerWeek,
		StartOffsetHours: startOffset,
		DurationHours:    duration,
	}, true
}

func (m Mapper) minHeight() float64 {
	if m.MinHeight <= 0 {
		return DefaultMinHeight
	}
	return m.MinHeight
}

// Cell is a record with its grid position.
type Cell struct {
	Record      record.ScheduleRecord
	Position    Position
	Conflicting bool
}

// Layout maps every record that has a visible position. Records that cannot
// be placed are skipped.
func (m Mapper) Layout(recs []record.ScheduleRecord, win window.Window, conflicting map[record.Key]bool) []Cell {
	cells := make([]Cell, 0, len(recs))
	for _, r := range recs {
		pos, ok := m.Map(r, win)
		if !ok {
			continue
		}
		cells = append(cells, Cell{Record: r, Position: pos, Conflicting: conflicting[r.Key()]})
	}
	return cells
}

// TimeSlot addresses one hour cell: a week row, a day column and an hour of
// the day.
type TimeSlot struct {
	Week int
	Day  int
	Hour int
}

// String returns "w<week> d<day> <hour>:00".
func (s TimeSlot) String() string {
	return fmt.Sprintf("w%d d%d %02d:00", s.Week, s.Day, s.Hour)
}

// DayIndex returns the window day the slot falls on.
func (s TimeSlot) DayIndex() int {
	return s.Week*window.DaysPerWeek + s.Day
}

// Validate checks the slot lies within the window's days and visible hours.
func (s TimeSlot) Validate(win window.Window) error {
	if s.Week < 0 || s.Day < 0 || s.Day >= window.DaysPerWeek || s.DayIndex() >= win.Days {
		return fmt.Errorf("%w: day %s", ErrSlotOutOfRange, s)
	}
	if s.Hour < win.HourStart || s.Hour >= win.HourEnd {
		return fmt.Errorf("%w: hour %d not in %d..%d", ErrSlotOutOfRange, s.Hour, win.HourStart, win.HourEnd-1)
	}
	return nil
}

// Start returns the instant at which the slot begins.
func (s TimeSlot) Start(win window.Window) (time.Time, error) {
	if err := s.Validate(win); err != nil {
		return time.Time{}, err
	}
	d := win.Date(s.DayIndex())
	return time.Date(d.Year(), d.Month(), d.Day(), s.Hour, 0, 0, 0, d.Location()), nil
}

// SlotAt returns the slot containing t, or false when t is outside the
// window's days or visible hours.
func SlotAt(win window.Window, t time.Time) (TimeSlot, bool) {
	day, ok := win.DayIndex(t)
	if !ok {
		return TimeSlot{}, false
	}
	loc := win.Location
	if loc == nil {
		loc = time.Local
	}
	h := t.In(loc).Hour()
	if h < win.HourStart || h >= win.HourEnd {
		return TimeSlot{}, false
	}
	return TimeSlot{Week: day / window.DaysPerWeek, Day: day % window.DaysPerWeek, Hour: h}, true
}

func hourOf(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
