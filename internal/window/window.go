// Package window describes the visible scheduling range: a run of calendar
// days starting at an anchor, and the band of hours shown for each day.
package window

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/clashmap/internal/dateutil"
	"github.com/javiermolinar/clashmap/internal/record"
)

// ErrInvalidWindow is returned for a window with no days or an empty hour band.
var ErrInvalidWindow = errors.New("invalid schedule window")

const (
	DefaultDays      = 14
	DefaultHourStart = 9
	DefaultHourEnd   = 19
	DaysPerWeek      = 7
)

// Window is the range of days and hours the host renders and analyses.
type Window struct {
	Anchor    time.Time // midnight of the first day
	Days      int
	HourStart int
	HourEnd   int
	Location  *time.Location
}

// New builds a window starting at the calendar day of today in loc.
func New(today time.Time, days, hourStart, hourEnd int, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	w := Window{
		Anchor:    dateutil.TruncateToDay(today.In(loc)),
		Days:      days,
		HourStart: hourStart,
		HourEnd:   hourEnd,
		Location:  loc,
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Default builds the standard two-week window.
func Default(today time.Time, loc *time.Location) Window {
	w, _ := New(today, DefaultDays, DefaultHourStart, DefaultHourEnd, loc)
	return w
}

// Validate checks the day count and hour band.
func (w Window) Validate() error {
	if w.Days <= 0 {
		return fmt.Errorf("%w: days must be positive, got %d", ErrInvalidWindow, w.Days)
	}
	if w.HourStart < 0 || w.HourEnd > 24 || w.HourStart >= w.HourEnd {
		return fmt.Errorf("%w: hours must satisfy 0 <= start < end <= 24, got %d..%d",
			ErrInvalidWindow, w.HourStart, w.HourEnd)
	}
	return nil
}

func (w Window) loc() *time.Location {
	if w.Location == nil {
		return time.Local
	}
	return w.Location
}

// Start returns the first instant of the window.
func (w Window) Start() time.Time {
	return w.Anchor
}

// End returns the exclusive end of the window: midnight after the last day.
func (w Window) End() time.Time {
	return w.Date(w.Days)
}

// Interval returns [Start, End).
func (w Window) Interval() record.Interval {
	return record.Interval{Start: w.Start(), End: w.End()}
}

// Date returns midnight of the i-th day of the window.
func (w Window) Date(i int) time.Time {
	a := w.Anchor.In(w.loc())
	return time.Date(a.Year(), a.Month(), a.Day()+i, 0, 0, 0, 0, w.loc())
}

// Dates returns midnight of every day in the window.
func (w Window) Dates() []time.Time {
	dates := make([]time.Time, w.Days)
	for i := range dates {
		dates[i] = w.Date(i)
	}
	return dates
}

// Weeks splits the window dates into rows of seven. The last row may be short.
func (w Window) Weeks() [][]time.Time {
	dates := w.Dates()
	var weeks [][]time.Time
	for len(dates) > 0 {
		n := DaysPerWeek
		if len(dates) < n {
			n = len(dates)
		}
		weeks = append(weeks, dates[:n:n])
		dates = dates[n:]
	}
	return weeks
}

// DayIndex returns the window day holding t, matched by calendar date in the
// window's zone.
func (w Window) DayIndex(t time.Time) (int, bool) {
	t = t.In(w.loc())
	for i, d := range w.Dates() {
		if dateutil.SameDay(d, t) {
			return i, true
		}
	}
	return 0, false
}

// VisibleHours is the height of one day column.
func (w Window) VisibleHours() int {
	return w.HourEnd - w.HourStart
}

// Contains reports whether the interval intersects the window.
func (w Window) Contains(iv record.Interval) bool {
	return iv.Overlaps(w.Interval())
}

// Scope keeps the records that intersect the window, preserving order.
func (w Window) Scope(recs []record.ScheduleRecord) []record.ScheduleRecord {
	out := make([]record.ScheduleRecord, 0, len(recs))
	for _, r := range recs {
		if w.Contains(r.Interval) {
			out = append(out, r)
		}
	}
	return out
}
