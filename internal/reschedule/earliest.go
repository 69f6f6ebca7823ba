package reschedule

import (
	"time"

	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/window"
)

// DefaultStep is the granularity of EarliestFit start times.
const DefaultStep = 15 * time.Minute

// EarliestFit places a record in the first free gap inside the window's
// visible hours, at or after NotBefore rounded up to Step. A candidate must
// keep Gap away from every record. When no day of the window has room it
// falls back to GreedyTailAppend.
type EarliestFit struct {
	Window    window.Window
	Gap       time.Duration
	NotBefore time.Time
	Step      time.Duration
}

// Next implements Strategy.
func (s EarliestFit) Next(recs []record.ScheduleRecord, d time.Duration) record.Interval {
	step := s.Step
	if step <= 0 {
		step = DefaultStep
	}
	gap := max(s.Gap, 0)
	win := s.Window
	loc := win.Location
	if loc == nil {
		loc = time.Local
	}

	for i := range win.Days {
		day := win.Date(i)
		open := time.Date(day.Year(), day.Month(), day.Day(), win.HourStart, 0, 0, 0, loc)
		closing := time.Date(day.Year(), day.Month(), day.Day(), win.HourEnd, 0, 0, 0, loc)

		start := open
		if start.Before(s.NotBefore) {
			start = roundUp(s.NotBefore, step)
		}
		for !start.Add(d).After(closing) {
			candidate := record.Interval{Start: start, End: start.Add(d)}
			end, blocked := blockedUntil(recs, candidate, gap)
			if !blocked {
				return candidate
			}
			start = roundUp(end.Add(gap), step)
		}
	}

	return GreedyTailAppend{Gap: s.Gap, NotBefore: s.NotBefore}.Next(recs, d)
}

// blockedUntil returns the latest end among records that come within gap of
// iv, and whether there was any.
func blockedUntil(recs []record.ScheduleRecord, iv record.Interval, gap time.Duration) (time.Time, bool) {
	padded := record.Interval{Start: iv.Start.Add(-gap), End: iv.End.Add(gap)}
	var latest time.Time
	blocked := false
	for _, r := range recs {
		if !r.Interval.Overlaps(padded) {
			continue
		}
		if !blocked || r.Interval.End.After(latest) {
			latest = r.Interval.End
		}
		blocked = true
	}
	return latest, blocked
}

// roundUp rounds t up to the next multiple of step.
func roundUp(t time.Time, step time.Duration) time.Time {
	r := t.Truncate(step)
	if r.Before(t) {
		r = r.Add(step)
	}
	return r
}
