package reschedule

import (
	"time"

	"github.com/javiermolinar/clashmap/internal/record"
)

// DefaultGap separates an appended record from the latest existing end.
const DefaultGap = time.Hour

// Strategy picks a new interval of the given duration against the current
// record set.
type Strategy interface {
	Next(recs []record.ScheduleRecord, d time.Duration) record.Interval
}

// GreedyTailAppend places a record Gap after the latest end among all
// records, or after NotBefore when that is later.
//
// It does not search for the earliest free gap. The result is always
// conflict-free against the given set, but it may land far in the future
// or on a day outside the visible window.
type GreedyTailAppend struct {
	Gap       time.Duration
	NotBefore time.Time
}

// Next implements Strategy.
func (s GreedyTailAppend) Next(recs []record.ScheduleRecord, d time.Duration) record.Interval {
	latest := s.NotBefore
	for _, r := range recs {
		if r.Interval.End.After(latest) {
			latest = r.Interval.End
		}
	}
	gap := s.Gap
	if gap < 0 {
		gap = 0
	}
	start := latest.Add(gap)
	return record.Interval{Start: start, End: start.Add(d)}
}
