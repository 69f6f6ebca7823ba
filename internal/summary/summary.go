// Package summary aggregates a board into per-source and per-day totals.
package summary

import (
	"time"

	"github.com/javiermolinar/clashmap/internal/board"
	"github.com/javiermolinar/clashmap/internal/record"
)

// SourceStats holds the totals of one source inside the window.
type SourceStats struct {
	Records   int
	Minutes   int // booked time clipped to the window
	Clashing  int
	Completed int
	Overdue   int
}

// DayStats holds the totals of one window day.
type DayStats struct {
	Date     time.Time
	Records  int
	Minutes  int
	Clashing int
}

// Summary holds aggregated window data.
type Summary struct {
	Start          time.Time
	End            time.Time
	Sources        map[record.SourceType]SourceStats
	Days           []DayStats
	Groups         int
	Pairs          int
	OverlapMinutes int // total time shared by overlapping pairs
	Dropped        int
}

// Records returns the number of records in the window.
func (s *Summary) Records() int {
	n := 0
	for _, st := range s.Sources {
		n += st.Records
	}
	return n
}

// Clashing returns the number of records in at least one conflict.
func (s *Summary) Clashing() int {
	n := 0
	for _, st := range s.Sources {
		n += st.Clashing
	}
	return n
}

// TotalMinutes returns the booked minutes across every source.
func (s *Summary) TotalMinutes() int {
	n := 0
	for _, st := range s.Sources {
		n += st.Minutes
	}
	return n
}

// ClashPercent returns the share of records that clash.
func (s *Summary) ClashPercent() int {
	if s.Records() == 0 {
		return 0
	}
	return s.Clashing() * 100 / s.Records()
}

// BusiestDay returns the day index with the most booked minutes, or -1 when
// nothing is booked.
func (s *Summary) BusiestDay() (day int, minutes int) {
	day = -1
	for i, ds := range s.Days {
		if ds.Minutes > minutes {
			day, minutes = i, ds.Minutes
		}
	}
	return day, minutes
}

// Summarize builds a summary from a computed board.
func Summarize(b *board.Board) *Summary {
	win := b.Window
	span := win.Interval()

	s := &Summary{
		Start:   span.Start,
		End:     span.End,
		Sources: make(map[record.SourceType]SourceStats, len(record.AllSources())),
		Days:    make([]DayStats, win.Days),
		Groups:  len(b.Result.Groups),
		Pairs:   len(b.Result.Pairs),
		Dropped: b.Dropped(),
	}
	for i, d := range win.Dates() {
		s.Days[i].Date = d
	}

	byKey := make(map[record.Key]record.ScheduleRecord, len(b.Records))
	for _, r := range b.Records {
		byKey[r.Key()] = r
		clashing := b.Result.Conflicting[r.Key()]
		minutes := int(r.Interval.OverlapDuration(span) / time.Minute)

		st := s.Sources[r.Source]
		st.Records++
		st.Minutes += minutes
		if clashing {
			st.Clashing++
		}
		switch r.EffectiveStatus(b.Now) {
		case record.StatusCompleted:
			st.Completed++
		case record.StatusOverdue:
			st.Overdue++
		}
		s.Sources[r.Source] = st

		if i, ok := win.DayIndex(r.Interval.Start); ok {
			s.Days[i].Records++
			s.Days[i].Minutes += minutes
			if clashing {
				s.Days[i].Clashing++
			}
		}
	}

	for _, p := range b.Result.Pairs {
		a, okA := byKey[p.A]
		c, okB := byKey[p.B]
		if okA && okB {
			s.OverlapMinutes += int(a.Interval.OverlapDuration(c.Interval) / time.Minute)
		}
	}
	return s
}
