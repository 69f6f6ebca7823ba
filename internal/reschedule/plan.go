package reschedule

import (
	"sort"

	"github.com/javiermolinar/clashmap/internal/conflict"
	"github.com/javiermolinar/clashmap/internal/record"
)

// Move is one planned or applied interval change.
type Move struct {
	Key   record.Key
	Title string
	From  record.Interval
	To    record.Interval
}

// PlanAutoAdjust resolves every conflict group by keeping one member in
// place and moving the others with strategy. See Anchor for which member
// stays. Completed records are never moved.
//
// Each planned move is applied to the working set before the next is
// planned, so the moved records never collide with each other or with any
// record in recs.
func PlanAutoAdjust(recs []record.ScheduleRecord, groups []conflict.Group, strategy Strategy) []Move {
	working := make([]record.ScheduleRecord, len(recs))
	copy(working, recs)
	index := make(map[record.Key]int, len(working))
	for i, r := range working {
		index[r.Key()] = i
	}

	var moves []Move
	for _, g := range groups {
		anchor := Anchor(g)
		for _, m := range g.Members {
			if m.Key() == anchor.Key() || m.IsCompleted() {
				continue
			}
			to := strategy.Next(working, m.Duration())
			moves = append(moves, Move{Key: m.Key(), Title: m.Title, From: m.Interval, To: to})

			moved := m
			moved.Interval = to
			if i, ok := index[m.Key()]; ok {
				working[i] = moved
			} else {
				index[m.Key()] = len(working)
				working = append(working, moved)
			}
		}
	}
	return moves
}

// Anchor returns the group member that stays in place during auto-adjust:
// a completed member if there is one, otherwise the highest priority, then
// the earliest start, then the lowest key.
func Anchor(g conflict.Group) record.ScheduleRecord {
	members := make([]record.ScheduleRecord, len(g.Members))
	copy(members, g.Members)
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.IsCompleted() != b.IsCompleted() {
			return a.IsCompleted()
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if !a.Interval.Start.Equal(b.Interval.Start) {
			return a.Interval.Start.Before(b.Interval.Start)
		}
		return a.Key().Less(b.Key())
	})
	if len(members) == 0 {
		return record.ScheduleRecord{}
	}
	return members[0]
}
