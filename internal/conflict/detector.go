// Package conflict finds overlapping schedule records and groups them into
// connected conflict sets.
package conflict

import (
	"sort"

	"github.com/javiermolinar/clashmap/internal/record"
)

// Overlaps reports whether two records overlap in time.
// Back-to-back records do not overlap.
func Overlaps(a, b record.ScheduleRecord) bool {
	return a.Interval.Overlaps(b.Interval)
}

// Pair is an unordered pair of overlapping records, stored with A < B.
type Pair struct {
	A record.Key
	B record.Key
}

func newPair(a, b record.Key) Pair {
	if b.Less(a) {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Other returns the member of the pair that is not k.
func (p Pair) Other(k record.Key) record.Key {
	if p.A == k {
		return p.B
	}
	return p.A
}

// FindOverlaps returns every overlapping pair in recs.
// Records are swept in start order while an active list holds those that
// have not ended yet; a record can only overlap entries still active.
func FindOverlaps(recs []record.ScheduleRecord) []Pair {
	order := make([]int, len(recs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return recs[order[i]].Interval.Start.Before(recs[order[j]].Interval.Start)
	})

	var (
		pairs  []Pair
		active []int
	)
	for _, idx := range order {
		cur := recs[idx]

		kept := active[:0]
		for _, a := range active {
			if recs[a].Interval.End.After(cur.Interval.Start) {
				kept = append(kept, a)
			}
		}
		active = kept

		for _, a := range active {
			if Overlaps(recs[a], cur) {
				pairs = append(pairs, newPair(recs[a].Key(), cur.Key()))
			}
		}
		active = append(active, idx)
	}

	sortPairs(pairs)
	return pairs
}

// findOverlapsNaive compares every pair. Used to check FindOverlaps.
func findOverlapsNaive(recs []record.ScheduleRecord) []Pair {
	var pairs []Pair
	for i := 0; i < len(recs); i++ {
		for j := i + 1; j < len(recs); j++ {
			if Overlaps(recs[i], recs[j]) {
				pairs = append(pairs, newPair(recs[i].Key(), recs[j].Key()))
			}
		}
	}
	sortPairs(pairs)
	return pairs
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A.Less(pairs[j].A)
		}
		return pairs[i].B.Less(pairs[j].B)
	})
}
