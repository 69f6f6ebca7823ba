package conflict

import (
	"sort"

	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/window"
)

// Group is a maximal set of records connected by overlaps. Two members need
// not overlap directly; a chain of overlaps is enough.
type Group struct {
	Members []record.ScheduleRecord
}

// Keys returns the member keys in member order.
func (g Group) Keys() []record.Key {
	keys := make([]record.Key, len(g.Members))
	for i, m := range g.Members {
		keys[i] = m.Key()
	}
	return keys
}

// Span returns the smallest interval covering every member.
func (g Group) Span() record.Interval {
	if len(g.Members) == 0 {
		return record.Interval{}
	}
	span := g.Members[0].Interval
	for _, m := range g.Members[1:] {
		span = span.Union(m.Interval)
	}
	return span
}

// Contains reports whether k is a member.
func (g Group) Contains(k record.Key) bool {
	for _, m := range g.Members {
		if m.Key() == k {
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (g Group) Len() int { return len(g.Members) }

// unionFind is a disjoint-set forest over record indices.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}

// GroupConflicts partitions the records touched by pairs into connected
// groups. Records without any overlap are not part of any group.
// Groups are ordered by earliest start for presentation only; the order is
// not an identity and may change between calls with different inputs.
func GroupConflicts(recs []record.ScheduleRecord, pairs []Pair) []Group {
	index := make(map[record.Key]int, len(recs))
	for i, r := range recs {
		index[r.Key()] = i
	}

	uf := newUnionFind(len(recs))
	touched := make(map[int]bool)
	for _, p := range pairs {
		a, okA := index[p.A]
		b, okB := index[p.B]
		if !okA || !okB || a == b {
			continue
		}
		uf.union(a, b)
		touched[a], touched[b] = true, true
	}

	byRoot := make(map[int]*Group)
	for i := range recs {
		if !touched[i] {
			continue
		}
		root := uf.find(i)
		g, ok := byRoot[root]
		if !ok {
			g = &Group{}
			byRoot[root] = g
		}
		g.Members = append(g.Members, recs[i])
	}

	groups := make([]Group, 0, len(byRoot))
	for _, g := range byRoot {
		sortMembers(g.Members)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Members[0], groups[j].Members[0]
		if !a.Interval.Start.Equal(b.Interval.Start) {
			return a.Interval.Start.Before(b.Interval.Start)
		}
		return a.Key().Less(b.Key())
	})
	return groups
}

func sortMembers(members []record.ScheduleRecord) {
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if !a.Interval.Start.Equal(b.Interval.Start) {
			return a.Interval.Start.Before(b.Interval.Start)
		}
		return a.Key().Less(b.Key())
	})
}

// Result is the outcome of a detection pass over one window.
type Result struct {
	Pairs       []Pair
	Groups      []Group
	Conflicting map[record.Key]bool
}

// HasConflicts reports whether any pair was found.
func (r Result) HasConflicts() bool {
	return len(r.Pairs) > 0
}

// Partners returns the keys that overlap k directly.
func (r Result) Partners(k record.Key) []record.Key {
	var out []record.Key
	for _, p := range r.Pairs {
		if p.A == k || p.B == k {
			out = append(out, p.Other(k))
		}
	}
	return out
}

// GroupOf returns the group holding k.
func (r Result) GroupOf(k record.Key) (Group, bool) {
	for _, g := range r.Groups {
		if g.Contains(k) {
			return g, true
		}
	}
	return Group{}, false
}

// Detect scopes recs to the window, then finds and groups overlaps.
// Records outside the window never take part, even if they would bridge two
// in-window records.
func Detect(recs []record.ScheduleRecord, win window.Window) Result {
	scoped := win.Scope(recs)
	pairs := FindOverlaps(scoped)
	groups := GroupConflicts(scoped, pairs)

	conflicting := make(map[record.Key]bool)
	for _, p := range pairs {
		conflicting[p.A] = true
		conflicting[p.B] = true
	}
	return Result{Pairs: pairs, Groups: groups, Conflicting: conflicting}
}
