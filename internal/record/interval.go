package record

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval creates a validated interval.
func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// Validate returns ErrEmptyInterval unless Start is strictly before End.
func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return ErrEmptyInterval
	}
	return nil
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps returns true if two intervals overlap.
// Two intervals overlap if: start1 < end2 AND start2 < end1.
// Back-to-back intervals (a.End == b.Start) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Shift moves the interval to a new start, keeping its duration.
func (iv Interval) Shift(start time.Time) Interval {
	return Interval{Start: start, End: start.Add(iv.Duration())}
}

// Union returns the smallest interval covering both.
func (iv Interval) Union(other Interval) Interval {
	out := iv
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	return out
}

// Equal reports whether both bounds denote the same instants.
func (iv Interval) Equal(other Interval) bool {
	return iv.Start.Equal(other.Start) && iv.End.Equal(other.End)
}

// OverlapDuration returns how long two intervals overlap, zero if they do not.
func (iv Interval) OverlapDuration(other Interval) time.Duration {
	start := iv.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := iv.End
	if other.End.Before(end) {
		end = other.End
	}
	if !start.Before(end) {
		return 0
	}
	return end.Sub(start)
}
