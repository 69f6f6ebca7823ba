package reschedule

import (
	"fmt"
	"time"

	"github.com/javiermolinar/clashmap/internal/grid"
	"github.com/javiermolinar/clashmap/internal/record"
	"github.com/javiermolinar/clashmap/internal/window"
)

// TargetInterval returns rec's interval moved to start at the slot's hour,
// keeping its duration. The slot must be inside the window and not start
// before now. Conflicts at the target are not checked; detection runs again
// after the move.
func TargetInterval(rec record.ScheduleRecord, slot grid.TimeSlot, win window.Window, now time.Time) (record.Interval, error) {
	start, err := slot.Start(win)
	if err != nil {
		return record.Interval{}, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	return TargetAt(rec, start, now)
}

// TargetAt returns rec's interval moved to start, keeping its duration.
// A start before now is rejected.
func TargetAt(rec record.ScheduleRecord, start, now time.Time) (record.Interval, error) {
	if start.Before(now) {
		return record.Interval{}, fmt.Errorf("%w: %s is in the past", ErrInvalidTarget, start.Format("2006-01-02 15:04"))
	}
	iv := rec.Interval.Shift(start)
	if err := iv.Validate(); err != nil {
		return record.Interval{}, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	return iv, nil
}
