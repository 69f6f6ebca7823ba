package view

import (
	"fmt"
	"time"

	"github.com/javiermolinar/clashmap/internal/dateutil"
	"github.com/javiermolinar/clashmap/internal/record"
)

// FormatInterval renders an interval in loc. The end carries its own date
// when it falls on a later day.
func FormatInterval(iv record.Interval, loc *time.Location) string {
	start := iv.Start.In(loc)
	end := iv.End.In(loc)
	if dateutil.SameDay(start, end) {
		return fmt.Sprintf("%s %s-%s", start.Format(dateutil.DateLayout), start.Format(dateutil.ClockLayout), end.Format(dateutil.ClockLayout))
	}
	return fmt.Sprintf("%s %s → %s %s",
		start.Format(dateutil.DateLayout), start.Format(dateutil.ClockLayout),
		end.Format(dateutil.DateLayout), end.Format(dateutil.ClockLayout))
}
