package calendar

import (
	"fmt"
	"time"

	"github.com/cpuguy83/dayplan/internal/store"
)

// TodayWindow returns the half-open interval [start, end) covering now's
// calendar date in loc: start is local midnight of that date, end is local
// midnight of the following date. Both bounds are wall-clock midnights in
// the same zone, so the window covers exactly one calendar day even when a
// DST transition makes that day 23 or 25 hours long.
func TodayWindow(now time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end = start.AddDate(0, 0, 1)
	return start, end
}

// BuildRestrictFilter renders a time window into the store's textual
// restriction predicate:
//
//	[Start] < 'END_TS' AND [END] > 'START_TS'
//
// The end bound comes first so that items which started before the window
// but are still running inside it (overnight or multi-hour appointments)
// match, not only items that start within the window. Timestamps are
// wall-clock strings in layout (store.DefaultRestrictLayout if empty); the
// store parses them with its own locale rules and a malformed string
// silently matches nothing, so the layout must match the store exactly.
func BuildRestrictFilter(start, end time.Time, layout string) string {
	if layout == "" {
		layout = store.DefaultRestrictLayout
	}
	return fmt.Sprintf("[Start] < '%s' AND [END] > '%s'", end.Format(layout), start.Format(layout))
}
