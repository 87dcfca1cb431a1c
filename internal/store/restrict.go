package store

import (
	"regexp"
	"time"
)

// DefaultRestrictLayout is the Go layout for the timestamp strings inside a
// restriction predicate, matching a US-locale Outlook installation
// (MM/DD/YYYY hh:mm AM|PM). Stores with a different locale configure their
// own layout; the predicate builder and parser must agree on it.
const DefaultRestrictLayout = "01/02/2006 03:04 PM"

// Window is a half-open [Start, End) time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether an item spanning [itemStart, itemEnd) intersects
// the window. An item that started before the window but is still running
// inside it overlaps; an item that ends exactly at Window.Start does not.
func (w Window) Overlaps(itemStart, itemEnd time.Time) bool {
	return itemStart.Before(w.End) && itemEnd.After(w.Start)
}

var restrictRe = regexp.MustCompile(`^\[Start\] < '([^']+)' AND \[END\] > '([^']+)'$`)

// ParseRestrict parses a restriction predicate of the form
//
//	[Start] < 'END_TS' AND [END] > 'START_TS'
//
// back into the time window it was built from. Emulated stores use it to
// honor Restrict the way the real store would. Timestamps are interpreted
// as wall-clock times in loc using layout (DefaultRestrictLayout if empty).
// A query that does not match the grammar or does not parse reports
// ok=false; callers treat that as zero matches, mirroring the real store's
// silent behavior on malformed predicates.
func ParseRestrict(query, layout string, loc *time.Location) (w Window, ok bool) {
	if layout == "" {
		layout = DefaultRestrictLayout
	}
	if loc == nil {
		loc = time.Local
	}

	m := restrictRe.FindStringSubmatch(query)
	if m == nil {
		return Window{}, false
	}

	end, err := time.ParseInLocation(layout, m[1], loc)
	if err != nil {
		return Window{}, false
	}
	start, err := time.ParseInLocation(layout, m[2], loc)
	if err != nil {
		return Window{}, false
	}

	return Window{Start: start, End: end}, true
}
