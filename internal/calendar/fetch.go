package calendar

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/cpuguy83/dayplan/internal/store"
)

// Fetcher drives a single day-schedule fetch against a store. Each
// FetchToday call is independent: it opens its own session and releases it
// before returning, on every path.
type Fetcher struct {
	Store store.Store

	// Location is the zone used for the today window and for normalized
	// timestamps. Nil means time.Local.
	Location *time.Location

	// OffsetCorrection is passed through to the normalizer.
	OffsetCorrection time.Duration

	// RestrictLayout is the timestamp layout for the restriction
	// predicate. Empty means store.DefaultRestrictLayout.
	RestrictLayout string

	// Now is the clock; nil means time.Now. Exists so the today window is
	// deterministic under test.
	Now func() time.Time
}

// FetchToday returns today's appointments as normalized events sorted by
// start time. Store-level failures (session, folder lookup, restriction)
// surface as a StoreUnavailableError; per-item normalization failures are
// logged at debug and the item is dropped, so one malformed appointment
// never aborts the fetch. An empty slice with a nil error is a valid
// result: no appointments today.
func (f *Fetcher) FetchToday(ctx context.Context) ([]CalendarEvent, error) {
	sess, err := f.Store.Open(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "open session", Err: err}
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			slog.Warn("failed to close store session", "error", cerr)
		}
	}()

	folder, err := sess.DefaultCalendar()
	if err != nil {
		return nil, &StoreUnavailableError{Op: "locate default calendar", Err: err}
	}

	items, err := folder.Items()
	if err != nil {
		return nil, &StoreUnavailableError{Op: "list items", Err: err}
	}
	if err := items.Sort("[Start]"); err != nil {
		return nil, &StoreUnavailableError{Op: "sort items", Err: err}
	}
	if err := items.SetIncludeRecurrences(true); err != nil {
		return nil, &StoreUnavailableError{Op: "enable recurrence expansion", Err: err}
	}

	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	start, end := TodayWindow(now, f.Location)
	query := BuildRestrictFilter(start, end, f.RestrictLayout)
	slog.Debug("restricting calendar items", "query", query)

	restricted, err := items.Restrict(query)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "apply restriction", Err: err}
	}

	norm := &Normalizer{Location: f.Location, OffsetCorrection: f.OffsetCorrection}

	events := []CalendarEvent{}
	err = restricted.Each(func(item store.Appointment) error {
		ev, nerr := norm.Normalize(item)
		if nerr != nil {
			slog.Debug("skipping appointment", "error", nerr)
			return nil
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return nil, &StoreUnavailableError{Op: "iterate items", Err: err}
	}

	// Defensive re-sort, independent of the store's native ordering.
	// Lexicographic order on RFC 3339 strings is chronological as long as
	// all timestamps share a zone, which normalization guarantees.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start < events[j].Start
	})

	return events, nil
}
