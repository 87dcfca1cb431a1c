package calendar

import (
	"strings"
	"time"

	"github.com/cpuguy83/dayplan/internal/store"
)

// DefaultOffsetCorrection is the fixed correction subtracted from raw
// appointment timestamps before zone conversion. It compensates for an
// observed quirk where the store reports times shifted ahead by nine hours.
// The root cause is unconfirmed, so the correction stays an explicit,
// configurable step rather than being folded into zone handling.
const DefaultOffsetCorrection = 9 * time.Hour

// Normalizer converts raw appointments into CalendarEvents. The zero value
// applies no offset correction and uses the process-local zone.
type Normalizer struct {
	// Location is the zone events are expressed in. Nil means time.Local.
	Location *time.Location

	// OffsetCorrection is subtracted from raw Start/End before they are
	// converted to Location. The order is fixed: correction first, zone
	// conversion second.
	OffsetCorrection time.Duration
}

// Normalize converts one raw appointment into a CalendarEvent. Textual
// fields are read tolerantly: a missing subject becomes "", other missing
// text fields stay absent. Start and End are required; if either cannot be
// derived the item fails with a NormalizationError and is skipped by the
// caller.
func (n *Normalizer) Normalize(item store.Appointment) (CalendarEvent, error) {
	subject, _ := item.Subject()

	start, ok := item.Start()
	if !ok {
		return CalendarEvent{}, &NormalizationError{Subject: subject, Field: "Start"}
	}
	end, ok := item.End()
	if !ok {
		return CalendarEvent{}, &NormalizationError{Subject: subject, Field: "End"}
	}

	id, _ := item.EntryID()
	location, _ := item.Location()
	organizer, _ := item.Organizer()
	required, _ := item.RequiredAttendees()
	optional, _ := item.OptionalAttendees()
	rawCategories, _ := item.Categories()

	busyCode, busyOK := item.BusyStatus()
	sensCode, sensOK := item.Sensitivity()

	return CalendarEvent{
		ID:                id,
		Subject:           subject,
		Location:          location,
		Start:             n.localISO(start),
		End:               n.localISO(end),
		IsAllDay:          item.AllDayEvent(),
		IsRecurring:       item.IsRecurring(),
		BusyStatus:        SafeBusyStatus(busyCode, busyOK),
		Sensitivity:       SafeSensitivity(sensCode, sensOK),
		Organizer:         organizer,
		RequiredAttendees: required,
		OptionalAttendees: optional,
		Categories:        splitCategories(rawCategories),
	}, nil
}

// localISO applies the offset correction, converts to the target zone, and
// serializes as RFC 3339.
func (n *Normalizer) localISO(t time.Time) string {
	loc := n.Location
	if loc == nil {
		loc = time.Local
	}
	return t.Add(-n.OffsetCorrection).In(loc).Format(time.RFC3339)
}

// splitCategories splits the store's comma-joined category string into
// trimmed, non-empty tags, preserving order.
func splitCategories(raw string) []string {
	out := []string{}
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
