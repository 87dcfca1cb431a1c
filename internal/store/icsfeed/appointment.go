package icsfeed

import (
	"strings"
	"time"

	ics "github.com/emersion/go-ical"

	"github.com/cpuguy83/dayplan/internal/store"
)

// Microsoft-flavored ICS properties carried by feeds exported from the
// desktop calendar application.
const (
	propBusyStatus = "X-MICROSOFT-CDO-BUSYSTATUS"
	propClass      = "CLASS"
)

// busyStatusCodes maps the X-MICROSOFT-CDO-BUSYSTATUS vocabulary onto the
// store's raw integer codes.
var busyStatusCodes = map[string]int{
	"FREE":             0,
	"TENTATIVE":        1,
	"BUSY":             2,
	"OOF":              3,
	"WORKINGELSEWHERE": 4,
}

// classCodes maps CLASS values onto the store's sensitivity codes.
var classCodes = map[string]int{
	"PUBLIC":       0,
	"PRIVATE":      2,
	"CONFIDENTIAL": 3,
}

// Appointment adapts a VEVENT component to the store's appointment
// contract. Temporal fields are parsed eagerly so occurrences can be
// derived; everything else is read from the component on demand.
type Appointment struct {
	comp *ics.Component
	loc  *time.Location

	start, end   time.Time
	hasStart     bool
	hasEnd       bool
	allDay       bool
	isOccurrence bool
}

// NewAppointment wraps a VEVENT. Missing or unparseable timestamps leave
// the corresponding getter reporting absence; they are not an error here.
func NewAppointment(comp *ics.Component, loc *time.Location) *Appointment {
	if loc == nil {
		loc = time.Local
	}
	a := &Appointment{comp: comp, loc: loc}

	if t, allDay, ok := parseTimeProp(comp, ics.PropDateTimeStart, loc); ok {
		a.start, a.hasStart = t, true
		a.allDay = allDay
	}
	if t, _, ok := parseTimeProp(comp, ics.PropDateTimeEnd, loc); ok {
		a.end, a.hasEnd = t, true
	} else if a.hasStart {
		// No DTEND: default to one hour, like other consumers of these
		// feeds do.
		a.end, a.hasEnd = a.start.Add(time.Hour), true
	}

	return a
}

// occurrence derives a single expanded instance of a recurring event.
func (a *Appointment) occurrence(start, end time.Time) *Appointment {
	occ := *a
	occ.start, occ.hasStart = start, true
	occ.end, occ.hasEnd = end, true
	occ.isOccurrence = true
	return &occ
}

func (a *Appointment) EntryID() (string, bool)  { return a.prop(ics.PropUID) }
func (a *Appointment) Subject() (string, bool)  { return a.prop(ics.PropSummary) }
func (a *Appointment) Location() (string, bool) { return a.prop(ics.PropLocation) }

func (a *Appointment) Start() (time.Time, bool) { return a.start, a.hasStart }
func (a *Appointment) End() (time.Time, bool)   { return a.end, a.hasEnd }

func (a *Appointment) AllDayEvent() bool { return a.allDay }

func (a *Appointment) IsRecurring() bool {
	if a.isOccurrence {
		return true
	}
	return a.comp.Props.Get(ics.PropRecurrenceRule) != nil
}

func (a *Appointment) BusyStatus() (int, bool) {
	raw, ok := a.prop(propBusyStatus)
	if !ok {
		return 0, false
	}
	code, ok := busyStatusCodes[strings.ToUpper(strings.TrimSpace(raw))]
	return code, ok
}

func (a *Appointment) Sensitivity() (int, bool) {
	raw, ok := a.prop(propClass)
	if !ok {
		return 0, false
	}
	code, ok := classCodes[strings.ToUpper(strings.TrimSpace(raw))]
	return code, ok
}

func (a *Appointment) Organizer() (string, bool) {
	prop := a.comp.Props.Get(ics.PropOrganizer)
	if prop == nil {
		return "", false
	}
	return displayName(prop), true
}

func (a *Appointment) RequiredAttendees() (string, bool) {
	return a.attendees(false)
}

func (a *Appointment) OptionalAttendees() (string, bool) {
	return a.attendees(true)
}

// attendees joins attendee display names with the store's "; " separator.
// An attendee with no ROLE parameter counts as required, per RFC 5545's
// REQ-PARTICIPANT default.
func (a *Appointment) attendees(optional bool) (string, bool) {
	var names []string
	for _, prop := range a.comp.Props[ics.PropAttendee] {
		role := strings.ToUpper(prop.Params.Get("ROLE"))
		isOptional := role == "OPT-PARTICIPANT"
		if isOptional != optional {
			continue
		}
		names = append(names, displayName(&prop))
	}
	if len(names) == 0 {
		return "", false
	}
	return strings.Join(names, "; "), true
}

func (a *Appointment) Categories() (string, bool) {
	var all []string
	for _, prop := range a.comp.Props[ics.PropCategories] {
		if prop.Value != "" {
			all = append(all, prop.Value)
		}
	}
	if len(all) == 0 {
		return "", false
	}
	return strings.Join(all, ","), true
}

func (a *Appointment) prop(name string) (string, bool) {
	prop := a.comp.Props.Get(name)
	if prop == nil {
		return "", false
	}
	return prop.Value, true
}

// displayName prefers the CN parameter and falls back to the property
// value with any mailto: prefix stripped.
func displayName(prop *ics.Prop) string {
	if cn := prop.Params.Get("CN"); cn != "" {
		return cn
	}
	return strings.TrimPrefix(prop.Value, "mailto:")
}

// parseTimeProp reads a date-time property, falling back to floating and
// date-only forms. The second return reports whether the value was
// date-only, which marks an all-day event.
func parseTimeProp(comp *ics.Component, name string, loc *time.Location) (time.Time, bool, bool) {
	prop := comp.Props.Get(name)
	if prop == nil {
		return time.Time{}, false, false
	}

	dateOnly := strings.EqualFold(prop.Params.Get("VALUE"), "DATE")

	if t, err := prop.DateTime(loc); err == nil {
		return t, dateOnly, true
	}
	// Floating time: neither UTC nor TZID-qualified.
	if t, err := time.ParseInLocation("20060102T150405", prop.Value, loc); err == nil {
		return t, false, true
	}
	// Date-only value: an all-day event.
	if t, err := time.ParseInLocation("20060102", prop.Value, loc); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}

var (
	_ store.Store       = (*Store)(nil)
	_ store.Items       = (*ItemSet)(nil)
	_ store.Appointment = (*Appointment)(nil)
)
