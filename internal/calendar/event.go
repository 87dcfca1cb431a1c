// Package calendar implements the day-schedule fetch pipeline: status
// enums, the today time window, the store restriction filter, appointment
// normalization, and the fetch orchestrator that ties them together.
package calendar

import "time"

// CalendarEvent is the normalized, timezone-correct form of one appointment.
// Start and End are RFC 3339 strings in the requested local zone; whenever a
// CalendarEvent exists they are valid and zone-bearing, since normalization
// fails on items whose temporal fields cannot be derived.
type CalendarEvent struct {
	// ID is the store's opaque entry identifier, empty if the store
	// provides none.
	ID string `json:"id,omitempty"`

	// Subject is the display text. Never absent; empty when the store
	// carries no subject.
	Subject string `json:"subject"`

	Location string `json:"location,omitempty"`

	Start string `json:"start"`
	End   string `json:"end"`

	IsAllDay    bool `json:"is_all_day"`
	IsRecurring bool `json:"is_recurring"`

	BusyStatus  BusyStatus  `json:"busy_status"`
	Sensitivity Sensitivity `json:"sensitivity"`

	Organizer string `json:"organizer,omitempty"`

	// RequiredAttendees and OptionalAttendees keep the store-native
	// serialization (e.g. "Ada Lovelace; Grace Hopper"), not decomposed.
	RequiredAttendees string `json:"required_attendees,omitempty"`
	OptionalAttendees string `json:"optional_attendees,omitempty"`

	// Categories holds trimmed, non-empty tags in source order.
	Categories []string `json:"categories"`
}

// StartTime parses the event's start timestamp.
func (e *CalendarEvent) StartTime() (time.Time, error) {
	return time.Parse(time.RFC3339, e.Start)
}

// EndTime parses the event's end timestamp.
func (e *CalendarEvent) EndTime() (time.Time, error) {
	return time.Parse(time.RFC3339, e.End)
}
