// Package store defines the contract between the fetch pipeline and a
// calendar store backend. The real backend is Outlook reached over COM
// automation; the same contract is implemented by ICS- and CalDAV-backed
// stores and by test doubles. Field absence on an appointment is always
// expressed through the ok return, never as an error.
package store

import (
	"context"
	"time"
)

// Store opens sessions against a calendar backend.
type Store interface {
	// Open acquires a session. The caller must Close the session on every
	// exit path, whether or not the fetch succeeds.
	Open(ctx context.Context) (Session, error)
}

// Session is a scoped handle on the store.
type Session interface {
	// DefaultCalendar locates the store's default calendar folder.
	DefaultCalendar() (Folder, error)

	// Close releases the session. Safe to call exactly once.
	Close() error
}

// Folder is a calendar container holding appointment items.
type Folder interface {
	Items() (Items, error)
}

// Items is a result-set view over appointments.
type Items interface {
	// Sort orders the result set in place by the given store field,
	// e.g. "[Start]".
	Sort(field string) error

	// SetIncludeRecurrences toggles recurrence expansion: with it enabled,
	// each occurrence of a recurring appointment appears as its own item.
	SetIncludeRecurrences(enabled bool) error

	// Restrict applies a textual restriction predicate (see ParseRestrict
	// for the grammar) and returns the filtered view. A predicate the store
	// cannot parse yields zero matches, not an error.
	Restrict(query string) (Items, error)

	// Each calls fn for every item in the result set. A non-nil return
	// from fn stops the iteration and is returned as-is.
	Each(fn func(Appointment) error) error
}

// Appointment is a single raw calendar entry. All getters are tolerant:
// a field the store does not carry reports ok=false.
type Appointment interface {
	EntryID() (string, bool)
	Subject() (string, bool)
	Location() (string, bool)
	Start() (time.Time, bool)
	End() (time.Time, bool)
	AllDayEvent() bool
	IsRecurring() bool
	BusyStatus() (int, bool)
	Sensitivity() (int, bool)
	Organizer() (string, bool)
	RequiredAttendees() (string, bool)
	OptionalAttendees() (string, bool)
	Categories() (string, bool)
}
