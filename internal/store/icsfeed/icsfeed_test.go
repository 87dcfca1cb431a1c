package icsfeed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cpuguy83/dayplan/internal/store"
)

const dayQuery = "[Start] < '03/16/2024 12:00 AM' AND [END] > '03/15/2024 12:00 AM'"

func writeFeed(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calendar.ics")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write feed: %v", err)
	}
	return path
}

// collect opens the feed, applies the standard fetch sequence, and returns
// the matching appointments.
func collect(t *testing.T, path, query string) []store.Appointment {
	t.Helper()

	s := New(path, "", "", time.UTC, "")
	sess, err := s.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sess.Close()

	folder, err := sess.DefaultCalendar()
	if err != nil {
		t.Fatalf("default calendar: %v", err)
	}
	items, err := folder.Items()
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if err := items.Sort("[Start]"); err != nil {
		t.Fatalf("sort: %v", err)
	}
	if err := items.SetIncludeRecurrences(true); err != nil {
		t.Fatalf("include recurrences: %v", err)
	}

	restricted, err := items.Restrict(query)
	if err != nil {
		t.Fatalf("restrict: %v", err)
	}

	var out []store.Appointment
	if err := restricted.Each(func(a store.Appointment) error {
		out = append(out, a)
		return nil
	}); err != nil {
		t.Fatalf("each: %v", err)
	}
	return out
}

func TestFeedAppointmentFields(t *testing.T) {
	path := writeFeed(t, `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:evt-1
SUMMARY:Planning
LOCATION:Room 4A
DTSTART:20240315T090000Z
DTEND:20240315T103000Z
X-MICROSOFT-CDO-BUSYSTATUS:OOF
CLASS:CONFIDENTIAL
CATEGORIES:Work,Planning
ORGANIZER;CN=Ada Lovelace:mailto:ada@example.com
ATTENDEE;ROLE=REQ-PARTICIPANT;CN=Grace Hopper:mailto:grace@example.com
ATTENDEE;ROLE=OPT-PARTICIPANT:mailto:edsger@example.com
END:VEVENT
END:VCALENDAR`)

	appts := collect(t, path, dayQuery)
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appts))
	}
	a := appts[0]

	if id, ok := a.EntryID(); !ok || id != "evt-1" {
		t.Errorf("EntryID = %q, %v", id, ok)
	}
	if subj, ok := a.Subject(); !ok || subj != "Planning" {
		t.Errorf("Subject = %q, %v", subj, ok)
	}
	if loc, ok := a.Location(); !ok || loc != "Room 4A" {
		t.Errorf("Location = %q, %v", loc, ok)
	}

	start, ok := a.Start()
	if !ok || !start.Equal(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v, %v", start, ok)
	}
	end, ok := a.End()
	if !ok || !end.Equal(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("End = %v, %v", end, ok)
	}

	if code, ok := a.BusyStatus(); !ok || code != 3 {
		t.Errorf("BusyStatus = %d, %v; want OOF code 3", code, ok)
	}
	if code, ok := a.Sensitivity(); !ok || code != 3 {
		t.Errorf("Sensitivity = %d, %v; want CONFIDENTIAL code 3", code, ok)
	}
	if org, ok := a.Organizer(); !ok || org != "Ada Lovelace" {
		t.Errorf("Organizer = %q, %v", org, ok)
	}
	if req, ok := a.RequiredAttendees(); !ok || req != "Grace Hopper" {
		t.Errorf("RequiredAttendees = %q, %v", req, ok)
	}
	if opt, ok := a.OptionalAttendees(); !ok || opt != "edsger@example.com" {
		t.Errorf("OptionalAttendees = %q, %v", opt, ok)
	}
	if cats, ok := a.Categories(); !ok || cats != "Work,Planning" {
		t.Errorf("Categories = %q, %v", cats, ok)
	}
	if a.AllDayEvent() {
		t.Error("timed event reported as all-day")
	}
	if a.IsRecurring() {
		t.Error("single event reported as recurring")
	}
}

func TestFeedRestrictWindow(t *testing.T) {
	path := writeFeed(t, `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:today
SUMMARY:Today
DTSTART:20240315T100000Z
DTEND:20240315T110000Z
END:VEVENT
BEGIN:VEVENT
UID:overnight
SUMMARY:Overnight
DTSTART:20240314T220000Z
DTEND:20240315T060000Z
END:VEVENT
BEGIN:VEVENT
UID:yesterday
SUMMARY:Yesterday
DTSTART:20240314T100000Z
DTEND:20240314T110000Z
END:VEVENT
BEGIN:VEVENT
UID:tomorrow
SUMMARY:Tomorrow
DTSTART:20240316T100000Z
DTEND:20240316T110000Z
END:VEVENT
END:VCALENDAR`)

	appts := collect(t, path, dayQuery)
	if len(appts) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(appts))
	}

	// Sorted by start: the in-progress overnight item comes first.
	if subj, _ := appts[0].Subject(); subj != "Overnight" {
		t.Errorf("first appointment = %q, want Overnight", subj)
	}
	if subj, _ := appts[1].Subject(); subj != "Today" {
		t.Errorf("second appointment = %q, want Today", subj)
	}
}

func TestFeedMalformedRestrictMatchesNothing(t *testing.T) {
	path := writeFeed(t, `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:today
SUMMARY:Today
DTSTART:20240315T100000Z
DTEND:20240315T110000Z
END:VEVENT
END:VCALENDAR`)

	appts := collect(t, path, "[Start] >= yesterday")
	if len(appts) != 0 {
		t.Fatalf("malformed predicate matched %d appointments, want 0", len(appts))
	}
}

func TestFeedRecurrenceExpansion(t *testing.T) {
	path := writeFeed(t, `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:standup
SUMMARY:Standup
DTSTART:20240311T090000Z
DTEND:20240311T091500Z
RRULE:FREQ=DAILY;COUNT=10
END:VEVENT
END:VCALENDAR`)

	appts := collect(t, path, dayQuery)
	if len(appts) != 1 {
		t.Fatalf("expected 1 occurrence inside the window, got %d", len(appts))
	}

	a := appts[0]
	if !a.IsRecurring() {
		t.Error("expanded occurrence must report recurring")
	}
	start, _ := a.Start()
	if !start.Equal(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("occurrence start = %v, want the in-window day", start)
	}
	end, _ := a.End()
	if got := end.Sub(start); got != 15*time.Minute {
		t.Errorf("occurrence duration = %v, want 15m", got)
	}
}

func TestFeedAllDayEvent(t *testing.T) {
	path := writeFeed(t, `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:holiday
SUMMARY:Holiday
DTSTART;VALUE=DATE:20240315
DTEND;VALUE=DATE:20240316
END:VEVENT
END:VCALENDAR`)

	appts := collect(t, path, dayQuery)
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appts))
	}
	if !appts[0].AllDayEvent() {
		t.Error("date-only event must report all-day")
	}
}

func TestFeedMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.ics"), "", "", time.UTC, "")
	if _, err := s.Open(context.Background()); err == nil {
		t.Fatal("expected error opening missing feed")
	}
}
