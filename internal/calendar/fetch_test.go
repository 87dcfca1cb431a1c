package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpuguy83/dayplan/internal/store"
)

// fakeAppointment is a tolerant appointment double: nil pointer fields
// report ok=false, like a store field that is simply not there.
type fakeAppointment struct {
	id, subject, location       *string
	organizer                   *string
	required, optional          *string
	categories                  *string
	start, end                  *time.Time
	allDay, recurring           bool
	busyStatus, sensitivityCode *int
}

func (a *fakeAppointment) EntryID() (string, bool)  { return strOK(a.id) }
func (a *fakeAppointment) Subject() (string, bool)  { return strOK(a.subject) }
func (a *fakeAppointment) Location() (string, bool) { return strOK(a.location) }
func (a *fakeAppointment) Start() (time.Time, bool) { return timeOK(a.start) }
func (a *fakeAppointment) End() (time.Time, bool)   { return timeOK(a.end) }
func (a *fakeAppointment) AllDayEvent() bool        { return a.allDay }
func (a *fakeAppointment) IsRecurring() bool        { return a.recurring }
func (a *fakeAppointment) BusyStatus() (int, bool)  { return intOK(a.busyStatus) }
func (a *fakeAppointment) Sensitivity() (int, bool) { return intOK(a.sensitivityCode) }
func (a *fakeAppointment) Organizer() (string, bool) {
	return strOK(a.organizer)
}
func (a *fakeAppointment) RequiredAttendees() (string, bool) { return strOK(a.required) }
func (a *fakeAppointment) OptionalAttendees() (string, bool) { return strOK(a.optional) }
func (a *fakeAppointment) Categories() (string, bool)        { return strOK(a.categories) }

func strOK(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func timeOK(p *time.Time) (time.Time, bool) {
	if p == nil {
		return time.Time{}, false
	}
	return *p, true
}

func intOK(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func str(s string) *string        { return &s }
func num(n int) *int              { return &n }
func at(t time.Time) *time.Time   { return &t }

// fakeStore implements the full store contract in memory. Restrict honors
// the real predicate grammar via store.ParseRestrict, but keeps items with
// missing temporal fields so tests can exercise the normalization-failure
// path.
type fakeStore struct {
	items   []store.Appointment
	loc     *time.Location
	openErr error

	session *fakeSession
}

func (s *fakeStore) Open(ctx context.Context) (store.Session, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.session = &fakeSession{items: s.items, loc: s.loc}
	return s.session, nil
}

type fakeSession struct {
	items     []store.Appointment
	loc       *time.Location
	folderErr error
	closed    bool
}

func (s *fakeSession) DefaultCalendar() (store.Folder, error) {
	if s.folderErr != nil {
		return nil, s.folderErr
	}
	return &fakeFolder{items: s.items, loc: s.loc}, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeFolder struct {
	items []store.Appointment
	loc   *time.Location
}

func (f *fakeFolder) Items() (store.Items, error) {
	return &fakeItems{items: f.items, loc: f.loc}, nil
}

type fakeItems struct {
	items  []store.Appointment
	loc    *time.Location
	window *store.Window
}

func (i *fakeItems) Sort(field string) error                { return nil }
func (i *fakeItems) SetIncludeRecurrences(bool) error       { return nil }

func (i *fakeItems) Restrict(query string) (store.Items, error) {
	w, ok := store.ParseRestrict(query, "", i.loc)
	if !ok {
		return &fakeItems{loc: i.loc}, nil
	}

	var kept []store.Appointment
	for _, item := range i.items {
		start, sok := item.Start()
		end, eok := item.End()
		if !sok || !eok || w.Overlaps(start, end) {
			kept = append(kept, item)
		}
	}
	return &fakeItems{items: kept, loc: i.loc, window: &w}, nil
}

func (i *fakeItems) Each(fn func(store.Appointment) error) error {
	for _, item := range i.items {
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

var fixedNow = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

func newTestFetcher(s *fakeStore) *Fetcher {
	return &Fetcher{
		Store:    s,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	}
}

func TestFetchTodaySkipsMalformedItems(t *testing.T) {
	day := func(h int) time.Time { return time.Date(2024, 3, 15, h, 0, 0, 0, time.UTC) }

	s := &fakeStore{
		loc: time.UTC,
		items: []store.Appointment{
			&fakeAppointment{subject: str("Standup"), start: at(day(9)), end: at(day(9).Add(15 * time.Minute))},
			// No Start and no End: must be dropped, not abort the fetch.
			&fakeAppointment{subject: str("Corrupted")},
			&fakeAppointment{subject: str("Review"), start: at(day(11)), end: at(day(12))},
		},
	}

	events, err := newTestFetcher(s).FetchToday(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Standup", events[0].Subject)
	assert.Equal(t, "Review", events[1].Subject)
	assert.True(t, events[0].Start < events[1].Start, "events must be sorted by start")
	assert.True(t, s.session.closed, "session must be released")
}

func TestFetchTodaySortsDefensively(t *testing.T) {
	day := func(h int) time.Time { return time.Date(2024, 3, 15, h, 0, 0, 0, time.UTC) }

	// Store returns items out of order; the fetch re-sorts regardless.
	s := &fakeStore{
		loc: time.UTC,
		items: []store.Appointment{
			&fakeAppointment{subject: str("Late"), start: at(day(16)), end: at(day(17))},
			&fakeAppointment{subject: str("Early"), start: at(day(8)), end: at(day(9))},
			&fakeAppointment{subject: str("Middle"), start: at(day(12)), end: at(day(13))},
		},
	}

	events, err := newTestFetcher(s).FetchToday(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "Early", events[0].Subject)
	assert.Equal(t, "Middle", events[1].Subject)
	assert.Equal(t, "Late", events[2].Subject)
}

func TestFetchTodayIncludesInProgressItems(t *testing.T) {
	// An overnight appointment that started yesterday but ends today must
	// match the window.
	start := time.Date(2024, 3, 14, 22, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)

	s := &fakeStore{
		loc: time.UTC,
		items: []store.Appointment{
			&fakeAppointment{subject: str("Overnight maintenance"), start: at(start), end: at(end)},
			// Ended yesterday; outside the window.
			&fakeAppointment{
				subject: str("Yesterday"),
				start:   at(time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)),
				end:     at(time.Date(2024, 3, 14, 11, 0, 0, 0, time.UTC)),
			},
		},
	}

	events, err := newTestFetcher(s).FetchToday(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Overnight maintenance", events[0].Subject)
}

func TestFetchTodayStoreUnavailable(t *testing.T) {
	s := &fakeStore{openErr: errors.New("MAPI session refused")}

	events, err := newTestFetcher(s).FetchToday(context.Background())
	require.Error(t, err)
	assert.Nil(t, events)

	var unavailable *StoreUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "open session", unavailable.Op)
}

func TestFetchTodayClosesSessionOnFolderError(t *testing.T) {
	s := &fakeStore{loc: time.UTC}

	f := newTestFetcher(s)
	f.Store = storeWithFolderErr{s}

	_, err := f.FetchToday(context.Background())
	require.Error(t, err)

	var unavailable *StoreUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.True(t, s.session.closed, "session must be released even when the folder lookup fails")
}

// storeWithFolderErr opens sessions whose folder lookup fails.
type storeWithFolderErr struct {
	inner *fakeStore
}

func (s storeWithFolderErr) Open(ctx context.Context) (store.Session, error) {
	sess, err := s.inner.Open(ctx)
	if err != nil {
		return nil, err
	}
	sess.(*fakeSession).folderErr = errors.New("no default calendar")
	return sess, nil
}

func TestFetchTodayEmptyDay(t *testing.T) {
	s := &fakeStore{
		loc: time.UTC,
		items: []store.Appointment{
			&fakeAppointment{
				subject: str("Tomorrow"),
				start:   at(time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC)),
				end:     at(time.Date(2024, 3, 16, 11, 0, 0, 0, time.UTC)),
			},
		},
	}

	events, err := newTestFetcher(s).FetchToday(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events, "no appointments today is a valid, non-error result")
}

func TestFetchTodayIdempotent(t *testing.T) {
	day := func(h int) time.Time { return time.Date(2024, 3, 15, h, 0, 0, 0, time.UTC) }

	s := &fakeStore{
		loc: time.UTC,
		items: []store.Appointment{
			&fakeAppointment{subject: str("One"), start: at(day(9)), end: at(day(10)), categories: str("Work, Sync")},
			&fakeAppointment{subject: str("Two"), start: at(day(14)), end: at(day(15))},
		},
	}

	f := newTestFetcher(s)
	first, err := f.FetchToday(context.Background())
	require.NoError(t, err)
	second, err := f.FetchToday(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second, "consecutive fetches against an unchanged store must agree")
}
