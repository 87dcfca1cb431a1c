// Package caldavstore implements the store contract against a CalDAV
// server. The restriction predicate drives the server-side time-range
// query; the fetched VEVENTs then go through the same in-memory result-set
// emulation as the ICS feed backend.
package caldavstore

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	ics "github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"github.com/cpuguy83/dayplan/internal/store"
	"github.com/cpuguy83/dayplan/internal/store/icsfeed"
)

// Store connects to one CalDAV account.
type Store struct {
	url      string
	username string
	password string
	calendar string // optional calendar display name; empty picks the first
	loc      *time.Location
	layout   string
}

// New creates a CalDAV-backed store.
func New(url, username, password, calendar string, loc *time.Location, layout string) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		url:      url,
		username: username,
		password: password,
		calendar: calendar,
		loc:      loc,
		layout:   layout,
	}
}

// Open builds the CalDAV client. Server communication starts at the
// folder lookup.
func (s *Store) Open(ctx context.Context) (store.Session, error) {
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &basicAuthTransport{
			username: s.username,
			password: s.password,
			base:     http.DefaultTransport,
		},
	}

	client, err := caldav.NewClient(httpClient, s.url)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}

	return &session{
		ctx:      ctx,
		client:   client,
		calendar: s.calendar,
		loc:      s.loc,
		layout:   s.layout,
	}, nil
}

type session struct {
	// ctx is the fetch-scoped context Open was called with; the store
	// contract's folder and item calls carry no context of their own.
	ctx context.Context

	client   *caldav.Client
	calendar string
	loc      *time.Location
	layout   string
}

// DefaultCalendar walks principal → calendar home → calendars and picks the
// configured calendar, or the first one the server lists.
func (s *session) DefaultCalendar() (store.Folder, error) {
	principal, err := s.client.FindCurrentUserPrincipal(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}

	homeSet, err := s.client.FindCalendarHomeSet(s.ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find calendar home: %w", err)
	}

	cals, err := s.client.FindCalendars(s.ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}
	if len(cals) == 0 {
		return nil, fmt.Errorf("no calendars at %s", homeSet)
	}

	path := cals[0].Path
	if s.calendar != "" {
		path = ""
		for _, cal := range cals {
			if strings.EqualFold(cal.Name, s.calendar) {
				path = cal.Path
				break
			}
		}
		if path == "" {
			return nil, fmt.Errorf("calendar %q not found", s.calendar)
		}
	}

	return &folder{session: s, path: path}, nil
}

func (s *session) Close() error { return nil }

type folder struct {
	session *session
	path    string
}

func (f *folder) Items() (store.Items, error) {
	return &items{session: f.session, path: f.path}, nil
}

// items defers the server query until the restriction is known, so the
// time-range filter runs on the server instead of transferring the whole
// calendar.
type items struct {
	session *session
	path    string

	sorted             bool
	includeRecurrences bool
}

func (i *items) Sort(field string) error {
	switch strings.Trim(field, "[]") {
	case "Start", "start":
		i.sorted = true
		return nil
	default:
		return fmt.Errorf("unsupported sort field %q", field)
	}
}

func (i *items) SetIncludeRecurrences(enabled bool) error {
	i.includeRecurrences = enabled
	return nil
}

func (i *items) Restrict(query string) (store.Items, error) {
	w, ok := store.ParseRestrict(query, i.session.layout, i.session.loc)
	if !ok {
		return icsfeed.NewItemSet(nil, i.session.loc, i.session.layout), nil
	}

	set, err := i.fetch(w)
	if err != nil {
		return nil, err
	}
	// Re-apply the predicate in memory: the server's time-range match is
	// allowed to over-report.
	return set.Restrict(query)
}

func (i *items) Each(fn func(store.Appointment) error) error {
	// Unrestricted iteration: cover a generous range around now.
	now := time.Now()
	set, err := i.fetch(store.Window{
		Start: now.Add(-7 * 24 * time.Hour),
		End:   now.Add(90 * 24 * time.Hour),
	})
	if err != nil {
		return err
	}
	return set.Each(fn)
}

// fetch runs the server-side time-range query and wraps the results in the
// shared in-memory item set, carrying over sort and recurrence settings.
func (i *items) fetch(w store.Window) (store.Items, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{{
				Name: "VEVENT",
				Props: []string{
					"UID",
					"SUMMARY",
					"LOCATION",
					"DTSTART",
					"DTEND",
					"DURATION",
					"RRULE",
					"ORGANIZER",
					"ATTENDEE",
					"CATEGORIES",
					"CLASS",
					"X-MICROSOFT-CDO-BUSYSTATUS",
				},
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{{
				Name:  "VEVENT",
				Start: w.Start,
				End:   w.End,
			}},
		},
	}

	objects, err := i.session.client.QueryCalendar(i.session.ctx, i.path, query)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	var comps []*ics.Component
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, comp := range obj.Data.Children {
			if comp.Name == ics.CompEvent {
				comps = append(comps, comp)
			}
		}
	}

	set := icsfeed.NewItemSet(comps, i.session.loc, i.session.layout)
	if i.sorted {
		if err := set.Sort("[Start]"); err != nil {
			return nil, err
		}
	}
	if err := set.SetIncludeRecurrences(i.includeRecurrences); err != nil {
		return nil, err
	}
	return set, nil
}

// basicAuthTransport adds basic auth to every request.
type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Items = (*items)(nil)
)
