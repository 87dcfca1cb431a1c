// Package icsfeed implements the store contract over an ICS feed, either a
// local file or an HTTP(S) URL. It stands in for the desktop calendar
// application on machines that do not have one, emulating the store's
// sort / recurrence-expansion / restriction semantics in memory.
package icsfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	ics "github.com/emersion/go-ical"

	"github.com/cpuguy83/dayplan/internal/store"
)

// Store reads a single ICS source.
type Store struct {
	source   string // filesystem path or http(s) URL
	username string
	password string
	loc      *time.Location
	layout   string
	client   *http.Client
}

// New creates an ICS-backed store. loc is the zone wall-clock restriction
// timestamps are interpreted in; layout is the restriction timestamp layout
// (store.DefaultRestrictLayout if empty).
func New(source, username, password string, loc *time.Location, layout string) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		source:   source,
		username: username,
		password: password,
		loc:      loc,
		layout:   layout,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Open fetches and decodes the feed. The returned session holds the decoded
// data; no connection stays open past this call.
func (s *Store) Open(ctx context.Context) (store.Session, error) {
	r, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	dec := ics.NewDecoder(r)

	var comps []*ics.Component
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode ICS: %w", err)
		}
		for _, comp := range cal.Children {
			if comp.Name == ics.CompEvent {
				comps = append(comps, comp)
			}
		}
	}

	return &session{comps: comps, loc: s.loc, layout: s.layout}, nil
}

func (s *Store) open(ctx context.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(s.source, "http://") || strings.HasPrefix(s.source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.source, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if s.username != "" && s.password != "" {
			req.SetBasicAuth(s.username, s.password)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch ICS: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch ICS: status %d", resp.StatusCode)
		}
		return resp.Body, nil
	}

	f, err := os.Open(s.source)
	if err != nil {
		return nil, fmt.Errorf("open ICS file: %w", err)
	}
	return f, nil
}

type session struct {
	comps  []*ics.Component
	loc    *time.Location
	layout string
}

// DefaultCalendar returns the feed itself; an ICS source has a single
// implicit container.
func (s *session) DefaultCalendar() (store.Folder, error) {
	return &folder{comps: s.comps, loc: s.loc, layout: s.layout}, nil
}

func (s *session) Close() error { return nil }

type folder struct {
	comps  []*ics.Component
	loc    *time.Location
	layout string
}

func (f *folder) Items() (store.Items, error) {
	return NewItemSet(f.comps, f.loc, f.layout), nil
}

// ItemSet is an in-memory result-set view over VEVENT components. It is
// shared with the CalDAV backend, which feeds it the components it fetched
// from the server.
type ItemSet struct {
	comps  []*ics.Component
	loc    *time.Location
	layout string

	sorted             bool
	includeRecurrences bool
	window             *store.Window
}

// NewItemSet wraps decoded VEVENT components in a result-set view.
func NewItemSet(comps []*ics.Component, loc *time.Location, layout string) *ItemSet {
	if loc == nil {
		loc = time.Local
	}
	return &ItemSet{comps: comps, loc: loc, layout: layout}
}

// Sort supports the store's start-field ordering only.
func (i *ItemSet) Sort(field string) error {
	switch strings.Trim(field, "[]") {
	case "Start", "start":
		i.sorted = true
		return nil
	default:
		return fmt.Errorf("unsupported sort field %q", field)
	}
}

func (i *ItemSet) SetIncludeRecurrences(enabled bool) error {
	i.includeRecurrences = enabled
	return nil
}

// Restrict applies the textual predicate. A predicate that does not parse
// yields an empty view, mirroring the real store's silent behavior.
func (i *ItemSet) Restrict(query string) (store.Items, error) {
	w, ok := store.ParseRestrict(query, i.layout, i.loc)
	if !ok {
		return &ItemSet{loc: i.loc, layout: i.layout}, nil
	}

	restricted := *i
	restricted.window = &w
	return &restricted, nil
}

func (i *ItemSet) Each(fn func(store.Appointment) error) error {
	appts := i.appointments()
	if i.sorted {
		sort.SliceStable(appts, func(a, b int) bool {
			as, _ := appts[a].Start()
			bs, _ := appts[b].Start()
			return as.Before(bs)
		})
	}
	for _, a := range appts {
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

// appointments materializes the view: recurring events are expanded to
// occurrences when enabled, and the window restriction keeps only items
// overlapping it (including ones that started before it but end inside).
func (i *ItemSet) appointments() []store.Appointment {
	var out []store.Appointment
	for _, comp := range i.comps {
		base := NewAppointment(comp, i.loc)

		start, sok := base.Start()
		end, eok := base.End()
		if !sok || !eok {
			// Items without temporal fields never match a restriction,
			// like in the real store.
			if i.window == nil {
				out = append(out, base)
			}
			continue
		}

		if i.includeRecurrences && i.window != nil && base.IsRecurring() {
			out = append(out, i.expand(base, start, end)...)
			continue
		}

		if i.window == nil || i.window.Overlaps(start, end) {
			out = append(out, base)
		}
	}
	return out
}

// expand turns one recurring event into its occurrences inside the window.
// The range start backs up by the event duration so an occurrence that is
// already running at the window start still shows up.
func (i *ItemSet) expand(base *Appointment, start, end time.Time) []store.Appointment {
	rset, err := base.comp.RecurrenceSet(i.loc)
	if err != nil || rset == nil {
		return nil
	}

	duration := end.Sub(start)
	occurrences := rset.Between(i.window.Start.Add(-duration), i.window.End, true)

	var out []store.Appointment
	for _, occ := range occurrences {
		occEnd := occ.Add(duration)
		if !i.window.Overlaps(occ, occEnd) {
			continue
		}
		out = append(out, base.occurrence(occ, occEnd))
	}
	return out
}
