//go:build windows

package outlook

import (
	"context"
	"fmt"
	"time"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/cpuguy83/dayplan/internal/store"
)

// Open initializes COM, attaches to the running (or newly launched)
// Outlook instance, and logs into the MAPI namespace. The returned session
// owns the COM lifetime: Close releases the objects and uninitializes COM,
// and must run on the same goroutine-locked thread as Open in the happy
// case of a single synchronous fetch.
func (s *Store) Open(ctx context.Context) (store.Session, error) {
	if err := ole.CoInitialize(0); err != nil {
		return nil, fmt.Errorf("initialize COM: %w", err)
	}

	unknown, err := oleutil.CreateObject("Outlook.Application")
	if err != nil {
		ole.CoUninitialize()
		return nil, fmt.Errorf("dispatch Outlook.Application: %w", err)
	}

	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		ole.CoUninitialize()
		return nil, fmt.Errorf("query IDispatch: %w", err)
	}

	nsVar, err := oleutil.CallMethod(app, "GetNamespace", "MAPI")
	if err != nil {
		app.Release()
		ole.CoUninitialize()
		return nil, fmt.Errorf("get MAPI namespace: %w", err)
	}

	return &session{app: app, ns: nsVar.ToIDispatch()}, nil
}

type session struct {
	app *ole.IDispatch
	ns  *ole.IDispatch
}

func (s *session) DefaultCalendar() (store.Folder, error) {
	v, err := oleutil.CallMethod(s.ns, "GetDefaultFolder", olFolderCalendar)
	if err != nil {
		return nil, fmt.Errorf("get default calendar folder: %w", err)
	}
	return &folder{disp: v.ToIDispatch()}, nil
}

func (s *session) Close() error {
	if s.ns != nil {
		s.ns.Release()
		s.ns = nil
	}
	if s.app != nil {
		s.app.Release()
		s.app = nil
	}
	ole.CoUninitialize()
	return nil
}

type folder struct {
	disp *ole.IDispatch
}

func (f *folder) Items() (store.Items, error) {
	v, err := oleutil.GetProperty(f.disp, "Items")
	if err != nil {
		return nil, fmt.Errorf("get folder items: %w", err)
	}
	return &items{disp: v.ToIDispatch()}, nil
}

type items struct {
	disp *ole.IDispatch
}

func (i *items) Sort(field string) error {
	if _, err := oleutil.CallMethod(i.disp, "Sort", field); err != nil {
		return fmt.Errorf("sort items by %s: %w", field, err)
	}
	return nil
}

func (i *items) SetIncludeRecurrences(enabled bool) error {
	if _, err := oleutil.PutProperty(i.disp, "IncludeRecurrences", enabled); err != nil {
		return fmt.Errorf("set IncludeRecurrences: %w", err)
	}
	return nil
}

func (i *items) Restrict(query string) (store.Items, error) {
	v, err := oleutil.CallMethod(i.disp, "Restrict", query)
	if err != nil {
		return nil, fmt.Errorf("restrict items: %w", err)
	}
	return &items{disp: v.ToIDispatch()}, nil
}

// Each walks the collection with GetFirst/GetNext rather than Count and
// positional indexing: once IncludeRecurrences is on, Outlook documents
// Count as unreliable for the expanded collection, but cursor enumeration
// still yields every occurrence.
func (i *items) Each(fn func(store.Appointment) error) error {
	itemVar, err := oleutil.CallMethod(i.disp, "GetFirst")
	if err != nil {
		return fmt.Errorf("get first item: %w", err)
	}

	for {
		disp := itemVar.ToIDispatch()
		if disp == nil {
			return nil
		}
		err = fn(&appointment{disp: disp})
		disp.Release()
		if err != nil {
			return err
		}

		itemVar, err = oleutil.CallMethod(i.disp, "GetNext")
		if err != nil {
			return fmt.Errorf("get next item: %w", err)
		}
	}
}

// appointment reads AppointmentItem properties tolerantly: any property
// Outlook cannot produce, or produces with an unexpected variant type,
// reports as absent.
type appointment struct {
	disp *ole.IDispatch
}

func (a *appointment) EntryID() (string, bool)  { return a.propString("EntryID") }
func (a *appointment) Subject() (string, bool)  { return a.propString("Subject") }
func (a *appointment) Location() (string, bool) { return a.propString("Location") }

func (a *appointment) Start() (time.Time, bool) { return a.propTime("Start") }
func (a *appointment) End() (time.Time, bool)   { return a.propTime("End") }

func (a *appointment) AllDayEvent() bool {
	b, ok := a.propBool("AllDayEvent")
	return ok && b
}

func (a *appointment) IsRecurring() bool {
	b, ok := a.propBool("IsRecurring")
	return ok && b
}

func (a *appointment) BusyStatus() (int, bool)  { return a.propInt("BusyStatus") }
func (a *appointment) Sensitivity() (int, bool) { return a.propInt("Sensitivity") }

func (a *appointment) Organizer() (string, bool) { return a.propString("Organizer") }

func (a *appointment) RequiredAttendees() (string, bool) {
	return a.propString("RequiredAttendees")
}

func (a *appointment) OptionalAttendees() (string, bool) {
	return a.propString("OptionalAttendees")
}

func (a *appointment) Categories() (string, bool) { return a.propString("Categories") }

func (a *appointment) propString(name string) (string, bool) {
	v, err := oleutil.GetProperty(a.disp, name)
	if err != nil {
		return "", false
	}
	defer v.Clear()

	s, ok := v.Value().(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func (a *appointment) propTime(name string) (time.Time, bool) {
	v, err := oleutil.GetProperty(a.disp, name)
	if err != nil {
		return time.Time{}, false
	}
	defer v.Clear()

	t, ok := v.Value().(time.Time)
	if !ok || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

func (a *appointment) propInt(name string) (int, bool) {
	v, err := oleutil.GetProperty(a.disp, name)
	if err != nil {
		return 0, false
	}
	defer v.Clear()

	switch n := v.Value().(type) {
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func (a *appointment) propBool(name string) (bool, bool) {
	v, err := oleutil.GetProperty(a.disp, name)
	if err != nil {
		return false, false
	}
	defer v.Clear()

	b, ok := v.Value().(bool)
	return b, ok
}

var (
	_ store.Store       = (*Store)(nil)
	_ store.Session     = (*session)(nil)
	_ store.Appointment = (*appointment)(nil)
)
