package render

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cpuguy83/dayplan/internal/calendar"
)

// Options controls how the schedule table is rendered.
type Options struct {
	// Title is printed above the table.
	Title string
	// ShowAllDay includes all-day events; they are skipped otherwise.
	ShowAllDay bool
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffa500"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	emptyStyle  = lipgloss.NewStyle().Faint(true)
)

// Schedule renders the day's events as a table. All-day events are left
// out unless opts.ShowAllDay is set. An empty schedule renders a short
// notice instead of an empty table.
func Schedule(events []calendar.CalendarEvent, opts Options) string {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		if ev.IsAllDay && !opts.ShowAllDay {
			continue
		}
		rows = append(rows, []string{
			ev.Subject,
			ev.Location,
			clock(ev.Start, ev.IsAllDay),
			clock(ev.End, ev.IsAllDay),
		})
	}

	title := opts.Title
	if title == "" {
		title = "Schedule"
	}
	header := titleStyle.Render(fmt.Sprintf("%s for %s", title, time.Now().Format("Monday, January 2")))

	if len(rows) == 0 {
		return header + "\n" + emptyStyle.Render("Nothing on the calendar today.") + "\n"
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("SUBJECT", "LOCATION", "START", "END").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Rows(rows...)

	return header + "\n" + t.Render() + "\n"
}

// clock formats an RFC 3339 timestamp as wall-clock HH:MM. All-day events
// show a marker instead of a time of day.
func clock(ts string, allDay bool) string {
	if allDay {
		return "all day"
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04")
}
