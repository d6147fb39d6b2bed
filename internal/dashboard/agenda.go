package dashboard

import (
	"time"

	"github.com/pders01/mailcal/internal/format"
	"github.com/pders01/mailcal/internal/provider"
)

// Agenda buckets events relative to a reference time. Every event lands in
// exactly one bucket; input order is kept within each.
type Agenda struct {
	Today    []provider.CalendarEvent
	Upcoming []provider.CalendarEvent
	Past     []provider.CalendarEvent
}

// Partition sorts events into today, upcoming and past. "Today" compares
// calendar days in each event's own start timezone, UTC when unset, and wins
// over the other two even for events that already started.
func Partition(events []provider.CalendarEvent, now time.Time) Agenda {
	var a Agenda
	for _, ev := range events {
		switch {
		case format.IsToday(ev.When.StartTime, ev.When.StartTimezone, now):
			a.Today = append(a.Today, ev)
		case format.IsUpcoming(ev.When.StartTime, now):
			a.Upcoming = append(a.Upcoming, ev)
		default:
			a.Past = append(a.Past, ev)
		}
	}
	return a
}

func (a Agenda) Len() int {
	return len(a.Today) + len(a.Upcoming) + len(a.Past)
}
