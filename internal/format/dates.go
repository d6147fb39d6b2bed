// Package format turns provider values into display strings.
package format

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata" // event zones come from the provider, not the host
)

const (
	emailDateLayout = "1/2/2006, 3:04:05 PM"
	shortDateLayout = "1/2/2006"
	eventTimeLayout = "3:04 PM"
	eventDateLayout = "Mon, Jan 2, 2006"
)

var (
	locMu    sync.Mutex
	locCache = map[string]*time.Location{}
)

// Location resolves an IANA zone name. Empty or unknown names yield UTC.
func Location(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}

	locMu.Lock()
	defer locMu.Unlock()
	if loc, ok := locCache[tz]; ok {
		return loc
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	locCache[tz] = loc
	return loc
}

// EmailDate renders epoch seconds as a full date and time in loc.
func EmailDate(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(ts, 0).In(loc).Format(emailDateLayout)
}

// Relative renders ts relative to now for list rows: "Just now", "5h ago",
// "3d ago", or a short date after a week.
func Relative(ts int64, now time.Time) string {
	t := time.Unix(ts, 0)
	diff := now.Sub(t)
	hours := int(diff / time.Hour)
	days := hours / 24

	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.In(now.Location()).Format(shortDateLayout)
	}
}

// EventTime renders "3:04 PM - 4:00 PM" in the named zone.
func EventTime(start, end int64, tz string) string {
	loc := Location(tz)
	return time.Unix(start, 0).In(loc).Format(eventTimeLayout) + " - " +
		time.Unix(end, 0).In(loc).Format(eventTimeLayout)
}

// EventDate renders "Mon, Jan 2, 2006" in the named zone.
func EventDate(ts int64, tz string) string {
	return time.Unix(ts, 0).In(Location(tz)).Format(eventDateLayout)
}

// IsToday reports whether ts falls on now's calendar day, both taken in tz.
func IsToday(ts int64, tz string, now time.Time) bool {
	loc := Location(tz)
	ey, em, ed := time.Unix(ts, 0).In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	return ey == ny && em == nm && ed == nd
}

// IsUpcoming reports whether ts is strictly after now.
func IsUpcoming(ts int64, now time.Time) bool {
	return time.Unix(ts, 0).After(now)
}
