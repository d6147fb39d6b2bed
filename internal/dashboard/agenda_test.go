package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pders01/mailcal/internal/provider"
)

func event(id string, start time.Time, tz string) provider.CalendarEvent {
	return provider.CalendarEvent{
		ID: id,
		When: provider.When{
			StartTime:     start.Unix(),
			EndTime:       start.Add(30 * time.Minute).Unix(),
			StartTimezone: tz,
		},
	}
}

func eventIDs(evs []provider.CalendarEvent) []string {
	out := []string{}
	for _, e := range evs {
		out = append(out, e.ID)
	}
	return out
}

func TestPartition(t *testing.T) {
	now := time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC)

	events := []provider.CalendarEvent{
		event("earlier-today", now.Add(-100*time.Second), "UTC"),
		event("later-today", now.Add(100*time.Second), "UTC"),
		event("now", now, "UTC"),
		event("tomorrow", now.Add(24*time.Hour), "UTC"),
		event("yesterday", now.Add(-24*time.Hour), "UTC"),
		event("no-zone-today", now.Add(-2*time.Hour), ""),
	}

	a := Partition(events, now)
	assert.Equal(t, []string{"earlier-today", "later-today", "now", "no-zone-today"}, eventIDs(a.Today))
	assert.Equal(t, []string{"tomorrow"}, eventIDs(a.Upcoming))
	assert.Equal(t, []string{"yesterday"}, eventIDs(a.Past))
	assert.Equal(t, len(events), a.Len())
}

func TestPartitionUsesEventTimezone(t *testing.T) {
	// 23:30 UTC on Mar 12 is already Mar 13 in Tokyo.
	now := time.Date(2024, 3, 12, 23, 30, 0, 0, time.UTC)
	tokyoMorning := time.Date(2024, 3, 13, 1, 0, 0, 0, time.UTC) // 10:00 in Tokyo

	a := Partition([]provider.CalendarEvent{
		event("tokyo", tokyoMorning, "Asia/Tokyo"),
		event("utc", tokyoMorning, "UTC"),
	}, now)

	assert.Equal(t, []string{"tokyo"}, eventIDs(a.Today))
	assert.Equal(t, []string{"utc"}, eventIDs(a.Upcoming))
	assert.Empty(t, a.Past)
}

func TestPartitionIsDisjointAndExhaustive(t *testing.T) {
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	var events []provider.CalendarEvent
	for h := -72; h <= 72; h += 5 {
		events = append(events, event(time.Duration(h).String(), now.Add(time.Duration(h)*time.Hour), "Europe/Berlin"))
	}

	a := Partition(events, now)
	seen := map[string]int{}
	for _, bucket := range [][]provider.CalendarEvent{a.Today, a.Upcoming, a.Past} {
		for _, e := range bucket {
			seen[e.ID]++
		}
	}
	assert.Len(t, seen, len(events))
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
	for _, e := range a.Past {
		assert.False(t, time.Unix(e.When.StartTime, 0).After(now), e.ID)
	}
}

func TestPartitionEmpty(t *testing.T) {
	a := Partition(nil, time.Now())
	assert.Zero(t, a.Len())
}
