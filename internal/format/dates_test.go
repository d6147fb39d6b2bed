package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2023-11-14 22:13:20 UTC, a Tuesday.
const base int64 = 1700000000

func TestRelative(t *testing.T) {
	now := time.Unix(base, 0).UTC()

	tests := []struct {
		name string
		ts   int64
		want string
	}{
		{"seconds ago", base - 30, "Just now"},
		{"under an hour", base - 59*60, "Just now"},
		{"hours", base - 5*3600, "5h ago"},
		{"just under a day", base - 23*3600 - 59*60, "23h ago"},
		{"days", base - 3*86400, "3d ago"},
		{"over a week", base - 10*86400, "11/4/2023"},
		{"future clock skew", base + 600, "Just now"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Relative(tt.ts, now))
		})
	}
}

func TestEventTimeAndDate(t *testing.T) {
	assert.Equal(t, "10:13 PM - 11:13 PM", EventTime(base, base+3600, "UTC"))
	assert.Equal(t, "5:13 PM - 6:13 PM", EventTime(base, base+3600, "America/New_York"))
	assert.Equal(t, "Tue, Nov 14, 2023", EventDate(base, "UTC"))
	assert.Equal(t, "Wed, Nov 15, 2023", EventDate(base, "Asia/Tokyo"))
}

func TestUnknownZoneFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Location(""))
	assert.Equal(t, time.UTC, Location("Mars/Olympus_Mons"))
	assert.Equal(t, "10:13 PM - 10:43 PM", EventTime(base, base+1800, "Mars/Olympus_Mons"))
}

func TestEmailDate(t *testing.T) {
	assert.Equal(t, "11/14/2023, 10:13:20 PM", EmailDate(base, time.UTC))
}

func TestIsToday(t *testing.T) {
	now := time.Date(2023, 11, 14, 23, 30, 0, 0, time.UTC)
	justAfterMidnightUTC := time.Date(2023, 11, 15, 0, 30, 0, 0, time.UTC).Unix()

	assert.True(t, IsToday(base, "UTC", now))
	assert.False(t, IsToday(justAfterMidnightUTC, "UTC", now))
	// Same instants are both on Nov 14 in New York.
	assert.True(t, IsToday(justAfterMidnightUTC, "America/New_York", now))
	assert.False(t, IsToday(base-86400, "UTC", now))
}

func TestIsUpcoming(t *testing.T) {
	now := time.Unix(base, 0)
	assert.True(t, IsUpcoming(base+1, now))
	assert.False(t, IsUpcoming(base, now))
	assert.False(t, IsUpcoming(base-1, now))
}
