package dashboard

import (
	"context"

	"github.com/pders01/mailcal/internal/listview"
	"github.com/pders01/mailcal/internal/provider"
)

// EmailFilter selects which messages the email list shows.
type EmailFilter string

const (
	FilterAll    EmailFilter = "all"
	FilterUnread EmailFilter = "unread"
)

// ParseEmailFilter maps a config value to a filter, defaulting to unread.
func ParseEmailFilter(s string) EmailFilter {
	if EmailFilter(s) == FilterAll {
		return FilterAll
	}
	return FilterUnread
}

// Toggle flips between all and unread.
func (f EmailFilter) Toggle() EmailFilter {
	if f == FilterUnread {
		return FilterAll
	}
	return FilterUnread
}

// Source is what the lists need from the route layer.
type Source interface {
	Emails(ctx context.Context, limit int, unread bool, cursor string) (*provider.Page[provider.EmailMessage], error)
	Events(ctx context.Context, calendarID string, limit int, cursor string) (*provider.Page[provider.CalendarEvent], error)
}

type (
	EmailList    = listview.Controller[provider.EmailMessage, EmailFilter]
	CalendarList = listview.Controller[provider.CalendarEvent, string]
)

func NewEmailList(src Source, pageSize int, initial EmailFilter) *EmailList {
	fetch := func(ctx context.Context, f EmailFilter, cursor string) (listview.Page[provider.EmailMessage], error) {
		page, err := src.Emails(ctx, pageSize, f == FilterUnread, cursor)
		if err != nil {
			return listview.Page[provider.EmailMessage]{}, err
		}
		return listview.Page[provider.EmailMessage]{Items: page.Data, NextCursor: page.NextCursor}, nil
	}
	return listview.New("email", fetch, func(m provider.EmailMessage) string { return m.ID }, initial)
}

// NewCalendarList builds the event list. Its filter is the calendar id.
func NewCalendarList(src Source, pageSize int, calendarID string) *CalendarList {
	if calendarID == "" {
		calendarID = provider.DefaultCalendarID
	}
	fetch := func(ctx context.Context, cal string, cursor string) (listview.Page[provider.CalendarEvent], error) {
		page, err := src.Events(ctx, cal, pageSize, cursor)
		if err != nil {
			return listview.Page[provider.CalendarEvent]{}, err
		}
		return listview.Page[provider.CalendarEvent]{Items: page.Data, NextCursor: page.NextCursor}, nil
	}
	return listview.New("calendar", fetch, func(e provider.CalendarEvent) string { return e.ID }, calendarID)
}
