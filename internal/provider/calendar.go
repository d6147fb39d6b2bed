package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultCalendarID = "primary"
	DefaultLimit      = 5
)

type EventQuery struct {
	CalendarID string
	Limit      int
	Cursor     string
}

func (q EventQuery) values() url.Values {
	if q.CalendarID == "" {
		q.CalendarID = DefaultCalendarID
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}

	query := url.Values{}
	query.Set("calendar_id", q.CalendarID)
	query.Set("limit", strconv.Itoa(q.Limit))
	if q.Cursor != "" {
		query.Set("page_token", q.Cursor)
	}
	return query
}

// RetrieveEvents lists events of one calendar for the configured grant.
func (c *Client) RetrieveEvents(ctx context.Context, q EventQuery) (*Page[CalendarEvent], error) {
	page, err := getPage[CalendarEvent](ctx, c, c.grantPath("events"), q.values())
	if err != nil {
		return nil, fmt.Errorf("retrieving calendar events: %w", err)
	}
	return page, nil
}

// RetrieveEventsRaw is RetrieveEvents without decoding the envelope.
func (c *Client) RetrieveEventsRaw(ctx context.Context, q EventQuery) (json.RawMessage, error) {
	body, err := getRaw(ctx, c, c.grantPath("events"), q.values())
	if err != nil {
		return nil, fmt.Errorf("retrieving calendar events: %w", err)
	}
	return body, nil
}
