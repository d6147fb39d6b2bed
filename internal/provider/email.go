package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

type EmailQuery struct {
	Limit int
	// Unread filters by read state when non-nil.
	Unread *bool
	Cursor string
}

func (q EmailQuery) values() url.Values {
	query := url.Values{}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Unread != nil {
		query.Set("unread", strconv.FormatBool(*q.Unread))
	}
	if q.Cursor != "" {
		query.Set("page_token", q.Cursor)
	}
	return query
}

// RetrieveEmails lists messages for the configured grant.
func (c *Client) RetrieveEmails(ctx context.Context, q EmailQuery) (*Page[EmailMessage], error) {
	page, err := getPage[EmailMessage](ctx, c, c.grantPath("messages"), q.values())
	if err != nil {
		return nil, fmt.Errorf("retrieving emails: %w", err)
	}
	return page, nil
}

// RetrieveEmailsRaw returns the provider's envelope byte for byte, including
// fields EmailMessage does not model.
func (c *Client) RetrieveEmailsRaw(ctx context.Context, q EmailQuery) (json.RawMessage, error) {
	body, err := getRaw(ctx, c, c.grantPath("messages"), q.values())
	if err != nil {
		return nil, fmt.Errorf("retrieving emails: %w", err)
	}
	return body, nil
}
