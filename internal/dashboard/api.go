// Package dashboard wires the list controllers to the mailcal route layer.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/mailcal/internal/provider"
)

// APIClient calls the /api routes served by internal/server.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewAPIClientWithHTTP is used by tests that need a custom transport.
func NewAPIClientWithHTTP(baseURL string, hc *http.Client) *APIClient {
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *APIClient) Emails(ctx context.Context, limit int, unread bool, cursor string) (*provider.Page[provider.EmailMessage], error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("unread", strconv.FormatBool(unread))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page provider.Page[provider.EmailMessage]
	if err := a.get(ctx, "/api/email/retrieve", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *APIClient) Events(ctx context.Context, calendarID string, limit int, cursor string) (*provider.Page[provider.CalendarEvent], error) {
	q := url.Values{}
	q.Set("calendar_id", calendarID)
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page provider.Page[provider.CalendarEvent]
	if err := a.get(ctx, "/api/calendar/retrieve", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *APIClient) get(ctx context.Context, path string, q url.Values, out any) error {
	target := a.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return &provider.TransportError{URL: a.baseURL + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return &provider.TransportError{URL: a.baseURL + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &provider.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       strings.TrimSpace(string(body)),
		}
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil && env.Error != "" {
			httpErr.Body = env.Message
			return fmt.Errorf("%s: %w", env.Error, httpErr)
		}
		return httpErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &provider.ParseError{Err: err}
	}
	return nil
}
