package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/mailcal/internal/config"
	"github.com/pders01/mailcal/internal/listview"
	"github.com/pders01/mailcal/internal/provider"
	"github.com/pders01/mailcal/internal/server"
)

// upstream fakes the provider's grants API: two pages of unread mail, one
// page of all mail, and one page of events.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"type":"unauthorized"}}`))
			return
		}

		q := r.URL.Query()
		var body any
		switch r.URL.Path {
		case "/v3/grants/test-grant/messages":
			switch {
			case q.Get("unread") != "true":
				body = provider.Page[provider.EmailMessage]{RequestID: "r-all", Data: []provider.EmailMessage{{ID: "all-1"}}}
			case q.Get("page_token") == "":
				body = provider.Page[provider.EmailMessage]{RequestID: "r1", Data: []provider.EmailMessage{{ID: "e1"}, {ID: "e2"}}, NextCursor: "c1"}
			case q.Get("page_token") == "c1":
				body = provider.Page[provider.EmailMessage]{RequestID: "r2", Data: []provider.EmailMessage{{ID: "e3"}}}
			}
		case "/v3/grants/test-grant/events":
			if q.Get("calendar_id") == "broken" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			body = provider.Page[provider.CalendarEvent]{Data: []provider.CalendarEvent{{ID: "ev-" + q.Get("calendar_id")}}}
		}
		if body == nil {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func newStack(t *testing.T) *APIClient {
	t.Helper()
	up := upstream(t)
	t.Cleanup(up.Close)

	cfg := config.TestConfig()
	cfg.Provider.BaseURL = up.URL + "/v3"
	client, err := provider.NewClient(cfg.Provider)
	require.NoError(t, err)

	routes := httptest.NewServer(server.New(cfg.Server, client).Handler())
	t.Cleanup(routes.Close)

	return NewAPIClient(routes.URL, 5*time.Second)
}

func TestEndToEndEmailPaging(t *testing.T) {
	api := newStack(t)
	list := NewEmailList(api, 5, FilterUnread)
	ctx := context.Background()

	require.True(t, list.Do(ctx, list.Load()))
	snap := list.Snapshot()
	require.Equal(t, listview.Loaded, snap.State, snap.Error)
	assert.Equal(t, "c1", snap.Cursor)

	require.True(t, list.Do(ctx, list.LoadMore()))
	var got []string
	for _, m := range list.Items() {
		got = append(got, m.ID)
	}
	assert.Equal(t, []string{"e1", "e2", "e3"}, got)
	assert.Nil(t, list.LoadMore())

	require.True(t, list.Do(ctx, list.SetFilter(FilterAll)))
	items := list.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "all-1", items[0].ID)
}

func TestEndToEndCalendarError(t *testing.T) {
	api := newStack(t)
	list := NewCalendarList(api, 5, "primary")
	ctx := context.Background()

	require.True(t, list.Do(ctx, list.Load()))
	require.Len(t, list.Items(), 1)

	require.True(t, list.Do(ctx, list.SetFilter("broken")))
	snap := list.Snapshot()
	assert.Equal(t, listview.Errored, snap.State)
	assert.Contains(t, snap.Error, "Failed to retrieve calendar events")

	var httpErr *provider.HTTPError
	require.True(t, errors.As(list.Err(), &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "502")
}

func TestAPIClientParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL, time.Second).Emails(context.Background(), 5, true, "")
	var parseErr *provider.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestAPIClientPlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("NotFound"))
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL, time.Second).Events(context.Background(), "primary", 5, "")
	var httpErr *provider.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "NotFound", httpErr.Body)
}
