package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pders01/mailcal/internal/debuglog"
	"github.com/pders01/mailcal/internal/provider"
)

const apiPrefix = "/api/"

// Retriever is the provider surface the routes need. *provider.Client
// satisfies it. Bodies are relayed undecoded so fields the typed models do
// not know about reach the caller.
type Retriever interface {
	RetrieveEmailsRaw(ctx context.Context, q provider.EmailQuery) (json.RawMessage, error)
	RetrieveEventsRaw(ctx context.Context, q provider.EventQuery) (json.RawMessage, error)
}

type routeTable map[string]http.HandlerFunc

// errorEnvelope is the body of every 500 response.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) getRoutes() routeTable {
	return routeTable{
		"email/retrieve":    s.emailRetrieve,
		"calendar/retrieve": s.calendarRetrieve,
	}
}

// postRoutes is empty: every POST is answered with 404.
func (s *Server) postRoutes() routeTable {
	return routeTable{}
}

// routeKey is the path below /api/, matched exactly.
func routeKey(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, apiPrefix)
}

func (s *Server) serveAPI(w http.ResponseWriter, r *http.Request) {
	key := routeKey(r)

	var table routeTable
	switch r.Method {
	case http.MethodOptions:
		s.preflight(w, key)
		return
	case http.MethodGet:
		table = s.get
	case http.MethodPost:
		table = s.post
	}

	handler, ok := table[key]
	if !ok {
		debuglog.Infof("no handler for %s %s", r.Method, key)
		notFound(w)
		return
	}
	handler(w, r)
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("NotFound"))
}

const webhookPath = "twilio/sms-webhook"

func (s *Server) preflight(w http.ResponseWriter, key string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	if key == webhookPath {
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-Twilio-Signature")
		h.Set("Access-Control-Max-Age", "86400")
	} else {
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	}
	w.WriteHeader(http.StatusOK)
}

// queryLimit parses limit, falling back to the provider default on absent,
// malformed or non-positive values.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return provider.DefaultLimit
	}
	return n
}

func (s *Server) emailRetrieve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := provider.EmailQuery{
		Limit:  queryLimit(r),
		Cursor: q.Get("cursor"),
	}
	// Only an explicit "true" narrows the listing; anything else lists all mail.
	if q.Get("unread") == "true" {
		unread := true
		query.Unread = &unread
	}

	debuglog.WithFields(debuglog.Fields{
		"limit":  query.Limit,
		"unread": query.Unread != nil,
		"cursor": query.Cursor != "",
	}).Debugf("email retrieve")

	body, err := s.provider.RetrieveEmailsRaw(r.Context(), query)
	if err != nil {
		s.fail(w, "email/retrieve", "Failed to retrieve emails", err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (s *Server) calendarRetrieve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	calendarID := q.Get("calendar_id")
	if calendarID == "" {
		calendarID = provider.DefaultCalendarID
	}
	query := provider.EventQuery{
		CalendarID: calendarID,
		Limit:      queryLimit(r),
		Cursor:     q.Get("cursor"),
	}

	body, err := s.provider.RetrieveEventsRaw(r.Context(), query)
	if err != nil {
		s.fail(w, "calendar/retrieve", "Failed to retrieve calendar events", err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (s *Server) fail(w http.ResponseWriter, route, summary string, err error) {
	debuglog.Errorf("%s: %v", route, err)
	if s.metrics != nil {
		s.metrics.ProviderErrors.WithLabelValues(route).Inc()
	}
	writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: summary, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debuglog.Warnf("writing response: %v", err)
	}
}

func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		debuglog.Warnf("writing response: %v", err)
	}
}
