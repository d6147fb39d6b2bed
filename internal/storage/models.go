package storage

import (
	"time"
)

// Prefs is the dashboard state restored on the next start.
type Prefs struct {
	EmailFilter string    `json:"email_filter"`
	CalendarID  string    `json:"calendar_id"`
	ActivePane  string    `json:"active_pane"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Calendar is a calendar id the user has switched to at least once.
type Calendar struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	LastUsed time.Time `json:"last_used"`
}

// ExportRecord describes one finished mbox export.
type ExportRecord struct {
	Path       string    `json:"path"`
	Messages   int       `json:"messages"`
	UnreadOnly bool      `json:"unread_only"`
	FinishedAt time.Time `json:"finished_at"`
}
