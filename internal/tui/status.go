package tui

import (
	"fmt"
	"strings"
)

// StatusKind indicates severity for status messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

const (
	MsgLoadingMail     = "Loading mail…"
	MsgLoadingCalendar = "Loading calendar…"
	MsgLoadingMore     = "Loading more…"
	MsgRefreshing      = "Refreshing…"
	MsgRendering       = "Rendering…"
	MsgNothingMore     = "Nothing more to load"
	MsgNothingToOpen   = "Nothing to open"
	MsgNoResults       = "No results"
	MsgSearchOff       = "Search unavailable"
	MsgNoLongerLoaded  = "That item is no longer loaded"
)

func MsgLoaded(what string, shown int, more bool) string {
	s := fmt.Sprintf("%s: %d shown", what, shown)
	if more {
		s += " • more available"
	}
	return s
}

func MsgLoadFailed(what, reason string) string {
	return fmt.Sprintf("%s failed: %s", what, strings.TrimSpace(reason))
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgOpened(label string) string {
	return "Opened " + label
}

func MsgFilter(filter string) string {
	return "Showing " + filter + " mail"
}

func MsgCalendar(id string) string {
	return "Calendar: " + id
}
