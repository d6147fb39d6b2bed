package tui

type View int

const (
	ViewDashboard View = iota
	ViewReader
	ViewSearch
	ViewCalendarPick
)

// Pane is the list shown on the dashboard.
type Pane int

const (
	PaneEmail Pane = iota
	PaneCalendar
)

func (p Pane) String() string {
	if p == PaneCalendar {
		return "calendar"
	}
	return "email"
}

// ParsePane maps a saved pane name back, defaulting to email.
func ParsePane(s string) Pane {
	if s == "calendar" {
		return PaneCalendar
	}
	return PaneEmail
}

func (p Pane) Other() Pane {
	if p == PaneEmail {
		return PaneCalendar
	}
	return PaneEmail
}
