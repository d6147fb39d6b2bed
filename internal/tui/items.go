package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/mailcal/internal/conferencing"
	"github.com/pders01/mailcal/internal/format"
	"github.com/pders01/mailcal/internal/provider"
	"github.com/pders01/mailcal/internal/search"
	"github.com/pders01/mailcal/internal/storage"
)

type emailItem struct {
	msg        provider.EmailMessage
	now        time.Time
	snippetLen int
}

func (i emailItem) Title() string {
	subject := i.msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	line := truncateEnd(i.msg.Sender()+" · "+subject, 100)
	if i.msg.Unread {
		return UnreadItemStyle.Render("● " + line)
	}
	if i.msg.Starred {
		return ReadItemStyle.Render("★ " + line)
	}
	return ReadItemStyle.Render(line)
}

func (i emailItem) Description() string {
	parts := []string{TimeStyle.Render(format.Relative(i.msg.Date, i.now))}
	for _, f := range i.msg.Folders {
		parts = append(parts, renderBadge(format.FolderLabel(f), format.Hex(format.FolderColor(f))))
	}
	if n := len(i.msg.Attachments); n > 0 {
		parts = append(parts, renderMuted("📎"))
	}
	snippet := format.Truncate(strings.TrimSpace(i.msg.Snippet), i.snippetLen)
	if snippet != "" {
		parts = append(parts, renderMuted(snippet))
	}
	return strings.Join(parts, " ")
}

func (i emailItem) FilterValue() string { return i.msg.Subject + " " + i.msg.Sender() }

// bucket is the agenda section an event falls in.
type bucket string

const (
	bucketToday    bucket = "Today"
	bucketUpcoming bucket = "Upcoming"
	bucketPast     bucket = "Past"
)

type eventItem struct {
	ev      provider.CalendarEvent
	bucket  bucket
	color   string
	meeting *conferencing.Link
}

func (i eventItem) Title() string {
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(format.Hex(i.color))).Render("●")
	title := i.ev.Title
	if title == "" {
		title = "(untitled)"
	}
	return dot + " " + ReadItemStyle.Render(truncateEnd(title, 80))
}

func (i eventItem) Description() string {
	tz := i.ev.When.StartTimezone
	parts := []string{
		SectionStyle.Render(string(i.bucket)),
		TimeStyle.Render(format.EventDate(i.ev.When.StartTime, tz) + " " + format.EventTime(i.ev.When.StartTime, i.ev.When.EndTime, tz)),
	}
	if who := i.ev.Organizer.Name; who != "" {
		parts = append(parts, renderMuted(who))
	} else if i.ev.Organizer.Email != "" {
		parts = append(parts, renderMuted(i.ev.Organizer.Email))
	}
	if i.meeting != nil {
		parts = append(parts, renderBadge(i.meeting.Label, format.Hex("teal")))
	}
	return strings.Join(parts, " • ")
}

func (i eventItem) FilterValue() string { return i.ev.Title }

type searchResultItem struct {
	res *search.Result
}

func (i searchResultItem) Title() string {
	icon := "✉ "
	if i.res.Kind == search.KindEvent {
		icon = "◷ "
	}
	title := i.res.Title
	if title == "" {
		title = i.res.ID
	}
	return HeaderStyle.Render(icon + title)
}

func (i searchResultItem) Description() string {
	return renderMuted(string(i.res.Kind) + " • " + i.res.Subtitle)
}

func (i searchResultItem) FilterValue() string { return i.res.Title }

type calendarItem struct {
	cal *storage.Calendar
}

func (i calendarItem) Title() string {
	if i.cal.Label != "" && i.cal.Label != i.cal.ID {
		return i.cal.Label + " (" + i.cal.ID + ")"
	}
	return i.cal.ID
}

func (i calendarItem) Description() string {
	if i.cal.LastUsed.IsZero() {
		return ""
	}
	return renderMuted("last used " + i.cal.LastUsed.Format("Jan 2, 15:04"))
}

func (i calendarItem) FilterValue() string { return i.cal.ID }
