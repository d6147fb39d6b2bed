package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/mailcal/internal/conferencing"
	"github.com/pders01/mailcal/internal/dashboard"
	"github.com/pders01/mailcal/internal/format"
	"github.com/pders01/mailcal/internal/listview"
	"github.com/pders01/mailcal/internal/provider"
	"github.com/pders01/mailcal/internal/storage"
)

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d)
}

// startEmails runs req off the UI loop. A nil request is a no-op.
func (a *App) startEmails(req *listview.Request[provider.EmailMessage, dashboard.EmailFilter]) tea.Cmd {
	if req == nil {
		return nil
	}
	timeout := a.config.Dashboard.Timeout
	run := func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		return emailResultMsg{res: req.Run(ctx)}
	}
	return tea.Batch(run, a.startSpinner())
}

func (a *App) startEvents(req *listview.Request[provider.CalendarEvent, string]) tea.Cmd {
	if req == nil {
		return nil
	}
	timeout := a.config.Dashboard.Timeout
	run := func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()
		return calendarResultMsg{res: req.Run(ctx)}
	}
	return tea.Batch(run, a.startSpinner())
}

func (a *App) startSpinner() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

func (a *App) tick() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg {
		return clockTickMsg{now: t}
	})
}

func (a *App) loadCalendars() tea.Cmd {
	store := a.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		cals, err := store.Calendars()
		if err != nil {
			return errorMsg{err: fmt.Errorf("loading calendars: %w", err)}
		}
		return calendarsLoadedMsg{calendars: cals}
	}
}

// savePrefs persists the current filters and pane.
func (a *App) savePrefs() tea.Cmd {
	store := a.store
	if store == nil {
		return nil
	}
	prefs := storage.Prefs{
		EmailFilter: string(a.emails.Filter()),
		CalendarID:  a.events.Filter(),
		ActivePane:  a.pane.String(),
	}
	return func() tea.Msg {
		if err := store.SavePrefs(prefs); err != nil {
			return errorMsg{err: fmt.Errorf("saving prefs: %w", err)}
		}
		return nil
	}
}

func (a *App) touchCalendar(id string) tea.Cmd {
	store := a.store
	if store == nil {
		return nil
	}
	reload := a.loadCalendars()
	return func() tea.Msg {
		if err := store.TouchCalendar(id, ""); err != nil {
			return errorMsg{err: fmt.Errorf("remembering calendar: %w", err)}
		}
		return reload()
	}
}

// forgetCalendar drops id from the picker's history. The active filter is
// left alone.
func (a *App) forgetCalendar(id string) tea.Cmd {
	store := a.store
	if store == nil {
		return nil
	}
	reload := a.loadCalendars()
	return func() tea.Msg {
		if err := store.ForgetCalendar(id); err != nil {
			return errorMsg{err: fmt.Errorf("forgetting calendar: %w", err)}
		}
		return reload()
	}
}

func (a *App) performSearch(query string) tea.Cmd {
	index := a.index
	if index == nil {
		return func() tea.Msg { return statusMsg{text: MsgSearchOff, kind: StatusWarn} }
	}
	return func() tea.Msg {
		results, err := index.Search(query, 20)
		if err != nil {
			return errorMsg{err: fmt.Errorf("search: %w", err)}
		}
		return searchResultsMsg{query: query, results: results}
	}
}

func (a *App) openLink(link, label string) tea.Cmd {
	opener := a.opener
	if opener == nil {
		return func() tea.Msg { return statusMsg{text: "No opener configured", kind: StatusWarn} }
	}
	return func() tea.Msg {
		if err := opener.Open(link); err != nil {
			return errorMsg{err: err}
		}
		return statusMsg{text: MsgOpened(label), kind: StatusSuccess}
	}
}

func render(r *glamour.TermRenderer, id, markdown string) tea.Cmd {
	return func() tea.Msg {
		out, err := r.Render(markdown)
		if err != nil {
			return readerRenderedMsg{id: id, content: "Failed to render: " + err.Error() + "\n\n" + markdown}
		}
		return readerRenderedMsg{id: id, content: out}
	}
}

func emailMarkdown(m provider.EmailMessage, loc *time.Location) string {
	var b strings.Builder

	subject := m.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	fmt.Fprintf(&b, "# %s\n\n", subject)
	fmt.Fprintf(&b, "**From:** %s  \n", participantList(m.From))
	if len(m.To) > 0 {
		fmt.Fprintf(&b, "**To:** %s  \n", participantList(m.To))
	}
	if len(m.CC) > 0 {
		fmt.Fprintf(&b, "**Cc:** %s  \n", participantList(m.CC))
	}
	fmt.Fprintf(&b, "*%s*\n\n", format.EmailDate(m.Date, loc))

	if len(m.Folders) > 0 {
		labels := make([]string, len(m.Folders))
		for i, f := range m.Folders {
			labels[i] = "`" + format.FolderLabel(f) + "`"
		}
		b.WriteString(strings.Join(labels, " ") + "\n\n")
	}

	if len(m.Attachments) > 0 {
		b.WriteString("**Attachments:**\n")
		for _, att := range m.Attachments {
			fmt.Fprintf(&b, "- %s (%s)\n", att.Filename, att.ContentType)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")

	body := format.MarkdownFromHTML(m.Body)
	if strings.TrimSpace(body) == "" {
		body = m.Snippet
	}
	b.WriteString(body)
	return b.String()
}

func eventMarkdown(ev provider.CalendarEvent, meeting *conferencing.Link) string {
	var b strings.Builder

	title := ev.Title
	if title == "" {
		title = "(untitled)"
	}
	tz := ev.When.StartTimezone
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**%s** · %s\n\n", format.EventDate(ev.When.StartTime, tz), format.EventTime(ev.When.StartTime, ev.When.EndTime, tz))

	organizer := ev.Organizer.Name
	if organizer == "" {
		organizer = ev.Organizer.Email
	}
	if organizer != "" {
		fmt.Fprintf(&b, "**Organizer:** %s  \n", organizer)
	}
	if ev.Status != "" {
		fmt.Fprintf(&b, "**Status:** %s  \n", ev.Status)
	}
	if ev.Visibility != "" {
		fmt.Fprintf(&b, "**Visibility:** %s  \n", ev.Visibility)
	}
	b.WriteString("\n")

	if meeting != nil {
		fmt.Fprintf(&b, "**Join %s:** [%s](%s)\n\n", meeting.Label, meeting.URL, meeting.URL)
		if meeting.MeetingCode != "" {
			fmt.Fprintf(&b, "Meeting code: `%s`\n\n", meeting.MeetingCode)
		}
	}

	if len(ev.Participants) > 0 && !ev.HideParticipants {
		b.WriteString("**Participants:**\n")
		for _, p := range ev.Participants {
			status := p.Status
			if status == "" {
				status = "noreply"
			}
			fmt.Fprintf(&b, "- %s (%s)\n", p.Display(), status)
		}
		b.WriteString("\n")
	}

	if ev.HTMLLink != "" {
		fmt.Fprintf(&b, "[Open in calendar](%s)\n", ev.HTMLLink)
	}
	return b.String()
}

func participantList(ps []provider.Participant) string {
	if len(ps) == 0 {
		return "Unknown"
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		if p.Name != "" && p.Email != "" {
			out[i] = p.Name + " (" + p.Email + ")"
		} else {
			out[i] = p.Display()
		}
	}
	return strings.Join(out, ", ")
}
