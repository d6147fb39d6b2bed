package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/mailcal/internal/conferencing"
	"github.com/pders01/mailcal/internal/config"
	"github.com/pders01/mailcal/internal/dashboard"
	"github.com/pders01/mailcal/internal/debuglog"
	"github.com/pders01/mailcal/internal/format"
	"github.com/pders01/mailcal/internal/listview"
	"github.com/pders01/mailcal/internal/provider"
	"github.com/pders01/mailcal/internal/search"
	"github.com/pders01/mailcal/internal/storage"
)

// LinkOpener hands a URL to the desktop.
type LinkOpener interface {
	Open(link string) error
}

// Deps are the collaborators of the dashboard. Store, Index and Opener may
// be nil; the features that need them are then disabled.
type Deps struct {
	Config   *config.Config
	Source   dashboard.Source
	Store    *storage.Store
	Index    *search.Index
	Opener   LinkOpener
	Meetings *conferencing.Registry
	Now      func() time.Time
}

// chrome is the number of rows taken by the tab bar and status bar.
const chrome = 4

type App struct {
	config     *config.Config
	store      *storage.Store
	index      *search.Index
	opener     LinkOpener
	meetings   *conferencing.Registry
	now        func() time.Time
	keyHandler *KeyHandler

	emails *dashboard.EmailList
	events *dashboard.CalendarList

	emailList    list.Model
	eventList    list.Model
	searchList   list.Model
	calendarList list.Model

	searchInput   textinput.Model
	calendarInput textinput.Model
	viewport      viewport.Model
	spinner       spinner.Model
	spinning      bool

	view           View
	pane           Pane
	readerPane     Pane
	readerID       string
	loadingReader  bool
	cameFromSearch bool

	searchSeq      int
	searchDebounce time.Duration
	pendingQuery   string

	clock      time.Time
	width      int
	height     int
	status     string
	statusKind StatusKind

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func newList(title string, filtering bool) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(filtering)
	l.SetShowHelp(false)
	return l
}

func NewApp(deps Deps) *App {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.TestConfig()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	meetings := deps.Meetings
	if meetings == nil {
		meetings = conferencing.NewDefaultRegistry()
	}

	ApplyTheme(cfg.UI.Colors)

	filter := dashboard.ParseEmailFilter(cfg.Dashboard.EmailFilter)
	calendarID := cfg.Dashboard.CalendarID
	pane := PaneEmail

	if deps.Store != nil {
		prefs, err := deps.Store.LoadPrefs()
		if err != nil {
			debuglog.Warnf("loading dashboard prefs: %v", err)
		} else {
			if prefs.EmailFilter != "" {
				filter = dashboard.ParseEmailFilter(prefs.EmailFilter)
			}
			if prefs.CalendarID != "" {
				calendarID = prefs.CalendarID
			}
			pane = ParsePane(prefs.ActivePane)
		}
	}

	si := textinput.New()
	si.Placeholder = "Search loaded mail and events..."

	ci := textinput.New()
	ci.Placeholder = "Calendar id, or Enter to pick below"

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	app := &App{
		config:         cfg,
		store:          deps.Store,
		index:          deps.Index,
		opener:         deps.Opener,
		meetings:       meetings,
		now:            now,
		emails:         dashboard.NewEmailList(deps.Source, cfg.Dashboard.PageSize, filter),
		events:         dashboard.NewCalendarList(deps.Source, cfg.Dashboard.PageSize, calendarID),
		emailList:      newList("› mail", false),
		eventList:      newList("› calendar", false),
		searchList:     newList("› search results", false),
		calendarList:   newList("› known calendars", false),
		searchInput:    si,
		calendarInput:  ci,
		viewport:       viewport.New(0, 0),
		spinner:        sp,
		view:           ViewDashboard,
		pane:           pane,
		searchDebounce: 150 * time.Millisecond,
		clock:          now(),
	}
	app.keyHandler = NewKeyHandler(app, cfg)
	app.setTitles()

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxW := a.config.UI.Email.WordWrapMaxWidth
	minW := a.config.UI.Email.WordWrapMinWidth
	if maxW <= 0 {
		maxW = 120
	}
	if minW <= 0 {
		minW = 40
	}

	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > maxW {
		wordWrapWidth = maxW
	}
	if wordWrapWidth < minW {
		wordWrapWidth = minW
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadAll(), a.tick())
}

// loadAll issues the first page of both lists.
func (a *App) loadAll() tea.Cmd {
	a.setStatus(MsgLoadingMail, StatusInfo)
	return tea.Batch(
		a.startEmails(a.emails.Load()),
		a.startEvents(a.events.Load()),
		a.loadCalendars(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case emailResultMsg:
		a.applyEmails(msg.res)
		return a, nil

	case calendarResultMsg:
		a.applyEvents(msg.res)
		return a, nil

	case readerRenderedMsg:
		if a.view == ViewReader && msg.id == a.readerID {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingReader = false
			a.clearStatus()
		}
		return a, nil

	case searchDebounceFireMsg:
		if msg.seq == a.searchSeq && a.view == ViewSearch {
			return a, a.performSearch(a.pendingQuery)
		}
		return a, nil

	case searchResultsMsg:
		if a.view == ViewSearch && msg.query == a.pendingQuery {
			items := make([]list.Item, len(msg.results))
			for i, r := range msg.results {
				items[i] = searchResultItem{res: r}
			}
			a.searchList.SetItems(items)
			if len(items) == 0 {
				a.setStatus(MsgNoResults, StatusInfo)
			} else {
				a.setStatus(MsgResultsCount(len(items)), StatusInfo)
			}
		}
		return a, nil

	case calendarsLoadedMsg:
		items := make([]list.Item, len(msg.calendars))
		for i, c := range msg.calendars {
			items[i] = calendarItem{cal: c}
		}
		a.calendarList.SetItems(items)
		return a, nil

	case clockTickMsg:
		a.clock = msg.now
		a.syncEvents()
		a.syncEmails()
		return a, a.tick()

	case spinner.TickMsg:
		if !a.isLoading() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case statusMsg:
		a.setStatus(msg.text, msg.kind)
		return a, nil

	case errorMsg:
		a.setStatus(msg.err.Error(), StatusError)
		return a, nil
	}

	if a.view == ViewReader {
		switch msg.(type) {
		case tea.MouseMsg:
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	listHeight := height - chrome
	if listHeight < 3 {
		listHeight = 3
	}
	a.emailList.SetSize(width, listHeight)
	a.eventList.SetSize(width, listHeight)

	searchListHeight := height - chrome - 6
	if searchListHeight < 5 {
		searchListHeight = 5
	}
	a.searchList.SetSize(width, searchListHeight)
	a.calendarList.SetSize(width, searchListHeight)

	a.viewport.Width = width
	a.viewport.Height = listHeight

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width
	}
	a.searchInput.Width = inputWidth
	a.calendarInput.Width = inputWidth
}

func (a *App) applyEmails(res listview.Result[provider.EmailMessage, dashboard.EmailFilter]) {
	if !a.emails.Apply(res) {
		debuglog.Debugf("tui: dropped stale email result (generation %d)", res.Generation)
		return
	}
	a.syncEmails()
	snap := a.emails.Snapshot()
	if res.Err != nil {
		a.setStatus(MsgLoadFailed("Mail", snap.Error), StatusError)
		return
	}
	if a.index != nil {
		if err := a.index.ReplaceEmails(snap.Items); err != nil {
			debuglog.Warnf("indexing emails: %v", err)
		}
	}
	if a.pane == PaneEmail {
		a.setStatus(MsgLoaded("Mail", len(snap.Items), snap.HasMore()), StatusInfo)
	}
}

func (a *App) applyEvents(res listview.Result[provider.CalendarEvent, string]) {
	if !a.events.Apply(res) {
		debuglog.Debugf("tui: dropped stale calendar result (generation %d)", res.Generation)
		return
	}
	a.syncEvents()
	snap := a.events.Snapshot()
	if res.Err != nil {
		a.setStatus(MsgLoadFailed("Calendar", snap.Error), StatusError)
		return
	}
	if a.index != nil {
		if err := a.index.ReplaceEvents(snap.Items); err != nil {
			debuglog.Warnf("indexing events: %v", err)
		}
	}
	if a.pane == PaneCalendar {
		a.setStatus(MsgLoaded("Calendar", len(snap.Items), snap.HasMore()), StatusInfo)
	}
}

// syncEmails rebuilds the email list items from the controller.
func (a *App) syncEmails() {
	snap := a.emails.Snapshot()
	items := make([]list.Item, len(snap.Items))
	for i, m := range snap.Items {
		items[i] = emailItem{msg: m, now: a.clock, snippetLen: a.config.UI.Email.SnippetLength}
	}
	a.emailList.SetItems(items)
	a.setTitles()
}

// syncEvents rebuilds the calendar list grouped into today, upcoming and past.
func (a *App) syncEvents() {
	snap := a.events.Snapshot()
	agenda := dashboard.Partition(snap.Items, a.clock)

	items := make([]list.Item, 0, agenda.Len())
	add := func(b bucket, evs []provider.CalendarEvent) {
		for _, ev := range evs {
			items = append(items, eventItem{
				ev:      ev,
				bucket:  b,
				color:   format.EventColor(len(items)),
				meeting: a.meetings.Resolve(ev),
			})
		}
	}
	add(bucketToday, agenda.Today)
	add(bucketUpcoming, agenda.Upcoming)
	add(bucketPast, agenda.Past)

	a.eventList.SetItems(items)
	a.setTitles()
}

func (a *App) setTitles() {
	a.emailList.Title = "› mail (" + string(a.emails.Filter()) + ")"
	a.eventList.Title = "› calendar (" + a.events.Filter() + ")"
}

func (a *App) isLoading() bool {
	return a.emails.State() == listview.Loading || a.events.State() == listview.Loading
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

func (a *App) View() string {
	bodyHeight := a.height - chrome
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var content string
	switch a.view {
	case ViewDashboard:
		content = a.dashboardView(bodyHeight)
	case ViewReader:
		if a.loadingReader {
			content = renderCentered(a.width, bodyHeight, renderMuted(MsgRendering))
		} else {
			content = a.viewport.View()
		}
	case ViewSearch:
		content = a.searchView(bodyHeight)
	case ViewCalendarPick:
		content = a.calendarPickView(bodyHeight)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.tabBar(),
		content,
		renderSeparator(a.width),
		a.statusBar(),
	)
}

func (a *App) tabBar() string {
	mail := "Mail · " + string(a.emails.Filter())
	cal := "Calendar · " + a.events.Filter()

	mailStyle, calStyle := InactiveTabStyle, InactiveTabStyle
	if a.pane == PaneEmail {
		mailStyle = ActiveTabStyle
	} else {
		calStyle = ActiveTabStyle
	}

	tabs := []string{LogoStyle.Render(CompactLogo), mailStyle.Render(mail), calStyle.Render(cal)}
	if a.isLoading() {
		tabs = append(tabs, a.spinner.View())
	}
	return strings.Join(tabs, " ")
}

func (a *App) dashboardView(height int) string {
	if a.pane == PaneEmail {
		snap := a.emails.Snapshot()
		if len(snap.Items) == 0 {
			return renderCentered(a.width, height, GetCompactBanner(emptyMessage(snap.State, snap.Error, "No mail here")))
		}
		return a.emailList.View()
	}

	snap := a.events.Snapshot()
	if len(snap.Items) == 0 {
		return renderCentered(a.width, height, GetCompactBanner(emptyMessage(snap.State, snap.Error, "No events")))
	}
	return a.eventList.View()
}

func emptyMessage(state listview.State, errMsg, empty string) string {
	switch state {
	case listview.Idle, listview.Loading:
		return "Loading…"
	case listview.Errored:
		return "Error: " + errMsg
	default:
		return empty
	}
}

func (a *App) searchView(height int) string {
	header := "› search"
	var helpText string
	switch {
	case a.searchInput.Focused():
		helpText = "Type to search • Tab/↓: results • Esc: back"
	case len(a.searchList.Items()) > 0:
		helpText = "↑↓: navigate • Enter: open • Tab: search box • Esc: back"
	default:
		helpText = "No results • Tab: search box • Esc: back"
	}

	body := lipgloss.JoinVertical(
		lipgloss.Top,
		HeaderStyle.Render(header),
		"",
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
		renderHelp(helpText),
		"",
		a.searchList.View(),
	)
	return lipgloss.NewStyle().Width(a.width).Height(height).MaxHeight(height).Render(body)
}

func (a *App) calendarPickView(height int) string {
	body := lipgloss.JoinVertical(
		lipgloss.Top,
		HeaderStyle.Render("› switch calendar"),
		renderMuted("current: "+a.events.Filter()),
		"",
		renderInputFrame(a.calendarInput.View(), true, a.calendarInput.Width),
		renderHelp("Enter: switch • ↑↓: pick a known calendar • Esc: cancel"),
		"",
		a.calendarList.View(),
	)
	return lipgloss.NewStyle().Width(a.width).Height(height).MaxHeight(height).Render(body)
}

func (a *App) statusBar() string {
	commands := a.keyHandler.GetHelpForCurrentView()
	text := strings.Join(commands, " • ")
	if a.status != "" {
		text = renderStatus(a.status, a.statusKind) + renderMuted("  "+text)
	} else {
		text = renderMuted(text)
	}
	return lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		MaxHeight(1).
		Render(text)
}

type emailResultMsg struct {
	res listview.Result[provider.EmailMessage, dashboard.EmailFilter]
}

type calendarResultMsg struct {
	res listview.Result[provider.CalendarEvent, string]
}

type readerRenderedMsg struct {
	id      string
	content string
}

type searchDebounceFireMsg struct {
	seq int
}

type searchResultsMsg struct {
	query   string
	results []*search.Result
}

type calendarsLoadedMsg struct {
	calendars []*storage.Calendar
}

type clockTickMsg struct {
	now time.Time
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
