package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/mailcal/internal/config"
	"github.com/pders01/mailcal/internal/search"
)

// keyMap is the resolved set of action keys.
type keyMap struct {
	quit         string
	back         string
	switchPane   string
	search       string
	refresh      string
	loadMore     string
	toggleFilter string
	calendar     string
	open         string
}

type KeyHandler struct {
	app         *App
	modifierKey string
	keys        keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := ""
	if cfg.Keys.Modifier != "" {
		modifierKey = cfg.Keys.Modifier + "+"
	}
	kh := &KeyHandler{app: app, modifierKey: modifierKey}

	b := cfg.Keys.Bindings
	kh.keys = keyMap{
		quit:         b.Quit,
		back:         b.Back,
		switchPane:   b.SwitchPane,
		search:       kh.action(b.Search),
		refresh:      kh.action(b.Refresh),
		loadMore:     kh.action(b.LoadMore),
		toggleFilter: kh.action(b.ToggleFilter),
		calendar:     kh.action(b.Calendar),
		open:         kh.action(b.Open),
	}
	return kh
}

// action prefixes single-character bindings with the modifier.
func (kh *KeyHandler) action(binding string) string {
	if len([]rune(binding)) == 1 {
		return kh.modifierKey + binding
	}
	return binding
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focused()
	case ViewCalendarPick:
		return true
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	key := msg.String()

	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		return kh.navigateBack()
	case "enter":
		return kh.handleTextInputEnter()
	}

	if a.view == ViewCalendarPick {
		switch key {
		case "up", "down":
			var cmd tea.Cmd
			a.calendarList, cmd = a.calendarList.Update(msg)
			return a, cmd
		case "ctrl+d":
			if item, ok := a.calendarList.SelectedItem().(calendarItem); ok {
				return a, a.forgetCalendar(item.cal.ID)
			}
			return a, nil
		}
		var cmd tea.Cmd
		a.calendarInput, cmd = a.calendarInput.Update(msg)
		return a, cmd
	}

	// Search input.
	if key == "tab" || key == "down" {
		if len(a.searchList.Items()) > 0 {
			a.searchInput.Blur()
			a.searchList.Select(0)
		}
		return a, nil
	}

	prev := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)

	query := strings.TrimSpace(a.searchInput.Value())
	if a.searchInput.Value() == prev {
		return a, cmd
	}
	a.pendingQuery = query
	a.searchSeq++
	if len(query) < 2 {
		a.searchList.SetItems([]list.Item{})
		return a, cmd
	}
	seq := a.searchSeq
	return a, tea.Batch(cmd, tea.Tick(a.searchDebounce, func(time.Time) tea.Msg {
		return searchDebounceFireMsg{seq: seq}
	}))
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewCalendarPick:
		id := strings.TrimSpace(a.calendarInput.Value())
		if id == "" {
			if item, ok := a.calendarList.SelectedItem().(calendarItem); ok {
				id = item.cal.ID
			}
		}
		if id == "" {
			return a, nil
		}
		return a, kh.switchCalendar(id)

	case ViewSearch:
		if items := a.searchList.Items(); len(items) > 0 {
			if item, ok := items[0].(searchResultItem); ok {
				return kh.selectSearchResult(item)
			}
		}
		return a, nil
	}
	return a, nil
}

func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	k := kh.keys

	switch key {
	case "ctrl+c", k.quit:
		return a, tea.Quit, true
	case "esc", k.back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case k.search:
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	}

	switch a.view {
	case ViewDashboard:
		return kh.handleDashboardKeys(key)
	case ViewReader:
		if key == k.open {
			return a, kh.openSelected(a.readerPane), true
		}
	}
	return a, nil, false
}

func (kh *KeyHandler) handleDashboardKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	k := kh.keys

	switch key {
	case k.switchPane:
		a.pane = a.pane.Other()
		a.clearStatus()
		return a, a.savePrefs(), true

	case k.refresh:
		a.setStatus(MsgRefreshing, StatusInfo)
		if a.pane == PaneEmail {
			return a, a.startEmails(a.emails.Refresh()), true
		}
		return a, a.startEvents(a.events.Refresh()), true

	case k.loadMore:
		var cmd tea.Cmd
		if a.pane == PaneEmail {
			cmd = a.startEmails(a.emails.LoadMore())
		} else {
			cmd = a.startEvents(a.events.LoadMore())
		}
		if cmd == nil {
			a.setStatus(MsgNothingMore, StatusInfo)
			return a, nil, true
		}
		a.setStatus(MsgLoadingMore, StatusInfo)
		return a, cmd, true

	case k.toggleFilter:
		if a.pane != PaneEmail {
			return a, nil, true
		}
		next := a.emails.Filter().Toggle()
		req := a.emails.SetFilter(next)
		a.syncEmails()
		a.setStatus(MsgFilter(string(next)), StatusInfo)
		return a, tea.Batch(a.startEmails(req), a.savePrefs()), true

	case k.calendar:
		a.view = ViewCalendarPick
		a.calendarInput.Reset()
		a.calendarInput.Focus()
		return a, a.loadCalendars(), true

	case k.open:
		return a, kh.openSelected(a.pane), true
	}
	return a, nil, false
}

// delegateToCharm lets the bubbles components handle keys we don't intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd

	switch a.view {
	case ViewDashboard:
		if msg.String() == "enter" {
			return kh.openReader(a.pane, kh.highlightedID(a.pane), false)
		}
		if a.pane == PaneEmail {
			a.emailList, cmd = a.emailList.Update(msg)
		} else {
			a.eventList, cmd = a.eventList.Update(msg)
		}
		return a, cmd

	case ViewSearch:
		switch msg.String() {
		case "tab", "shift+tab", "/":
			a.searchInput.Focus()
			return a, nil
		case "up":
			if a.searchList.Index() == 0 {
				a.searchInput.Focus()
				return a, nil
			}
		case "enter":
			if item, ok := a.searchList.SelectedItem().(searchResultItem); ok {
				return kh.selectSearchResult(item)
			}
			return a, nil
		}
		a.searchList, cmd = a.searchList.Update(msg)
		return a, cmd

	case ViewReader:
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (kh *KeyHandler) highlightedID(p Pane) string {
	a := kh.app
	if p == PaneEmail {
		if item, ok := a.emailList.SelectedItem().(emailItem); ok {
			return item.msg.ID
		}
		return ""
	}
	if item, ok := a.eventList.SelectedItem().(eventItem); ok {
		return item.ev.ID
	}
	return ""
}

// openReader selects id in the pane's controller and renders it.
func (kh *KeyHandler) openReader(p Pane, id string, fromSearch bool) (tea.Model, tea.Cmd) {
	a := kh.app
	if id == "" {
		return a, nil
	}

	r, err := a.getRenderer()
	if err != nil {
		a.setStatus("renderer: "+err.Error(), StatusError)
		return a, nil
	}

	var markdown string
	if p == PaneEmail {
		a.emails.Select(id)
		m, ok := a.emails.Selected()
		if !ok {
			a.emails.ClearSelection()
			a.setStatus(MsgNoLongerLoaded, StatusWarn)
			return a, nil
		}
		markdown = emailMarkdown(m, time.Local)
	} else {
		a.events.Select(id)
		ev, ok := a.events.Selected()
		if !ok {
			a.events.ClearSelection()
			a.setStatus(MsgNoLongerLoaded, StatusWarn)
			return a, nil
		}
		markdown = eventMarkdown(ev, a.meetings.Resolve(ev))
	}

	a.view = ViewReader
	a.readerPane = p
	a.readerID = id
	a.loadingReader = true
	a.cameFromSearch = fromSearch
	a.setStatus(MsgRendering, StatusInfo)
	return a, render(r, id, markdown)
}

// openSelected opens the meeting link of the selected or highlighted event,
// falling back to its calendar page.
func (kh *KeyHandler) openSelected(p Pane) tea.Cmd {
	a := kh.app
	if p != PaneCalendar {
		a.setStatus(MsgNothingToOpen, StatusInfo)
		return nil
	}

	ev, ok := a.events.Selected()
	if !ok {
		item, isEvent := a.eventList.SelectedItem().(eventItem)
		if !isEvent {
			a.setStatus(MsgNothingToOpen, StatusInfo)
			return nil
		}
		ev = item.ev
	}

	if link := a.meetings.Resolve(ev); link != nil {
		return a.openLink(link.URL, link.Label)
	}
	if ev.HTMLLink != "" {
		return a.openLink(ev.HTMLLink, "event page")
	}
	a.setStatus(MsgNothingToOpen, StatusInfo)
	return nil
}

func (kh *KeyHandler) selectSearchResult(item searchResultItem) (tea.Model, tea.Cmd) {
	a := kh.app
	if item.res == nil {
		return a, nil
	}
	p := PaneEmail
	if item.res.Kind == search.KindEvent {
		p = PaneCalendar
	}
	a.pane = p
	return kh.openReader(p, item.res.ID, true)
}

func (kh *KeyHandler) switchCalendar(id string) tea.Cmd {
	a := kh.app
	a.view = ViewDashboard
	a.pane = PaneCalendar
	a.calendarInput.Reset()
	a.calendarInput.Blur()

	req := a.events.SetFilter(id)
	if req == nil {
		a.setStatus(MsgCalendar(id), StatusInfo)
		return a.touchCalendar(id)
	}
	a.syncEvents()
	a.setStatus(MsgLoadingCalendar, StatusInfo)
	return tea.Batch(a.startEvents(req), a.touchCalendar(id), a.savePrefs())
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewReader:
		if a.readerPane == PaneEmail {
			a.emails.ClearSelection()
		} else {
			a.events.ClearSelection()
		}
		a.readerID = ""
		a.loadingReader = false
		a.clearStatus()
		if a.cameFromSearch {
			a.cameFromSearch = false
			a.view = ViewSearch
			a.searchInput.Blur()
			return a, nil
		}
		a.view = ViewDashboard
		return a, nil

	case ViewSearch:
		a.view = ViewDashboard
		a.searchInput.Reset()
		a.searchInput.Blur()
		a.pendingQuery = ""
		a.searchSeq++
		a.searchList.SetItems([]list.Item{})
		a.clearStatus()
		return a, nil

	case ViewCalendarPick:
		a.view = ViewDashboard
		a.calendarInput.Reset()
		a.calendarInput.Blur()
		return a, nil

	default:
		return a, tea.Quit
	}
}

func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	a := kh.app
	a.view = ViewSearch
	a.cameFromSearch = false
	a.searchInput.Reset()
	a.searchInput.Focus()
	a.pendingQuery = ""
	a.searchList.SetItems([]list.Item{})

	if a.index == nil {
		a.setStatus(MsgSearchOff, StatusWarn)
		return a, nil
	}
	var ds search.DebugStatser = a.index
	if n, err := ds.DocCount(); err == nil {
		a.setStatus(MsgResultsCount(n)+" indexed", StatusInfo)
	}
	return a, nil
}

// GetHelpForCurrentView lists the action keys that apply right now.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	a := kh.app
	k := kh.keys

	switch a.view {
	case ViewDashboard:
		help := []string{
			"enter: open",
			k.switchPane + ": switch",
			k.refresh + ": refresh",
		}
		if a.pane == PaneEmail {
			if a.emails.Snapshot().HasMore() {
				help = append(help, k.loadMore+": more")
			}
			help = append(help, k.toggleFilter+": "+string(a.emails.Filter().Toggle()))
		} else {
			if a.events.Snapshot().HasMore() {
				help = append(help, k.loadMore+": more")
			}
			help = append(help, k.calendar+": calendar", k.open+": join/open")
		}
		return append(help, k.search+": search", k.quit+": quit")
	case ViewReader:
		help := []string{"↑↓: scroll", k.back + ": back"}
		if a.readerPane == PaneCalendar {
			help = append(help, k.open+": join/open")
		}
		return help
	case ViewSearch:
		return []string{k.back + ": back"}
	case ViewCalendarPick:
		return []string{"enter: switch", "ctrl+d: forget", k.back + ": cancel"}
	}
	return nil
}
