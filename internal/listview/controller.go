package listview

import (
	"context"
	"slices"
	"sync"

	"github.com/pders01/mailcal/internal/debuglog"
)

// Controller owns the state of one list view.
//
// Every operation that starts a fetch bumps a generation counter and returns
// a Request stamped with it. Apply only accepts the Result whose generation
// is current, so a page fetched for an old filter, or one overtaken by a
// refresh, never reaches the item sequence. At most one request is live.
type Controller[T any, F comparable] struct {
	mu sync.Mutex

	fetch FetchFunc[T, F]
	id    func(T) string
	name  string

	filter     F
	state      State
	items      []T
	cursor     string
	errMsg     string
	err        error
	generation uint64
	inflight   bool

	selectedID  string
	hasSelected bool
}

// New builds a controller in the Idle state. id extracts the identity key
// used for selection.
func New[T any, F comparable](name string, fetch FetchFunc[T, F], id func(T) string, initial F) *Controller[T, F] {
	return &Controller[T, F]{
		name:   name,
		fetch:  fetch,
		id:     id,
		filter: initial,
	}
}

// startLocked bumps the generation and moves to Loading. Callers hold mu.
func (c *Controller[T, F]) startLocked(kind Kind, cursor string) *Request[T, F] {
	c.generation++
	c.inflight = true
	c.state = Loading
	c.errMsg = ""
	c.err = nil

	debuglog.WithFields(debuglog.Fields{
		"list":       c.name,
		"kind":       kind,
		"generation": c.generation,
	}).Debugf("fetch started")

	return &Request[T, F]{
		Generation: c.generation,
		Kind:       kind,
		Filter:     c.filter,
		Cursor:     cursor,
		fetch:      c.fetch,
	}
}

// Load issues the first-page fetch for the current filter, discarding
// whatever was loaded before.
func (c *Controller[T, F]) Load() *Request[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.cursor = ""
	return c.startLocked(Reset, "")
}

// SetFilter switches to f and issues a fresh first-page fetch. It returns nil
// when f is already the current filter. Any fetch still running for the old
// filter is superseded.
func (c *Controller[T, F]) SetFilter(f F) *Request[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f == c.filter {
		return nil
	}
	c.filter = f
	c.items = nil
	c.cursor = ""
	return c.startLocked(Reset, "")
}

// LoadMore fetches the page after the current cursor. It returns nil while
// another fetch is live, before anything has loaded, and once the cursor is
// exhausted. After a failed LoadMore the same cursor may be retried.
func (c *Controller[T, F]) LoadMore() *Request[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight || c.cursor == "" {
		return nil
	}
	if c.state != Loaded && c.state != Errored {
		return nil
	}
	return c.startLocked(More, c.cursor)
}

// Refresh re-fetches the first page for the current filter. Existing items
// stay in place until the new page arrives and then are replaced wholesale.
func (c *Controller[T, F]) Refresh() *Request[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.startLocked(Refresh, "")
}

// Apply merges r if it belongs to the current generation and reports whether
// it did. A failure keeps items and cursor and records the error.
func (c *Controller[T, F]) Apply(r Result[T, F]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.Generation != c.generation || !c.inflight {
		debuglog.WithFields(debuglog.Fields{
			"list":       c.name,
			"kind":       r.Kind,
			"generation": r.Generation,
			"current":    c.generation,
		}).Debugf("dropping stale result")
		return false
	}
	c.inflight = false

	if r.Err != nil {
		c.state = Errored
		c.err = r.Err
		c.errMsg = r.Err.Error()
		debuglog.Warnf("%s: %s fetch failed: %v", c.name, r.Kind, r.Err)
		return true
	}

	switch r.Kind {
	case More:
		c.items = append(c.items, r.Page.Items...)
	default:
		c.items = slices.Clone(r.Page.Items)
	}
	c.cursor = r.Page.NextCursor
	c.state = Loaded
	return true
}

// Do runs req on the calling goroutine and applies its result. A nil req is
// a no-op and reports false.
func (c *Controller[T, F]) Do(ctx context.Context, req *Request[T, F]) bool {
	if req == nil {
		return false
	}
	return c.Apply(req.Run(ctx))
}

// Select marks id as the open item. The id need not be in the current list.
func (c *Controller[T, F]) Select(id string) {
	c.mu.Lock()
	c.selectedID = id
	c.hasSelected = true
	c.mu.Unlock()
}

func (c *Controller[T, F]) ClearSelection() {
	c.mu.Lock()
	c.selectedID = ""
	c.hasSelected = false
	c.mu.Unlock()
}

// SelectedID returns the selected id, if any.
func (c *Controller[T, F]) SelectedID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedID, c.hasSelected
}

// Selected returns the selected item when it is present in the loaded items.
func (c *Controller[T, F]) Selected() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if !c.hasSelected {
		return zero, false
	}
	for _, item := range c.items {
		if c.id(item) == c.selectedID {
			return item, true
		}
	}
	return zero, false
}

func (c *Controller[T, F]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller[T, F]) Filter() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Err is the error of the last failed fetch, nil after a success or once a
// new fetch starts. HTTP status codes stay reachable through errors.As.
func (c *Controller[T, F]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Items returns a copy of the loaded items.
func (c *Controller[T, F]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot[T any, F comparable] struct {
	State      State
	Filter     F
	Items      []T
	Cursor     string
	Error      string
	SelectedID string
	Selected   bool
	Generation uint64
}

// HasMore reports whether LoadMore could fetch another page.
func (s Snapshot[T, F]) HasMore() bool {
	return s.Cursor != ""
}

func (c *Controller[T, F]) Snapshot() Snapshot[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T, F]{
		State:      c.state,
		Filter:     c.filter,
		Items:      slices.Clone(c.items),
		Cursor:     c.cursor,
		Error:      c.errMsg,
		SelectedID: c.selectedID,
		Selected:   c.hasSelected,
		Generation: c.generation,
	}
}
