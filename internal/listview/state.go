// Package listview drives a paginated, filterable list with single selection.
// It is independent of any UI: a view asks the Controller for a Request, runs
// it wherever it likes, and hands the Result back through Apply. Results from
// superseded requests are dropped.
package listview

import "context"

type State int

const (
	Idle State = iota
	Loading
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Page is one batch of items. An empty NextCursor means the list is exhausted.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// FetchFunc loads the page at cursor for filter. The empty cursor is the first page.
type FetchFunc[T any, F comparable] func(ctx context.Context, filter F, cursor string) (Page[T], error)

// Kind says how a successful result is merged.
type Kind int

const (
	// Reset replaces items and is issued by Load and SetFilter.
	Reset Kind = iota
	// More appends items.
	More
	// Refresh replaces items, which stay visible while it runs.
	Refresh
)

func (k Kind) String() string {
	switch k {
	case Reset:
		return "reset"
	case More:
		return "more"
	case Refresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Request is a fetch issued by the controller. It holds everything needed to
// run without touching controller state.
type Request[T any, F comparable] struct {
	Generation uint64
	Kind       Kind
	Filter     F
	Cursor     string

	fetch FetchFunc[T, F]
}

// Run performs the fetch. It is safe to call from any goroutine.
func (r *Request[T, F]) Run(ctx context.Context) Result[T, F] {
	page, err := r.fetch(ctx, r.Filter, r.Cursor)
	return Result[T, F]{
		Generation: r.Generation,
		Kind:       r.Kind,
		Filter:     r.Filter,
		Page:       page,
		Err:        err,
	}
}

// Result is the outcome of a Request, to be passed to Controller.Apply.
type Result[T any, F comparable] struct {
	Generation uint64
	Kind       Kind
	Filter     F
	Page       Page[T]
	Err        error
}
