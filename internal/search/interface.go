package search

// Kind tells which list a result belongs to.
type Kind string

const (
	KindEmail Kind = "email"
	KindEvent Kind = "event"
)

// Result is one hit. ID is the provider id of the email or event.
type Result struct {
	Kind     Kind
	ID       string
	Title    string
	Subtitle string
	Score    float64
}

// Searcher is the search surface used by the TUI.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// DebugStatser reports index size for the status bar.
type DebugStatser interface {
	DocCount() (int, error)
}
