// Package conferencing turns an event's conferencing block into something a
// person can click.
package conferencing

import (
	"strings"

	"github.com/pders01/mailcal/internal/provider"
)

// Link is a resolved meeting.
type Link struct {
	// Label is a short human name such as "Zoom".
	Label       string
	URL         string
	MeetingCode string
}

// Resolver knows one conferencing product.
type Resolver interface {
	Name() string

	// CanHandle reports whether this resolver understands c.
	CanHandle(c *provider.Conferencing) bool

	// Resolve builds the join link. A nil link means nothing joinable.
	Resolve(c *provider.Conferencing) *Link

	// Higher wins when several resolvers can handle the same block.
	Priority() int
}

// Registry picks the best resolver for a conferencing block.
type Registry struct {
	resolvers []Resolver
}

func NewRegistry() *Registry {
	return &Registry{resolvers: make([]Resolver, 0)}
}

// NewDefaultRegistry has the built-in resolvers registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GoogleMeet{})
	r.Register(&Zoom{})
	r.Register(&Teams{})
	r.Register(&Generic{})
	return r
}

func (r *Registry) Register(res Resolver) {
	r.resolvers = append(r.resolvers, res)
}

// Find returns the highest-priority resolver that can handle c, or nil.
func (r *Registry) Find(c *provider.Conferencing) Resolver {
	if c == nil {
		return nil
	}
	var best Resolver
	highest := -1
	for _, res := range r.resolvers {
		if res.CanHandle(c) && res.Priority() > highest {
			best = res
			highest = res.Priority()
		}
	}
	return best
}

// Resolve returns the join link for ev, or nil when it has none.
func (r *Registry) Resolve(ev provider.CalendarEvent) *Link {
	res := r.Find(ev.Conferencing)
	if res == nil {
		return nil
	}
	return res.Resolve(ev.Conferencing)
}

func (r *Registry) Resolvers() []Resolver {
	return append([]Resolver(nil), r.resolvers...)
}

func providerIs(c *provider.Conferencing, names ...string) bool {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	for _, n := range names {
		if p == n {
			return true
		}
	}
	return false
}

func urlHas(c *provider.Conferencing, host string) bool {
	return strings.Contains(strings.ToLower(c.Details.URL), host)
}
