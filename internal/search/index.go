package search

import (
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/mailcal/internal/format"
	"github.com/pders01/mailcal/internal/provider"
)

// Index is an in-memory full text index over whatever the dashboard has
// loaded. It is rebuilt per list whenever that list is replaced.
type Index struct {
	idx bleve.Index

	mu   sync.Mutex
	docs map[Kind]map[string]struct{}
}

type weightedField struct {
	name  string
	boost float64
}

// Fields searched, in decreasing weight.
var searchFields = []weightedField{
	{"title", 4.0},
	{"people", 3.0},
	{"summary", 2.0},
	{"body", 1.0},
	{"labels", 0.5},
}

func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Index{
		idx: idx,
		docs: map[Kind]map[string]struct{}{
			KindEmail: {},
			KindEvent: {},
		},
	}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	stored := func() *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = standard.Name
		f.Store = true
		return f
	}

	title := stored()
	title.IncludeTermVectors = true

	body := bleve.NewTextFieldMapping()
	body.Analyzer = standard.Name
	body.Store = false

	kind := bleve.NewTextFieldMapping()
	kind.Analyzer = keyword.Name
	kind.Store = true

	dm.AddFieldMappingsAt("kind", kind)
	dm.AddFieldMappingsAt("item_id", stored())
	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("people", stored())
	dm.AddFieldMappingsAt("summary", stored())
	dm.AddFieldMappingsAt("body", body)
	dm.AddFieldMappingsAt("labels", stored())

	im.DefaultMapping = dm
	return im
}

func docID(kind Kind, id string) string { return string(kind) + ":" + id }

// ReplaceEmails drops every indexed email and indexes msgs.
func (i *Index) ReplaceEmails(msgs []provider.EmailMessage) error {
	if err := i.reset(KindEmail); err != nil {
		return err
	}
	return i.AddEmails(msgs)
}

// AddEmails indexes msgs, overwriting earlier versions with the same id.
func (i *Index) AddEmails(msgs []provider.EmailMessage) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.idx.NewBatch()
	for _, m := range msgs {
		people := make([]string, 0, len(m.From)+len(m.To))
		for _, p := range append(append([]provider.Participant{}, m.From...), m.To...) {
			people = append(people, p.Name, p.Email)
		}
		labels := make([]string, 0, len(m.Folders))
		for _, f := range m.Folders {
			labels = append(labels, format.FolderLabel(f))
		}

		id := docID(KindEmail, m.ID)
		if err := batch.Index(id, map[string]any{
			"kind":    string(KindEmail),
			"item_id": m.ID,
			"title":   m.Subject,
			"people":  strings.Join(people, " "),
			"summary": m.Snippet,
			"body":    format.TextFromHTML(m.Body),
			"labels":  strings.Join(labels, " "),
		}); err != nil {
			return err
		}
		i.docs[KindEmail][m.ID] = struct{}{}
	}
	return i.idx.Batch(batch)
}

// ReplaceEvents drops every indexed event and indexes evs.
func (i *Index) ReplaceEvents(evs []provider.CalendarEvent) error {
	if err := i.reset(KindEvent); err != nil {
		return err
	}
	return i.AddEvents(evs)
}

func (i *Index) AddEvents(evs []provider.CalendarEvent) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.idx.NewBatch()
	for _, ev := range evs {
		people := []string{ev.Organizer.Name, ev.Organizer.Email}
		for _, p := range ev.Participants {
			people = append(people, p.Name, p.Email)
		}
		labels := []string{ev.CalendarID, ev.Status}
		if ev.Conferencing != nil {
			labels = append(labels, ev.Conferencing.Provider)
		}

		id := docID(KindEvent, ev.ID)
		if err := batch.Index(id, map[string]any{
			"kind":    string(KindEvent),
			"item_id": ev.ID,
			"title":   ev.Title,
			"people":  strings.Join(people, " "),
			"summary": format.EventDate(ev.When.StartTime, ev.When.StartTimezone),
			"labels":  strings.Join(labels, " "),
		}); err != nil {
			return err
		}
		i.docs[KindEvent][ev.ID] = struct{}{}
	}
	return i.idx.Batch(batch)
}

func (i *Index) reset(kind Kind) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.docs[kind]) == 0 {
		return nil
	}
	batch := i.idx.NewBatch()
	for id := range i.docs[kind] {
		batch.Delete(docID(kind, id))
	}
	if err := i.idx.Batch(batch); err != nil {
		return err
	}
	i.docs[kind] = map[string]struct{}{}
	return nil
}

// Search matches each query term, and each term as a prefix, across the
// weighted fields. Queries shorter than two characters return nothing.
func (i *Index) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, f := range searchFields {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(f.name)
			mq.SetBoost(f.boost)
			qs = append(qs, mq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(f.name)
			pq.SetBoost(f.boost * 0.8)
			qs = append(qs, pq)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"kind", "item_id", "title", "people", "summary"}
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		r := &Result{Score: h.Score}
		if k, ok := h.Fields["kind"].(string); ok {
			r.Kind = Kind(k)
		}
		if id, ok := h.Fields["item_id"].(string); ok {
			r.ID = id
		}
		if t, ok := h.Fields["title"].(string); ok {
			r.Title = t
		}
		if s, ok := h.Fields["summary"].(string); ok {
			r.Subtitle = s
		}
		out = append(out, r)
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (i *Index) DocCount() (int, error) {
	n, err := i.idx.DocCount()
	return int(n), err
}

func (i *Index) Close() error {
	return i.idx.Close()
}
