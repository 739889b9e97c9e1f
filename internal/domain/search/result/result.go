package result

import "encoding/json"

// Hit is a single search hit.
type Hit struct {
	id        string
	score     float64
	source    json.RawMessage
	highlight map[string][]string
}

// NewHit creates a search hit.
func NewHit(id string, score float64, source json.RawMessage, highlight map[string][]string) Hit {
	return Hit{id: id, score: score, source: source, highlight: highlight}
}

// ID returns the document identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the relevance score.
func (h *Hit) Score() float64 { return h.score }

// Source returns the stored document fields.
func (h *Hit) Source() json.RawMessage { return h.source }

// Highlight returns highlighted fragments keyed by field.
func (h *Hit) Highlight() map[string][]string { return h.highlight }

// Bucket is one facet value and its document count.
type Bucket struct {
	Value string
	Count int64
}

// Facet is the value distribution of one facet attribute.
type Facet struct {
	attribute string
	buckets   []Bucket
}

// NewFacet creates a facet distribution.
func NewFacet(attribute string, buckets []Bucket) Facet {
	return Facet{attribute: attribute, buckets: buckets}
}

// Attribute returns the facet attribute name.
func (f *Facet) Attribute() string { return f.attribute }

// Buckets returns the values ordered by count descending.
func (f *Facet) Buckets() []Bucket { return f.buckets }

// Page is one page of search results.
type Page struct {
	total  int64
	took   int64
	page   int
	size   int
	hits   []Hit
	facets []Facet
}

// NewPage creates a result page. took is the engine time in milliseconds.
func NewPage(total, took int64, page, size int, hits []Hit, facets []Facet) Page {
	return Page{total: total, took: took, page: page, size: size, hits: hits, facets: facets}
}

// Total returns the number of matching documents.
func (p *Page) Total() int64 { return p.total }

// Took returns the engine time in milliseconds.
func (p *Page) Took() int64 { return p.took }

// Page returns the 1-based page number.
func (p *Page) Page() int { return p.page }

// Size returns the requested page size.
func (p *Page) Size() int { return p.size }

// Hits returns the hits on this page.
func (p *Page) Hits() []Hit { return p.hits }

// Facets returns the facet distributions.
func (p *Page) Facets() []Facet { return p.facets }

// Pages returns the number of pages available for Total at Size.
func (p *Page) Pages() int {
	if p.size <= 0 {
		return 0
	}
	return int((p.total + int64(p.size) - 1) / int64(p.size))
}
