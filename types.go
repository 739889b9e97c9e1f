package lpsearch

import (
	"encoding/json"

	"github.com/lvpi/lpsearch/internal/domain/search/result"
)

// Range bounds a numeric facet attribute. Nil bounds are open.
type Range struct {
	GTE *float64
	LTE *float64
}

// SearchOptions narrow and page a search.
type SearchOptions struct {
	// Page is 1-based. Zero means the first page.
	Page int
	// Size defaults to 8 and is capped at 100.
	Size int
	// Refinements maps a facet attribute to accepted values (OR within an attribute).
	Refinements map[string][]string
	// Ranges maps a numeric facet attribute to its bounds.
	Ranges map[string]Range
	// NoHighlight disables highlight fragments.
	NoHighlight bool
}

// Hit is one matched document.
type Hit struct {
	ID        string
	Score     float64
	Source    json.RawMessage
	Highlight map[string][]string
}

// Bucket is one facet value and its document count.
type Bucket struct {
	Value string
	Count int64
}

// Facet is the value distribution of one facet attribute.
type Facet struct {
	Attribute string
	Buckets   []Bucket
}

// Page is one page of results.
type Page struct {
	Total  int64
	TookMS int64
	Page   int
	Size   int
	Pages  int
	Hits   []Hit
	Facets []Facet
}

func pageFromDomain(p *result.Page) *Page {
	hits := p.Hits()
	out := &Page{
		Total:  p.Total(),
		TookMS: p.Took(),
		Page:   p.Page(),
		Size:   p.Size(),
		Pages:  p.Pages(),
		Hits:   make([]Hit, len(hits)),
	}
	for i := range hits {
		out.Hits[i] = Hit{
			ID:        hits[i].ID(),
			Score:     hits[i].Score(),
			Source:    hits[i].Source(),
			Highlight: hits[i].Highlight(),
		}
	}
	facets := p.Facets()
	out.Facets = make([]Facet, len(facets))
	for i := range facets {
		buckets := facets[i].Buckets()
		f := Facet{Attribute: facets[i].Attribute(), Buckets: make([]Bucket, len(buckets))}
		for j, b := range buckets {
			f.Buckets[j] = Bucket{Value: b.Value, Count: b.Count}
		}
		out.Facets[i] = f
	}
	return out
}
