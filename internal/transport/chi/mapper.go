package chi

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	domsaved "github.com/lvpi/lpsearch/internal/domain/savedsearch"
	"github.com/lvpi/lpsearch/internal/domain/search/filter"
	"github.com/lvpi/lpsearch/internal/domain/search/request"
	"github.com/lvpi/lpsearch/internal/domain/search/result"
	"github.com/lvpi/lpsearch/internal/domain/search/spec"
)

// searchRequestFromBody converts a search body to a domain request.
// Refinements are sorted by attribute so equal bodies produce equal requests.
func searchRequestFromBody(body SearchRequest) (request.Request, error) {
	sp, err := spec.DecodeForm(body.Spec)
	if err != nil {
		return request.Request{}, err
	}
	filters, err := filtersFromBody(body.Refinements, body.Ranges)
	if err != nil {
		return request.Request{}, err
	}
	highlight := true
	if body.Highlight != nil {
		highlight = *body.Highlight
	}
	return request.New(sp, filters, body.Page, body.Size, highlight)
}

func filtersFromBody(terms map[string][]string, ranges map[string]RangeRefinement) (filter.Expression, error) {
	conditions := make([]filter.Condition, 0, len(terms)+len(ranges))

	for _, attr := range sortedKeys(terms) {
		c, err := filter.NewTerms(attr, terms[attr])
		if err != nil {
			return filter.Expression{}, fmt.Errorf("refinement: %w", err)
		}
		conditions = append(conditions, c)
	}
	for _, attr := range sortedKeys(ranges) {
		rr := ranges[attr]
		rng, err := filter.NewRangeFilter(rr.GTE, rr.LTE)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("range %q: %w", attr, err)
		}
		c, err := filter.NewRange(attr, rng)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("range: %w", err)
		}
		conditions = append(conditions, c)
	}

	return filter.NewExpression(conditions)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

func pageToResponse(p *result.Page) PageResponse {
	hits := p.Hits()
	items := make([]HitResponse, len(hits))
	for i := range hits {
		items[i] = HitResponse{
			ID:        hits[i].ID(),
			Score:     hits[i].Score(),
			Source:    hits[i].Source(),
			Highlight: hits[i].Highlight(),
		}
	}

	facets := p.Facets()
	fs := make([]FacetResponse, len(facets))
	for i := range facets {
		fs[i] = FacetResponse{
			Attribute: facets[i].Attribute(),
			Buckets: lo.Map(facets[i].Buckets(), func(b result.Bucket, _ int) BucketResponse {
				return BucketResponse{Value: b.Value, Count: b.Count}
			}),
		}
	}

	return PageResponse{
		Total:  p.Total(),
		TookMS: p.Took(),
		Page:   p.Page(),
		Size:   p.Size(),
		Pages:  p.Pages(),
		Hits:   items,
		Facets: fs,
	}
}

func savedSearchToResponse(s *domsaved.SavedSearch) SavedSearchResponse {
	return SavedSearchResponse{
		ID:         s.ID(),
		Title:      s.Title(),
		Form:       json.RawMessage(s.Form()),
		Subject:    s.Subject(),
		CreatedAt:  time.UnixMilli(s.CreatedAt()).UTC(),
		ModifiedAt: time.UnixMilli(s.ModifiedAt()).UTC(),
		Revision:   s.Revision(),
	}
}
