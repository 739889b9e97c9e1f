package request

import (
	"fmt"

	"github.com/lvpi/lpsearch/internal/domain/search/filter"
	"github.com/lvpi/lpsearch/internal/domain/search/spec"
)

// Paging limits.
const (
	DefaultSize = 8
	MaxSize     = 100
	// MaxWindow mirrors the engine's index.max_result_window.
	MaxWindow = 10000
)

// Request is a validated search: what to match, how to narrow it and which page to return.
type Request struct {
	spec      spec.Spec
	filters   filter.Expression
	page      int
	size      int
	highlight bool
}

// New validates and normalizes search parameters.
// Defaults: spec=match all, page=1, size=8. Size is clamped to MaxSize.
func New(s spec.Spec, filters filter.Expression, page, size int, highlight bool) (Request, error) {
	if s == nil {
		s = spec.MatchAll{}
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if page > MaxWindow/size {
		return Request{}, fmt.Errorf("page %d with size %d exceeds result window of %d", page, size, MaxWindow)
	}

	return Request{
		spec:      s,
		filters:   filters,
		page:      page,
		size:      size,
		highlight: highlight,
	}, nil
}

// Spec returns the search spec.
func (r *Request) Spec() spec.Spec { return r.spec }

// Filters returns the facet refinements.
func (r *Request) Filters() filter.Expression { return r.filters }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// Size returns the page size.
func (r *Request) Size() int { return r.size }

// From returns the offset of the first hit.
func (r *Request) From() int { return (r.page - 1) * r.size }

// Highlight reports whether highlighted fragments are requested.
func (r *Request) Highlight() bool { return r.highlight }
