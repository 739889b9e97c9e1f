package search

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tidwall/sjson"

	"github.com/lvpi/lpsearch/internal/domain"
	"github.com/lvpi/lpsearch/internal/domain/search/filter"
	"github.com/lvpi/lpsearch/internal/domain/search/query"
	"github.com/lvpi/lpsearch/internal/domain/search/request"
)

// buildBody assembles the _search request:
// query = bool{must:[q], filter:[refinements]}, paging, _source, highlight and facet aggs.
func (r *Repo) buildBody(q query.Query, req request.Request) ([]byte, error) {
	filters, err := r.refinements(req.Filters())
	if err != nil {
		return nil, err
	}
	root := query.Bool{Must: []query.Query{q}, Filter: filters}
	qjson, err := query.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	body := []byte(`{}`)
	set := func(path string, v any) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, v)
		}
	}
	setRaw := func(path string, raw []byte) {
		if err == nil {
			body, err = sjson.SetRawBytes(body, path, raw)
		}
	}

	setRaw("query", qjson)
	set("from", req.From())
	set("size", req.Size())
	set("track_total_hits", true)
	if len(r.settings.ResultAttributes) > 0 {
		set("_source", r.settings.ResultAttributes)
	}
	if req.Highlight() {
		for _, field := range r.settings.HighlightAttributes {
			setRaw("highlight.fields."+escapePath(field), []byte(`{}`))
		}
	}
	for _, f := range r.settings.Facets.Facets() {
		base := "aggs." + escapePath(f.Attribute) + ".terms"
		set(base+".field", f.Field)
		set(base+".size", r.settings.BucketSize)
	}
	if err != nil {
		return nil, fmt.Errorf("set body field: %w", err)
	}
	return body, nil
}

// refinements converts facet refinements to filter clauses on the facet's index field.
func (r *Repo) refinements(e filter.Expression) ([]query.Query, error) {
	if unknown := r.settings.Facets.Unknown(e.Attributes()); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown facet attributes: %v", domain.ErrInvalidRequest, unknown)
	}
	return lo.Map(e.Conditions(), func(c filter.Condition, _ int) query.Query {
		f, _ := r.settings.Facets.Lookup(c.Attribute())
		if c.IsRange() {
			return query.Range{Field: f.Field, GTE: c.Range().GTE(), LTE: c.Range().LTE()}
		}
		return query.Terms{Field: f.Field, Values: c.Values()}
	}), nil
}

// escapePath escapes gjson/sjson path metacharacters in a single key.
func escapePath(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '\\':
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}
