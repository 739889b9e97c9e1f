// Package query holds the Elasticsearch query nodes produced by the translator
// and consumed by the search repository.
package query

import (
	"encoding/json"

	"github.com/samber/lo"
)

// Operators for Match.
const (
	OperatorAnd = "and"
	OperatorOr  = "or"
)

// Query is a node of an Elasticsearch query tree.
type Query interface {
	// Source returns the node as a JSON-encodable value.
	Source() any
}

// SpanQuery is a query usable inside span_near and span_not.
type SpanQuery interface {
	Query
	isSpan()
}

// Marshal encodes a query tree to Elasticsearch JSON.
func Marshal(q Query) ([]byte, error) {
	return json.Marshal(q.Source())
}

func sources[T Query](qs []T) []any {
	return lo.Map(qs, func(q T, _ int) any { return q.Source() })
}

// MatchAll matches every document.
type MatchAll struct{}

func (MatchAll) Source() any {
	return map[string]any{"match_all": map[string]any{}}
}

// Match is a full-text term query.
type Match struct {
	Field    string
	Text     string
	Operator string
	Boost    float64
}

func (m Match) Source() any {
	body := map[string]any{"query": m.Text}
	if m.Operator != "" {
		body["operator"] = m.Operator
	}
	if m.Boost != 0 {
		body["boost"] = m.Boost
	}
	return map[string]any{"match": map[string]any{m.Field: body}}
}

// MatchPhrase matches Text as a phrase with up to Slop positions of movement.
type MatchPhrase struct {
	Field string
	Text  string
	Slop  int
}

func (m MatchPhrase) Source() any {
	return map[string]any{"match_phrase": map[string]any{
		m.Field: map[string]any{"query": m.Text, "slop": m.Slop},
	}}
}

// Bool combines clauses. Empty clause lists are omitted from the output.
type Bool struct {
	Must               []Query
	MustNot            []Query
	Should             []Query
	Filter             []Query
	MinimumShouldMatch int
}

func (b Bool) Source() any {
	body := map[string]any{}
	if len(b.Must) > 0 {
		body["must"] = sources(b.Must)
	}
	if len(b.MustNot) > 0 {
		body["must_not"] = sources(b.MustNot)
	}
	if len(b.Should) > 0 {
		body["should"] = sources(b.Should)
	}
	if len(b.Filter) > 0 {
		body["filter"] = sources(b.Filter)
	}
	if b.MinimumShouldMatch > 0 {
		body["minimum_should_match"] = b.MinimumShouldMatch
	}
	return map[string]any{"bool": body}
}

// SpanTerm matches a single indexed token.
type SpanTerm struct {
	Field string
	Value string
}

func (s SpanTerm) Source() any {
	return map[string]any{"span_term": map[string]any{s.Field: map[string]any{"value": s.Value}}}
}

func (SpanTerm) isSpan() {}

// SpanNear matches when all clauses occur within Slop positions.
type SpanNear struct {
	Clauses []SpanQuery
	Slop    int
	InOrder bool
}

func (s SpanNear) Source() any {
	return map[string]any{"span_near": map[string]any{
		"clauses":  sources(s.Clauses),
		"slop":     s.Slop,
		"in_order": s.InOrder,
	}}
}

func (SpanNear) isSpan() {}

// SpanNot matches Include spans that do not overlap Exclude.
type SpanNot struct {
	Include SpanQuery
	Exclude SpanQuery
}

func (s SpanNot) Source() any {
	return map[string]any{"span_not": map[string]any{
		"include": s.Include.Source(),
		"exclude": s.Exclude.Source(),
	}}
}

func (SpanNot) isSpan() {}

// Terms matches documents whose Field equals any of Values.
type Terms struct {
	Field  string
	Values []string
}

func (t Terms) Source() any {
	return map[string]any{"terms": map[string]any{t.Field: t.Values}}
}

// Range matches numeric values within inclusive bounds. Nil bounds are open.
type Range struct {
	Field string
	GTE   *float64
	LTE   *float64
}

func (r Range) Source() any {
	body := map[string]any{}
	if r.GTE != nil {
		body["gte"] = *r.GTE
	}
	if r.LTE != nil {
		body["lte"] = *r.LTE
	}
	return map[string]any{"range": map[string]any{r.Field: body}}
}

// Raw is a caller-supplied query embedded verbatim.
type Raw json.RawMessage

func (r Raw) Source() any { return json.RawMessage(r) }
