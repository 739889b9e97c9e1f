package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/lvpi/lpsearch/internal/domain/search/result"
)

func (r *Repo) parseResponse(data []byte, page, size int) (result.Page, error) {
	if !gjson.ValidBytes(data) {
		return result.Page{}, fmt.Errorf("invalid JSON response")
	}
	doc := gjson.ParseBytes(data)

	total := doc.Get("hits.total.value")
	if !total.Exists() {
		// pre-7.0 clusters report a bare number
		total = doc.Get("hits.total")
	}

	rawHits := doc.Get("hits.hits").Array()
	hits := make([]result.Hit, 0, len(rawHits))
	for _, h := range rawHits {
		var source json.RawMessage
		if s := h.Get("_source"); s.Exists() {
			source = json.RawMessage(s.Raw)
		}
		hits = append(hits, result.NewHit(
			h.Get("_id").String(),
			h.Get("_score").Float(),
			source,
			r.highlight(h.Get("highlight")),
		))
	}

	facets := make([]result.Facet, 0, len(r.settings.Facets.Facets()))
	for _, f := range r.settings.Facets.Facets() {
		agg := doc.Get("aggregations." + escapePath(f.Attribute) + ".buckets")
		if !agg.Exists() {
			continue
		}
		buckets := make([]result.Bucket, 0, len(agg.Array()))
		for _, b := range agg.Array() {
			value := b.Get("key_as_string")
			if !value.Exists() {
				value = b.Get("key")
			}
			buckets = append(buckets, result.Bucket{Value: value.String(), Count: b.Get("doc_count").Int()})
		}
		facets = append(facets, result.NewFacet(f.Attribute, buckets))
	}

	return result.NewPage(total.Int(), doc.Get("took").Int(), page, size, hits, facets), nil
}

// highlight decodes a hit's highlight object and joins the merge field's fragments.
func (r *Repo) highlight(h gjson.Result) map[string][]string {
	if !h.IsObject() {
		return nil
	}
	out := make(map[string][]string)
	h.ForEach(func(field, fragments gjson.Result) bool {
		frags := make([]string, 0, len(fragments.Array()))
		for _, f := range fragments.Array() {
			frags = append(frags, f.String())
		}
		out[field.String()] = frags
		return true
	})
	if frags, ok := out[r.settings.MergeField]; ok && r.settings.MergeField != "" && len(frags) > 1 {
		out[r.settings.MergeField] = []string{strings.Join(frags, r.settings.HighlightSeparator)}
	}
	return out
}
