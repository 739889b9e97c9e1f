// Package facet describes the facet menus of the books index: which request
// attribute maps to which index field.
package facet

import (
	"fmt"

	"github.com/samber/lo"
)

// DefaultBucketSize is the number of buckets returned per facet.
const DefaultBucketSize = 20

// Facet maps a public attribute name to the index field aggregated and filtered on.
type Facet struct {
	Attribute string `yaml:"attribute"`
	Field     string `yaml:"field"`
}

// Catalog is an immutable, ordered set of facets.
type Catalog struct {
	facets []Facet
	index  map[string]Facet
}

// NewCatalog validates facets. Attributes must be unique and non-empty.
func NewCatalog(facets []Facet) (Catalog, error) {
	fs := make([]Facet, len(facets))
	copy(fs, facets)
	index := make(map[string]Facet, len(fs))
	for i, f := range fs {
		if f.Attribute == "" {
			return Catalog{}, fmt.Errorf("facet %d: attribute is required", i)
		}
		if f.Field == "" {
			f.Field = f.Attribute
			fs[i] = f
		}
		if _, dup := index[f.Attribute]; dup {
			return Catalog{}, fmt.Errorf("facet %q declared twice", f.Attribute)
		}
		index[f.Attribute] = f
	}
	return Catalog{facets: fs, index: index}, nil
}

// Facets returns the facets in declaration order.
func (c Catalog) Facets() []Facet {
	fs := make([]Facet, len(c.facets))
	copy(fs, c.facets)
	return fs
}

// Lookup returns the facet for attribute.
func (c Catalog) Lookup(attribute string) (Facet, bool) {
	f, ok := c.index[attribute]
	return f, ok
}

// Unknown returns the attributes not present in the catalog.
func (c Catalog) Unknown(attributes []string) []string {
	return lo.Filter(attributes, func(a string, _ int) bool {
		_, ok := c.index[a]
		return !ok
	})
}

// Defaults returns the facets of the books index.
func Defaults() []Facet {
	return []Facet{
		{Attribute: "publisher", Field: "publisher"},
		{Attribute: "category", Field: "category"},
		{Attribute: "tags", Field: "tags.keyword"},
		{Attribute: "opac_series", Field: "opac_series.keyword"},
		{Attribute: "series", Field: "series.keyword"},
		{Attribute: "topics_lvl0", Field: "topicLevels.lvl0.keyword"},
		{Attribute: "topics_lvl1", Field: "topicLevels.lvl1.keyword"},
		{Attribute: "topics_lvl2", Field: "topicLevels.lvl2.keyword"},
		{Attribute: "topics_lvl3", Field: "topicLevels.lvl3.keyword"},
		{Attribute: "topics_lvl4", Field: "topicLevels.lvl4.keyword"},
		{Attribute: "author", Field: "author"},
		{Attribute: "publication_year", Field: "publication_year"},
		{Attribute: "type", Field: "type"},
		{Attribute: "book_title", Field: "book_title.keyword"},
	}
}

// DefaultResultAttributes lists the source fields returned with each hit.
func DefaultResultAttributes() []string {
	return []string{
		"id", "book_id", "book_title", "author", "publisher", "publication_year",
		"page_num", "pic_path", "file_name", "isbn", "section_text", "topicLevels",
		"tags", "opac_series", "series", "type", "category",
	}
}

// DefaultHighlightAttributes lists the fields highlighted in each hit.
func DefaultHighlightAttributes() []string {
	return []string{"book_title", "book_title.keyword", "section_text"}
}
