package lpsearch

import (
	"fmt"

	"github.com/lvpi/lpsearch/internal/domain/search/spec"
)

// Field selects the index field a condition applies to.
type Field string

// Fields.
const (
	Title Field = "title"
	Body  Field = "body"
)

// Proximity constrains where keywords may occur relative to each other.
type Proximity string

// Proximity classes.
const (
	SameSentence  Proximity = "same_sentence"
	SameParagraph Proximity = "same_paragraph"
	WithinSpan    Proximity = "within_span"
)

// Spec is a validated search specification. The zero value matches every document.
type Spec struct {
	s spec.Spec
}

// MatchAll returns a spec that matches every document.
func MatchAll() Spec { return Spec{s: spec.MatchAll{}} }

// ParseForm decodes a search-box JSON payload into a Spec.
func ParseForm(form []byte) (Spec, error) {
	s, err := spec.DecodeForm(form)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	return Spec{s: s}, nil
}

// RawQuery wraps a pre-built Elasticsearch query. Only JSON syntax is checked.
func RawQuery(query []byte) (Spec, error) {
	r, err := spec.NewRaw(query)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	return Spec{s: r}, nil
}

// Kind names the spec variant: "all", "simple", "advanced" or "raw".
func (s Spec) Kind() string { return string(s.domain().Kind()) }

func (s Spec) domain() spec.Spec {
	if s.s == nil {
		return spec.MatchAll{}
	}
	return s.s
}
