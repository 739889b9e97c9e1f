package spec

import (
	"fmt"
	"strings"
)

// FieldScope selects the field a condition applies to.
type FieldScope string

// Field scopes.
const (
	Body  FieldScope = "body"
	Title FieldScope = "title"
)

// IsValid checks if the field scope is one of the supported values.
func (f FieldScope) IsValid() bool { return f == Body || f == Title }

// Relation decides how a condition contributes to the match.
type Relation string

// Relations.
const (
	// Include requires every keyword.
	Include Relation = "include"
	// Exclude rejects documents matching any keyword.
	Exclude Relation = "exclude"
	// IncludeAny requires at least one keyword.
	IncludeAny Relation = "include_any"
)

// IsValid checks if the relation is one of the supported values.
func (r Relation) IsValid() bool { return r == Include || r == Exclude || r == IncludeAny }

// Proximity constrains where keywords may occur relative to each other.
type Proximity string

// Proximity classes.
const (
	Plain         Proximity = "plain"
	SameSentence  Proximity = "same_sentence"
	SameParagraph Proximity = "same_paragraph"
	WithinSpan    Proximity = "within_span"
)

// IsValid checks if the proximity is one of the supported values.
func (p Proximity) IsValid() bool {
	return p == Plain || p == SameSentence || p == SameParagraph || p == WithinSpan
}

// Window bounds a proximity condition: keywords at most Distance positions apart,
// optionally in the given order.
type Window struct {
	Distance int
	Ordered  bool
}

// Condition is one clause of an advanced search.
// Plain conditions have no window; every other proximity has one.
type Condition struct {
	field     FieldScope
	relation  Relation
	proximity Proximity
	keywords  []string
	window    Window
}

// NewPlain creates a condition matching each keyword as an exact phrase.
func NewPlain(field FieldScope, relation Relation, text string) (Condition, error) {
	keywords, err := validateCommon(field, relation, text)
	if err != nil {
		return Condition{}, err
	}
	return Condition{field: field, relation: relation, proximity: Plain, keywords: keywords}, nil
}

// NewProximity creates a condition whose keywords must occur within a window.
func NewProximity(
	field FieldScope, relation Relation, p Proximity, text string, w Window,
) (Condition, error) {
	if !p.IsValid() {
		return Condition{}, fmt.Errorf("%w: unknown proximity %q", ErrInvalid, p)
	}
	if p == Plain {
		return Condition{}, fmt.Errorf("%w: plain proximity takes no window", ErrInvalid)
	}
	if w.Distance < 1 || w.Distance > MaxDistance {
		return Condition{}, fmt.Errorf("%w: distance must be between 1 and %d, got %d",
			ErrInvalid, MaxDistance, w.Distance)
	}
	keywords, err := validateCommon(field, relation, text)
	if err != nil {
		return Condition{}, err
	}
	return Condition{field: field, relation: relation, proximity: p, keywords: keywords, window: w}, nil
}

func validateCommon(field FieldScope, relation Relation, text string) ([]string, error) {
	if !field.IsValid() {
		return nil, fmt.Errorf("%w: unknown field scope %q", ErrInvalid, field)
	}
	if !relation.IsValid() {
		return nil, fmt.Errorf("%w: unknown relation %q", ErrInvalid, relation)
	}
	if len(text) > MaxTextLength {
		return nil, fmt.Errorf("%w: text too long (max %d bytes)", ErrInvalid, MaxTextLength)
	}
	keywords := Keywords(text)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: text must contain at least one keyword", ErrInvalid)
	}
	return keywords, nil
}

// Keywords splits text on ASCII spaces, dropping blank entries. Other
// whitespace, including the ideographic space, stays inside a keyword.
func Keywords(text string) []string {
	parts := strings.Split(text, " ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Field returns the field scope.
func (c Condition) Field() FieldScope { return c.field }

// Relation returns the relation.
func (c Condition) Relation() Relation { return c.relation }

// Proximity returns the proximity class.
func (c Condition) Proximity() Proximity { return c.proximity }

// Keywords returns a copy of the keywords.
func (c Condition) Keywords() []string {
	ks := make([]string, len(c.keywords))
	copy(ks, c.keywords)
	return ks
}

// Window returns the proximity window. ok is false for plain conditions.
func (c Condition) Window() (w Window, ok bool) {
	if c.proximity == Plain {
		return Window{}, false
	}
	return c.window, true
}
