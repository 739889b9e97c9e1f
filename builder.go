package lpsearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/lvpi/lpsearch/internal/domain/search/spec"
)

// SimpleBuilder is a fluent builder for single free-text searches.
type SimpleBuilder struct {
	c     *Client
	text  string
	mode  spec.MatchMode
	scope spec.Scope
	opts  SearchOptions
}

// Simple starts a fuzzy title-and-body search for text.
func (c *Client) Simple(text string) *SimpleBuilder {
	return &SimpleBuilder{c: c, text: text, mode: spec.Fuzzy, scope: spec.ScopeTitleAndBody}
}

// Exact requires the text to appear contiguously and in order.
func (b *SimpleBuilder) Exact() *SimpleBuilder {
	b.mode = spec.Exact
	return b
}

// TitleOnly restricts a fuzzy search to the title field.
func (b *SimpleBuilder) TitleOnly() *SimpleBuilder {
	b.scope = spec.ScopeTitle
	return b
}

// Refine accepts documents whose facet attribute equals any of values.
func (b *SimpleBuilder) Refine(attribute string, values ...string) *SimpleBuilder {
	b.opts.Refinements = addRefinement(b.opts.Refinements, attribute, values)
	return b
}

// Page sets the 1-based page number.
func (b *SimpleBuilder) Page(n int) *SimpleBuilder {
	b.opts.Page = n
	return b
}

// Size sets the page size.
func (b *SimpleBuilder) Size(n int) *SimpleBuilder {
	b.opts.Size = n
	return b
}

// Spec validates the search. Empty text matches every document.
func (b *SimpleBuilder) Spec() (Spec, error) {
	if b.text == "" {
		return MatchAll(), nil
	}
	s, err := spec.NewSimple(b.scope, b.mode, b.text)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	return Spec{s: s}, nil
}

// Do runs the search.
func (b *SimpleBuilder) Do(ctx context.Context) (*Page, error) {
	s, err := b.Spec()
	if err != nil {
		return nil, err
	}
	return b.c.Search(ctx, s, b.opts)
}

// AdvancedBuilder is a fluent builder for multi-condition searches.
// The first invalid condition is reported by Spec and Do.
type AdvancedBuilder struct {
	c          *Client
	combinator spec.Combinator
	conditions []spec.Condition
	err        error
	opts       SearchOptions
}

// Advanced starts a search whose conditions must all match.
func (c *Client) Advanced() *AdvancedBuilder {
	return &AdvancedBuilder{c: c, combinator: spec.All}
}

// Any makes the search match when at least one condition matches.
func (b *AdvancedBuilder) Any() *AdvancedBuilder {
	b.combinator = spec.Any
	return b
}

// Include requires every keyword in text as an exact phrase.
func (b *AdvancedBuilder) Include(f Field, text string) *AdvancedBuilder {
	return b.plain(f, spec.Include, text)
}

// IncludeAny requires at least one keyword in text.
func (b *AdvancedBuilder) IncludeAny(f Field, text string) *AdvancedBuilder {
	return b.plain(f, spec.IncludeAny, text)
}

// Exclude rejects documents containing any keyword in text.
func (b *AdvancedBuilder) Exclude(f Field, text string) *AdvancedBuilder {
	return b.plain(f, spec.Exclude, text)
}

// Near requires every keyword in text within distance positions of each other,
// inside one sentence, one paragraph or a plain span.
func (b *AdvancedBuilder) Near(f Field, p Proximity, text string, distance int, ordered bool) *AdvancedBuilder {
	return b.add(spec.NewProximity(
		spec.FieldScope(f), spec.Include, spec.Proximity(p), text,
		spec.Window{Distance: distance, Ordered: ordered},
	))
}

// NotNear rejects documents whose keywords occur within the window.
func (b *AdvancedBuilder) NotNear(f Field, p Proximity, text string, distance int, ordered bool) *AdvancedBuilder {
	return b.add(spec.NewProximity(
		spec.FieldScope(f), spec.Exclude, spec.Proximity(p), text,
		spec.Window{Distance: distance, Ordered: ordered},
	))
}

// Refine accepts documents whose facet attribute equals any of values.
func (b *AdvancedBuilder) Refine(attribute string, values ...string) *AdvancedBuilder {
	b.opts.Refinements = addRefinement(b.opts.Refinements, attribute, values)
	return b
}

// Page sets the 1-based page number.
func (b *AdvancedBuilder) Page(n int) *AdvancedBuilder {
	b.opts.Page = n
	return b
}

// Size sets the page size.
func (b *AdvancedBuilder) Size(n int) *AdvancedBuilder {
	b.opts.Size = n
	return b
}

func (b *AdvancedBuilder) plain(f Field, r spec.Relation, text string) *AdvancedBuilder {
	return b.add(spec.NewPlain(spec.FieldScope(f), r, text))
}

func (b *AdvancedBuilder) add(c spec.Condition, err error) *AdvancedBuilder {
	if b.err != nil {
		return b
	}
	if err != nil {
		b.err = fmt.Errorf("condition %d: %w", len(b.conditions)+1, err)
		return b
	}
	b.conditions = append(b.conditions, c)
	return b
}

// Spec validates the search.
func (b *AdvancedBuilder) Spec() (Spec, error) {
	if b.err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidSpec, b.err)
	}
	if len(b.conditions) == 0 {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidSpec, errors.New("no conditions"))
	}
	a, err := spec.NewAdvanced(b.combinator, b.conditions)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	return Spec{s: a}, nil
}

// Do runs the search.
func (b *AdvancedBuilder) Do(ctx context.Context) (*Page, error) {
	s, err := b.Spec()
	if err != nil {
		return nil, err
	}
	return b.c.Search(ctx, s, b.opts)
}

func addRefinement(m map[string][]string, attribute string, values []string) map[string][]string {
	if m == nil {
		m = make(map[string][]string)
	}
	m[attribute] = append(m[attribute], values...)
	return m
}
