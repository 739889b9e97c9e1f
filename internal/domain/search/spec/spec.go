// Package spec models the user-authored search specification: a closed union of
// simple, advanced, raw and match-everything searches.
package spec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Spec limits.
const (
	// MaxTextLength is the maximum byte length of a free-text field.
	MaxTextLength = 4096
	MaxConditions = 6
	MaxDistance   = 100
)

// ErrInvalid is wrapped by every constructor error in this package.
var ErrInvalid = errors.New("invalid search spec")

// Kind identifies a Spec variant.
type Kind string

// Spec kinds.
const (
	KindAll      Kind = "all"
	KindSimple   Kind = "simple"
	KindAdvanced Kind = "advanced"
	KindRaw      Kind = "raw"
)

// Spec is implemented only by MatchAll, Simple, Advanced and Raw.
type Spec interface {
	Kind() Kind
	isSpec()
}

// Scope selects the fields a simple search looks at.
type Scope string

// Simple search scopes.
const (
	ScopeTitle        Scope = "title"
	ScopeTitleAndBody Scope = "title_and_body"
)

// IsValid checks if the scope is one of the supported values.
func (s Scope) IsValid() bool { return s == ScopeTitle || s == ScopeTitleAndBody }

// MatchMode selects phrase or term matching for a simple search.
type MatchMode string

// Match modes.
const (
	// Exact requires the text to appear contiguously and in order.
	Exact MatchMode = "exact"
	// Fuzzy requires every term to appear, in any order.
	Fuzzy MatchMode = "fuzzy"
)

// IsValid checks if the match mode is one of the supported values.
func (m MatchMode) IsValid() bool { return m == Exact || m == Fuzzy }

// Combinator joins the conditions of an advanced search.
type Combinator string

// Combinators.
const (
	All Combinator = "all"
	Any Combinator = "any"
)

// IsValid checks if the combinator is one of the supported values.
func (c Combinator) IsValid() bool { return c == All || c == Any }

// MatchAll is the empty search: every document matches.
type MatchAll struct{}

// Kind implements Spec.
func (MatchAll) Kind() Kind { return KindAll }
func (MatchAll) isSpec() {}

// Simple is a single free-text search.
type Simple struct {
	scope Scope
	mode  MatchMode
	text  string
}

// NewSimple validates a simple search. Text is trimmed and must not be empty.
func NewSimple(scope Scope, mode MatchMode, text string) (Simple, error) {
	if !scope.IsValid() {
		return Simple{}, fmt.Errorf("%w: unknown scope %q", ErrInvalid, scope)
	}
	if !mode.IsValid() {
		return Simple{}, fmt.Errorf("%w: unknown match mode %q", ErrInvalid, mode)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Simple{}, fmt.Errorf("%w: text is required", ErrInvalid)
	}
	if len(text) > MaxTextLength {
		return Simple{}, fmt.Errorf("%w: text too long (max %d bytes)", ErrInvalid, MaxTextLength)
	}
	return Simple{scope: scope, mode: mode, text: text}, nil
}

// Kind implements Spec.
func (Simple) Kind() Kind { return KindSimple }
func (Simple) isSpec() {}

// Scope returns the searched fields.
func (s Simple) Scope() Scope { return s.scope }

// Mode returns the match mode.
func (s Simple) Mode() MatchMode { return s.mode }

// Text returns the search text.
func (s Simple) Text() string { return s.text }

// Advanced is an ordered list of conditions joined by a combinator.
type Advanced struct {
	combinator Combinator
	conditions []Condition
}

// NewAdvanced validates an advanced search of 1..MaxConditions conditions.
func NewAdvanced(c Combinator, conditions []Condition) (Advanced, error) {
	if !c.IsValid() {
		return Advanced{}, fmt.Errorf("%w: unknown combinator %q", ErrInvalid, c)
	}
	if len(conditions) == 0 || len(conditions) > MaxConditions {
		return Advanced{}, fmt.Errorf("%w: conditions must be between 1 and %d, got %d",
			ErrInvalid, MaxConditions, len(conditions))
	}
	cs := make([]Condition, len(conditions))
	copy(cs, conditions)
	return Advanced{combinator: c, conditions: cs}, nil
}

// Kind implements Spec.
func (Advanced) Kind() Kind { return KindAdvanced }
func (Advanced) isSpec() {}

// Combinator returns how conditions are joined.
func (a Advanced) Combinator() Combinator { return a.combinator }

// Conditions returns a copy of the conditions in order.
func (a Advanced) Conditions() []Condition {
	cs := make([]Condition, len(a.conditions))
	copy(cs, a.conditions)
	return cs
}

// Raw is a pre-built engine query passed through untouched.
// Only JSON syntax is checked; the engine reports anything else.
type Raw struct {
	payload json.RawMessage
}

// NewRaw wraps a raw query payload.
func NewRaw(payload []byte) (Raw, error) {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return Raw{}, fmt.Errorf("%w: raw query is empty", ErrInvalid)
	}
	if !json.Valid(payload) {
		return Raw{}, fmt.Errorf("%w: raw query is not valid JSON", ErrInvalid)
	}
	p := make(json.RawMessage, len(payload))
	copy(p, payload)
	return Raw{payload: p}, nil
}

// Kind implements Spec.
func (Raw) Kind() Kind { return KindRaw }
func (Raw) isSpec() {}

// Payload returns a copy of the raw query.
func (r Raw) Payload() json.RawMessage {
	p := make(json.RawMessage, len(r.payload))
	copy(p, r.payload)
	return p
}
