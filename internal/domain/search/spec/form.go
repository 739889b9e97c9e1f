package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Form search types.
const (
	formSimple   = 1
	formAdvanced = 2
)

// form mirrors the JSON the search box submits.
type form struct {
	SearchType int             `json:"searchType"`
	QueryData  *simpleForm     `json:"queryData"`
	Logic      string          `json:"logic"`
	Condition  []conditionForm `json:"condition"`
	Query      *string         `json:"query"`
}

type simpleForm struct {
	MatchType int    `json:"matchType"`
	OnlyTitle bool   `json:"onlyTitle"`
	QueryText string `json:"queryText"`
}

type conditionForm struct {
	Range        string    `json:"range"`
	Include      string    `json:"include"`
	KeywordRange string    `json:"keywordRange"`
	Text         string    `json:"text"`
	Slop         *int      `json:"slop"`
	Order        *flexBool `json:"order"`
}

// flexBool accepts true/false as JSON booleans or strings; select boxes submit strings.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("order must be a boolean: %w", err)
	}
	if s == "" {
		*b = false
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("order must be a boolean, got %q", s)
	}
	*b = flexBool(v)
	return nil
}

// DecodeForm parses a search-box payload into a Spec.
// An empty or null payload, or a simple search with no text, yields MatchAll.
func DecodeForm(data []byte) (Spec, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return MatchAll{}, nil
	}

	var f form
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decode form: %w", ErrInvalid, err)
	}

	switch f.SearchType {
	case formSimple:
		return decodeSimple(f.QueryData)
	case formAdvanced:
		return decodeAdvanced(&f)
	default:
		return nil, fmt.Errorf("%w: unknown searchType %d", ErrInvalid, f.SearchType)
	}
}

func decodeSimple(q *simpleForm) (Spec, error) {
	if q == nil || q.QueryText == "" {
		return MatchAll{}, nil
	}
	mode := Fuzzy
	if q.MatchType == 1 {
		mode = Exact
	}
	scope := ScopeTitleAndBody
	if q.OnlyTitle {
		scope = ScopeTitle
	}
	s, err := NewSimple(scope, mode, q.QueryText)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func decodeAdvanced(f *form) (Spec, error) {
	if f.Query != nil {
		r, err := NewRaw([]byte(*f.Query))
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	var comb Combinator
	switch f.Logic {
	case "", "and":
		comb = All
	case "or":
		comb = Any
	default:
		return nil, fmt.Errorf("%w: unknown logic %q", ErrInvalid, f.Logic)
	}

	conditions := make([]Condition, 0, len(f.Condition))
	for i, cf := range f.Condition {
		c, err := decodeCondition(cf)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i+1, err)
		}
		conditions = append(conditions, c)
	}

	a, err := NewAdvanced(comb, conditions)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func decodeCondition(cf conditionForm) (Condition, error) {
	field := Title
	if cf.Range == "content" {
		field = Body
	}

	var rel Relation
	switch cf.Include {
	case "contain":
		rel = Include
	case "notContain":
		rel = Exclude
	default:
		rel = IncludeAny
	}

	var p Proximity
	switch cf.KeywordRange {
	case "", "normal":
		return NewPlain(field, rel, cf.Text)
	case "sentence":
		p = SameSentence
	case "paragraphs":
		p = SameParagraph
	case "span":
		p = WithinSpan
	default:
		return Condition{}, fmt.Errorf("%w: unknown keywordRange %q", ErrInvalid, cf.KeywordRange)
	}

	if cf.Slop == nil {
		return Condition{}, fmt.Errorf("%w: slop is required for keywordRange %q", ErrInvalid, cf.KeywordRange)
	}
	var ordered bool
	if cf.Order != nil {
		ordered = bool(*cf.Order)
	}
	return NewProximity(field, rel, p, cf.Text, Window{Distance: *cf.Slop, Ordered: ordered})
}
