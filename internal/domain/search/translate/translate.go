// Package translate compiles a search spec into an Elasticsearch query.
//
// Translation is pure: a Translator holds only immutable configuration and is
// safe for concurrent use.
package translate

import (
	"github.com/samber/lo"

	"github.com/lvpi/lpsearch/internal/domain/search/query"
	"github.com/lvpi/lpsearch/internal/domain/search/spec"
)

// Defaults for the books index.
const (
	DefaultTitleField     = "book_title"
	DefaultBodyField      = "section_text"
	DefaultTitleBoost     = 2
	DefaultSentenceBreak  = "。/？/！"
	DefaultParagraphBreak = `\n`
)

// Config names the index fields and boundary tokens used in generated queries.
type Config struct {
	TitleField     string
	BodyField      string
	TitleBoost     float64
	SentenceBreak  string
	ParagraphBreak string
}

// DefaultConfig returns the configuration for the books index.
func DefaultConfig() Config {
	return Config{
		TitleField:     DefaultTitleField,
		BodyField:      DefaultBodyField,
		TitleBoost:     DefaultTitleBoost,
		SentenceBreak:  DefaultSentenceBreak,
		ParagraphBreak: DefaultParagraphBreak,
	}
}

// Translator compiles specs using a fixed Config.
type Translator struct {
	cfg Config
}

// New creates a Translator. Zero-valued fields fall back to DefaultConfig.
func New(cfg Config) *Translator {
	d := DefaultConfig()
	if cfg.TitleField == "" {
		cfg.TitleField = d.TitleField
	}
	if cfg.BodyField == "" {
		cfg.BodyField = d.BodyField
	}
	if cfg.TitleBoost == 0 {
		cfg.TitleBoost = d.TitleBoost
	}
	if cfg.SentenceBreak == "" {
		cfg.SentenceBreak = d.SentenceBreak
	}
	if cfg.ParagraphBreak == "" {
		cfg.ParagraphBreak = d.ParagraphBreak
	}
	return &Translator{cfg: cfg}
}

// Config returns the effective configuration.
func (t *Translator) Config() Config { return t.cfg }

// Translate compiles s into a query tree. A nil spec matches everything.
func (t *Translator) Translate(s spec.Spec) query.Query {
	switch v := s.(type) {
	case spec.Simple:
		return t.simple(v)
	case spec.Advanced:
		return t.advanced(v)
	case spec.Raw:
		return query.Raw(v.Payload())
	default:
		return query.MatchAll{}
	}
}

func (t *Translator) simple(s spec.Simple) query.Query {
	text := s.Text()
	if s.Mode() == spec.Exact {
		return query.Bool{
			Should: []query.Query{
				query.MatchPhrase{Field: t.cfg.TitleField, Text: text},
				query.MatchPhrase{Field: t.cfg.BodyField, Text: text},
			},
			MinimumShouldMatch: 1,
		}
	}

	if s.Scope() == spec.ScopeTitle {
		return query.Bool{Must: []query.Query{
			query.Match{Field: t.cfg.TitleField, Text: text, Operator: query.OperatorAnd},
		}}
	}
	return query.Bool{
		Should: []query.Query{
			query.Match{Field: t.cfg.TitleField, Text: text, Operator: query.OperatorAnd, Boost: t.cfg.TitleBoost},
			query.Match{Field: t.cfg.BodyField, Text: text, Operator: query.OperatorAnd},
		},
		MinimumShouldMatch: 1,
	}
}

func (t *Translator) advanced(a spec.Advanced) query.Query {
	compiled := lo.Map(a.Conditions(), func(c spec.Condition, _ int) query.Query {
		return t.condition(c)
	})
	if len(compiled) == 1 {
		return compiled[0]
	}
	if a.Combinator() == spec.All {
		return query.Bool{Must: compiled}
	}
	return query.Bool{Should: compiled}
}

func (t *Translator) condition(c spec.Condition) query.Query {
	field := t.field(c.Field())
	keywords := c.Keywords()

	w, ok := c.Window()
	if !ok {
		phrases := lo.Map(keywords, func(k string, _ int) query.Query {
			return query.MatchPhrase{Field: field, Text: k}
		})
		return wrap(c.Relation(), phrases)
	}

	near := query.SpanNear{
		Clauses: lo.Map(keywords, func(k string, _ int) query.SpanQuery {
			return query.SpanTerm{Field: field, Value: k}
		}),
		Slop:    w.Distance,
		InOrder: w.Ordered,
	}

	var clause query.Query = near
	switch c.Proximity() {
	case spec.SameSentence:
		clause = query.SpanNot{Include: near, Exclude: query.SpanTerm{Field: field, Value: t.cfg.SentenceBreak}}
	case spec.SameParagraph:
		clause = query.SpanNot{Include: near, Exclude: query.SpanTerm{Field: field, Value: t.cfg.ParagraphBreak}}
	}
	return wrap(c.Relation(), []query.Query{clause})
}

func (t *Translator) field(f spec.FieldScope) string {
	if f == spec.Title {
		return t.cfg.TitleField
	}
	return t.cfg.BodyField
}

func wrap(r spec.Relation, clauses []query.Query) query.Query {
	switch r {
	case spec.Include:
		return query.Bool{Must: clauses}
	case spec.Exclude:
		return query.Bool{MustNot: clauses}
	default:
		return query.Bool{Should: clauses, MinimumShouldMatch: 1}
	}
}

var defaultTranslator = New(DefaultConfig())

// Translate compiles s with DefaultConfig.
func Translate(s spec.Spec) query.Query {
	return defaultTranslator.Translate(s)
}
