// Package filter models facet refinements: the attribute values a user picked
// from the facet menus to narrow a search.
package filter

import (
	"fmt"

	"github.com/samber/lo"
)

// Refinement limits.
const (
	MaxConditions = 32
	MaxValues     = 64
)

// Expression is the conjunction of all refinements in a request.
// Values within one terms condition are OR-ed.
type Expression struct {
	conditions []Condition
}

// NewExpression validates and creates an Expression. Each attribute may appear once.
func NewExpression(conditions []Condition) (Expression, error) {
	if len(conditions) > MaxConditions {
		return Expression{}, fmt.Errorf("too many refinements (max %d)", MaxConditions)
	}
	seen := make(map[string]struct{}, len(conditions))
	for _, c := range conditions {
		if _, dup := seen[c.attribute]; dup {
			return Expression{}, fmt.Errorf("duplicate refinement for %q", c.attribute)
		}
		seen[c.attribute] = struct{}{}
	}
	return Expression{conditions: conditions}, nil
}

// Conditions returns the refinements in request order.
func (e Expression) Conditions() []Condition { return e.conditions }

// Attributes returns the refined attribute names.
func (e Expression) Attributes() []string {
	return lo.Map(e.conditions, func(c Condition, _ int) string { return c.attribute })
}

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }

// Condition refines one facet attribute: either a set of accepted values or a numeric range.
type Condition struct {
	attribute string
	values    []string
	rangeExpr *Range
}

// NewTerms creates a value refinement. Empty and duplicate values are dropped.
func NewTerms(attribute string, values []string) (Condition, error) {
	if attribute == "" {
		return Condition{}, fmt.Errorf("refinement attribute is required")
	}
	values = lo.Uniq(lo.Compact(values))
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for %q", attribute)
	}
	if len(values) > MaxValues {
		return Condition{}, fmt.Errorf("too many values for %q (max %d)", attribute, MaxValues)
	}
	return Condition{attribute: attribute, values: values}, nil
}

// NewRange creates a numeric range refinement.
func NewRange(attribute string, r Range) (Condition, error) {
	if attribute == "" {
		return Condition{}, fmt.Errorf("refinement attribute is required")
	}
	return Condition{attribute: attribute, rangeExpr: &r}, nil
}

// Attribute returns the facet attribute name.
func (c Condition) Attribute() string { return c.attribute }

// Values returns the accepted values.
func (c Condition) Values() []string { return c.values }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range with gte/lte boundaries, e.g. a publication year span.
type Range struct {
	gte *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range. At least one boundary is required.
func NewRangeFilter(gte, lte *float64) (Range, error) {
	if gte == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gte != nil && lte != nil && *gte > *lte {
		return Range{}, fmt.Errorf("range lower bound %g exceeds upper bound %g", *gte, *lte)
	}
	return Range{gte: gte, lte: lte}, nil
}

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
