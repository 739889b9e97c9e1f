package filter

import (
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestNewRangeFilter_Valid(t *testing.T) {
	tests := []struct {
		name     string
		gte, lte *float64
	}{
		{"gte only", floatPtr(2000), nil},
		{"lte only", nil, floatPtr(2020)},
		{"both", floatPtr(2000), floatPtr(2020)},
		{"single year", floatPtr(2010), floatPtr(2010)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRangeFilter(tt.gte, tt.lte)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (r.GTE() == nil) != (tt.gte == nil) {
				t.Error("GTE() mismatch")
			}
			if (r.LTE() == nil) != (tt.lte == nil) {
				t.Error("LTE() mismatch")
			}
		})
	}
}

func TestNewRangeFilter_NoBoundary(t *testing.T) {
	_, err := NewRangeFilter(nil, nil)
	if err == nil {
		t.Fatal("expected error for no boundary")
	}
	if !strings.Contains(err.Error(), "at least one") {
		t.Errorf("error = %q", err)
	}
}

func TestNewRangeFilter_Inverted(t *testing.T) {
	_, err := NewRangeFilter(floatPtr(2020), floatPtr(2000))
	if err == nil {
		t.Fatal("expected error for inverted range")
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("error = %q", err)
	}
}

func TestNewTerms(t *testing.T) {
	c, err := NewTerms("publisher", []string{"法律出版社", "", "法律出版社", "人民出版社"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Attribute() != "publisher" {
		t.Errorf("Attribute() = %q", c.Attribute())
	}
	got := c.Values()
	if len(got) != 2 || got[0] != "法律出版社" || got[1] != "人民出版社" {
		t.Errorf("Values() = %v, want deduplicated in order", got)
	}
	if c.IsRange() {
		t.Error("IsRange() = true")
	}
}

func TestNewTerms_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		attribute string
		values    []string
		want      string
	}{
		{"no attribute", "", []string{"x"}, "attribute is required"},
		{"no values", "tags", nil, "at least one value"},
		{"only empty values", "tags", []string{"", ""}, "at least one value"},
		{"too many values", "tags", manyValues(MaxValues + 1), "too many values"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTerms(tt.attribute, tt.values)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func manyValues(n int) []string {
	vs := make([]string, n)
	for i := range vs {
		vs[i] = strings.Repeat("v", i+1)
	}
	return vs
}

func TestNewRange(t *testing.T) {
	r, _ := NewRangeFilter(floatPtr(2000), nil)
	c, err := NewRange("publication_year", r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsRange() || *c.Range().GTE() != 2000 {
		t.Errorf("Range() = %+v", c.Range())
	}

	if _, err := NewRange("", r); err == nil {
		t.Error("expected error for empty attribute")
	}
}

func TestNewExpression(t *testing.T) {
	a, _ := NewTerms("publisher", []string{"x"})
	b, _ := NewTerms("tags", []string{"y"})

	e, err := NewExpression([]Condition{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.IsEmpty() {
		t.Error("IsEmpty() = true")
	}
	attrs := e.Attributes()
	if len(attrs) != 2 || attrs[0] != "publisher" || attrs[1] != "tags" {
		t.Errorf("Attributes() = %v", attrs)
	}

	empty, err := NewExpression(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !empty.IsEmpty() {
		t.Error("IsEmpty() = false for nil conditions")
	}
}

func TestNewExpression_Duplicate(t *testing.T) {
	a, _ := NewTerms("publisher", []string{"x"})
	_, err := NewExpression([]Condition{a, a})
	if err == nil {
		t.Fatal("expected error for duplicate attribute")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error = %q", err)
	}
}

func TestNewExpression_TooMany(t *testing.T) {
	conds := make([]Condition, MaxConditions+1)
	for i := range conds {
		conds[i], _ = NewTerms(strings.Repeat("a", i+1), []string{"x"})
	}
	_, err := NewExpression(conds)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "too many") {
		t.Errorf("error = %q", err)
	}
}
