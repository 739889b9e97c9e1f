package search

import (
	"context"
	"testing"

	"github.com/lvpi/lpsearch/internal/domain/search/filter"
	"github.com/lvpi/lpsearch/internal/domain/search/request"
	"github.com/lvpi/lpsearch/internal/domain/search/spec"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, index string, body []byte) ([]byte, error)
}

func (m *mockStore) Search(ctx context.Context, index string, body []byte) ([]byte, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body)
	}
	return []byte(`{"took":1,"hits":{"total":{"value":0},"hits":[]}}`), nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, DefaultSettings()), ms
}

func mustRequest(t *testing.T, s spec.Spec, conds []filter.Condition, page, size int, highlight bool) request.Request {
	t.Helper()
	e, err := filter.NewExpression(conds)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	r, err := request.New(s, e, page, size, highlight)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}

func mustTerms(t *testing.T, attr string, values ...string) filter.Condition {
	t.Helper()
	c, err := filter.NewTerms(attr, values)
	if err != nil {
		t.Fatalf("NewTerms: %v", err)
	}
	return c
}
