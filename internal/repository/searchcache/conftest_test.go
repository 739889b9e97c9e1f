package searchcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/db"
	"github.com/lvpi/lpsearch/internal/domain"
	"github.com/lvpi/lpsearch/internal/domain/search/result"
)

type mockExecutor struct {
	page  result.Page
	err   error
	calls int
}

func (m *mockExecutor) Execute(_ context.Context, _ domain.PreparedSearch) (result.Page, error) {
	m.calls++
	return m.page, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedExecutor(t *testing.T, inner *mockExecutor) (*CachedExecutor, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ce := New(inner, ms, time.Minute, nil, zap.NewNop())
	return ce, ms
}

func samplePage() result.Page {
	return result.NewPage(42, 7, 1, 8,
		[]result.Hit{result.NewHit("s-1", 3.2, []byte(`{"book_title":"合同法"}`),
			map[string][]string{"section_text": {"<em>合同</em>"}})},
		[]result.Facet{result.NewFacet("publisher", []result.Bucket{{Value: "法律出版社", Count: 30}})},
	)
}
