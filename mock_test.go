package lpsearch

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeEngine implements db.SearchEngine for tests.
type fakeEngine struct {
	mu       sync.Mutex
	index    string
	body     []byte
	calls    int
	response []byte
	err      error
}

func (f *fakeEngine) Ping(context.Context) error { return nil }

func (f *fakeEngine) WaitForReady(context.Context, time.Duration) error { return nil }

func (f *fakeEngine) Search(_ context.Context, index string, body []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.index = index
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	if f.response != nil {
		return f.response, nil
	}
	return []byte(sampleResponse), nil
}

const sampleResponse = `{
	"took": 4,
	"hits": {
		"total": {"value": 17},
		"hits": [
			{"_id": "s-1", "_score": 2.5, "_source": {"book_title": "合同法概论"},
			 "highlight": {"book_title": ["<em>合同</em>法概论"]}}
		]
	},
	"aggregations": {
		"publisher": {"buckets": [{"key": "法律出版社", "doc_count": 9}]}
	}
}`

func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeEngine) {
	t.Helper()
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	engine := &fakeEngine{}
	c, err := wireClient(engine, nil, cfg)
	if err != nil {
		t.Fatalf("wireClient: %v", err)
	}
	return c, engine
}
