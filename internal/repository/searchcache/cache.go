// Package searchcache decorates a search executor with a Redis/Valkey result cache.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/db"
	"github.com/lvpi/lpsearch/internal/domain"
	"github.com/lvpi/lpsearch/internal/domain/search/result"
)

var cacheKeyPrefix = domain.KeyPrefix + "search_cache:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExecutor caches result pages in a key-value store.
type CachedExecutor struct {
	inner      domain.SearchExecutor
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// Compile-time check: CachedExecutor implements domain.SearchExecutor.
var _ domain.SearchExecutor = (*CachedExecutor)(nil)

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.SearchExecutor,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedExecutor {
	return &CachedExecutor{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Execute returns a cached page or calls the inner executor.
// Cache failures are logged and never fail the search.
func (c *CachedExecutor) Execute(ctx context.Context, ps domain.PreparedSearch) (result.Page, error) {
	key := c.cacheKey(ps)

	if page, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return page, nil
	}

	c.incCache("miss")

	page, err := c.inner.Execute(ctx, ps)
	if err != nil {
		return result.Page{}, fmt.Errorf("execute search: %w", err)
	}

	c.putToCache(ctx, key, page)
	return page, nil
}

func (c *CachedExecutor) incCache(outcome string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(outcome).Inc()
	}
}

// cacheKey hashes the index name and body; page and size are part of the body.
func (c *CachedExecutor) cacheKey(ps domain.PreparedSearch) string {
	h := sha256.New()
	h.Write([]byte(ps.Index))
	h.Write([]byte{0})
	h.Write(ps.Body)
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedExecutor) getFromCache(ctx context.Context, key string) (result.Page, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search", zap.String("key", key), zap.Error(err))
		}
		return result.Page{}, false
	}
	if len(data) == 0 {
		return result.Page{}, false
	}

	page, err := decodePage(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached search", zap.String("key", key), zap.Error(err))
		return result.Page{}, false
	}

	return page, true
}

func (c *CachedExecutor) putToCache(ctx context.Context, key string, page result.Page) {
	data, err := encodePage(page)
	if err != nil {
		c.logger.Warn("Failed to encode search for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search", zap.String("key", key), zap.Error(err))
	}
}

// cachedPage is the JSON form of result.Page stored in the cache.
type cachedPage struct {
	Total  int64         `json:"total"`
	Took   int64         `json:"took"`
	Page   int           `json:"page"`
	Size   int           `json:"size"`
	Hits   []cachedHit   `json:"hits"`
	Facets []cachedFacet `json:"facets,omitempty"`
}

type cachedHit struct {
	ID        string              `json:"id"`
	Score     float64             `json:"score"`
	Source    json.RawMessage     `json:"source,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

type cachedFacet struct {
	Attribute string          `json:"attribute"`
	Buckets   []result.Bucket `json:"buckets"`
}

func encodePage(p result.Page) ([]byte, error) {
	cp := cachedPage{Total: p.Total(), Took: p.Took(), Page: p.Page(), Size: p.Size()}
	for _, h := range p.Hits() {
		cp.Hits = append(cp.Hits, cachedHit{ID: h.ID(), Score: h.Score(), Source: h.Source(), Highlight: h.Highlight()})
	}
	for _, f := range p.Facets() {
		cp.Facets = append(cp.Facets, cachedFacet{Attribute: f.Attribute(), Buckets: f.Buckets()})
	}
	return json.Marshal(cp)
}

func decodePage(data []byte) (result.Page, error) {
	var cp cachedPage
	if err := json.Unmarshal(data, &cp); err != nil {
		return result.Page{}, fmt.Errorf("unmarshal cached page: %w", err)
	}
	hits := make([]result.Hit, len(cp.Hits))
	for i, h := range cp.Hits {
		hits[i] = result.NewHit(h.ID, h.Score, h.Source, h.Highlight)
	}
	facets := make([]result.Facet, len(cp.Facets))
	for i, f := range cp.Facets {
		facets[i] = result.NewFacet(f.Attribute, f.Buckets)
	}
	return result.NewPage(cp.Total, cp.Took, cp.Page, cp.Size, hits, facets), nil
}
