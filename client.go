package lpsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/lvpi/lpsearch/internal/db"
	"github.com/lvpi/lpsearch/internal/db/elastic"
	dbRedis "github.com/lvpi/lpsearch/internal/db/redis"
	"github.com/lvpi/lpsearch/internal/domain"
	"github.com/lvpi/lpsearch/internal/domain/search/filter"
	"github.com/lvpi/lpsearch/internal/domain/search/query"
	"github.com/lvpi/lpsearch/internal/domain/search/request"
	"github.com/lvpi/lpsearch/internal/domain/search/translate"
	searchrepo "github.com/lvpi/lpsearch/internal/repository/search"
	"github.com/lvpi/lpsearch/internal/repository/searchcache"
	searchuc "github.com/lvpi/lpsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the lpsearch SDK entry point.
type Client struct {
	engine    db.SearchEngine
	store     db.Store
	searchSvc *searchuc.Service
	obs       *observer
}

// New creates a Client and waits for Elasticsearch (and the cache, if configured) to answer.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.esAddrs) == 0 {
		return nil, errors.New("lpsearch: elasticsearch address required (use WithElasticsearch)")
	}

	engine, err := elastic.NewClient(elastic.Config{
		Addrs:     cfg.esAddrs,
		Username:  cfg.esUsername,
		Password:  cfg.esPassword,
		APIKey:    cfg.esAPIKey,
		Transport: cfg.transport,
	})
	if err != nil {
		return nil, fmt.Errorf("lpsearch: %w", err)
	}

	ctx := context.Background()
	if err := engine.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		return nil, fmt.Errorf("lpsearch: elasticsearch not ready: %w", err)
	}

	var store db.Store
	if cfg.cacheAddr != "" {
		store, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("lpsearch: cache not ready: %w", err)
		}
	}

	return wireClient(engine, store, cfg)
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.cacheDriver {
	case "redis", "valkey", "":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    []string{cfg.cacheAddr},
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("lpsearch: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("lpsearch: unknown cache driver %q", cfg.cacheDriver)
	}
}

// wireClient assembles the search pipeline. store may be nil.
func wireClient(engine db.SearchEngine, store db.Store, cfg *clientConfig) (*Client, error) {
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	translator := newTranslator(cfg)

	settings := searchrepo.DefaultSettings()
	if cfg.index != "" {
		settings.Index = cfg.index
	}
	settings.MergeField = translator.Config().BodyField
	repo := searchrepo.New(engine, settings)

	var executor domain.SearchExecutor = repo
	if store != nil {
		ttl := cfg.cacheTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		executor = searchcache.New(repo, store, ttl, obs.cacheCounter(), obs.logger)
	}

	return &Client{
		engine:    engine,
		store:     store,
		searchSvc: searchuc.New(translator, repo, executor),
		obs:       obs,
	}, nil
}

func newTranslator(cfg *clientConfig) *translate.Translator {
	return translate.New(translate.Config{
		TitleField:     cfg.titleField,
		BodyField:      cfg.bodyField,
		TitleBoost:     cfg.titleBoost,
		SentenceBreak:  cfg.sentenceBreak,
		ParagraphBreak: cfg.paragraphBreak,
	})
}

// Translate compiles s offline. Only WithFields and WithBoundaries apply.
func Translate(s Spec, opts ...Option) (json.RawMessage, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	q, err := query.Marshal(newTranslator(cfg).Translate(s.domain()))
	if err != nil {
		return nil, fmt.Errorf("lpsearch: marshal query: %w", err)
	}
	return q, nil
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks that Elasticsearch answers.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.engine.Ping(ctx); err != nil {
		return fmt.Errorf("lpsearch: %w", err)
	}
	return nil
}

// Translate returns the Elasticsearch query s compiles to, without running it.
func (c *Client) Translate(s Spec) (json.RawMessage, error) {
	start := time.Now()
	q, err := c.searchSvc.Preview(s.domain())
	c.obs.observe("translate", start, err)
	if err != nil {
		return nil, fmt.Errorf("lpsearch: %w", err)
	}
	return q, nil
}

// Search runs s and returns one page of results.
func (c *Client) Search(ctx context.Context, s Spec, opts SearchOptions) (*Page, error) {
	start := time.Now()
	page, err := c.search(ctx, s, opts)
	c.obs.observe("search", start, err)
	return page, err
}

func (c *Client) search(ctx context.Context, s Spec, opts SearchOptions) (*Page, error) {
	filters, err := buildFilters(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req, err := request.New(s.domain(), filters, opts.Page, opts.Size, !opts.NoHighlight)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	page, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return nil, mapError(err)
	}
	return pageFromDomain(&page), nil
}

// buildFilters converts refinements in attribute order so equal options hit the same cache entry.
func buildFilters(opts SearchOptions) (filter.Expression, error) {
	conditions := make([]filter.Condition, 0, len(opts.Refinements)+len(opts.Ranges))

	attrs := lo.Keys(opts.Refinements)
	slices.Sort(attrs)
	for _, attr := range attrs {
		cond, err := filter.NewTerms(attr, opts.Refinements[attr])
		if err != nil {
			return filter.Expression{}, err
		}
		conditions = append(conditions, cond)
	}

	attrs = lo.Keys(opts.Ranges)
	slices.Sort(attrs)
	for _, attr := range attrs {
		r := opts.Ranges[attr]
		rng, err := filter.NewRangeFilter(r.GTE, r.LTE)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("range %q: %w", attr, err)
		}
		cond, err := filter.NewRange(attr, rng)
		if err != nil {
			return filter.Expression{}, err
		}
		conditions = append(conditions, cond)
	}

	return filter.NewExpression(conditions)
}
