package lpsearch

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	esAddrs    []string
	esUsername string
	esPassword string
	esAPIKey   string
	transport  http.RoundTripper
	index      string

	cacheDriver   string // "redis" or "valkey"
	cacheAddr     string
	cachePassword string
	cacheTTL      time.Duration

	titleField     string
	bodyField      string
	titleBoost     float64
	sentenceBreak  string
	paragraphBreak string

	readinessTimeout time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithElasticsearch sets the cluster addresses, e.g. "http://localhost:9200".
func WithElasticsearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.esAddrs = addrs
	})
}

// WithBasicAuth authenticates against Elasticsearch with a username and password.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.esUsername = username
		c.esPassword = password
	})
}

// WithAPIKey authenticates against Elasticsearch with an encoded API key.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.esAPIKey = key
	})
}

// WithTransport overrides the HTTP transport used to reach Elasticsearch.
func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithIndex sets the searched index. Default: "books".
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.index = name
	})
}

// WithCache caches result pages in Redis or Valkey for ttl.
func WithCache(driver, addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = driver
		c.cacheAddr = addr
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithFields names the title and body fields and the title boost used in
// simple title-and-body searches.
func WithFields(title, body string, titleBoost float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.titleField = title
		c.bodyField = body
		c.titleBoost = titleBoost
	})
}

// WithBoundaries sets the tokens that separate sentences and paragraphs in the body field.
func WithBoundaries(sentence, paragraph string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sentenceBreak = sentence
		c.paragraphBreak = paragraph
	})
}

// WithReadinessTimeout bounds how long New waits for the backends. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger sets the logger for SDK operations.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics with the given registerer.
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
