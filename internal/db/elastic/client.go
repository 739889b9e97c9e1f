// Package elastic implements db.SearchEngine with the official Elasticsearch client.
package elastic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/tidwall/gjson"

	"github.com/lvpi/lpsearch/internal/db"
)

// Compile-time check: Client implements db.SearchEngine.
var _ db.SearchEngine = (*Client)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	Addrs    []string
	Username string
	Password string
	APIKey   string
	// Transport overrides the HTTP transport (tests, custom TLS).
	Transport http.RoundTripper
}

// Client runs search requests against Elasticsearch.
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates an Elasticsearch client. No request is made until first use.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Client{es: es}, nil
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: &db.ResponseError{Status: res.StatusCode, Reason: res.Status()}}
	}
	return nil
}

// Search posts body to index/_search and returns the raw response body.
// A missing index yields db.ErrIndexNotFound; other engine errors yield *db.ResponseError.
func (c *Client) Search(ctx context.Context, index string, body []byte) ([]byte, error) {
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("read response: %w", err)}
	}
	if res.IsError() {
		return nil, &db.Error{Op: db.OpSearch, Err: parseError(res.StatusCode, data)}
	}
	return data, nil
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := c.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// parseError extracts the root cause from an Elasticsearch error body.
func parseError(status int, body []byte) error {
	errType := gjson.GetBytes(body, "error.root_cause.0.type").String()
	if errType == "" {
		errType = gjson.GetBytes(body, "error.type").String()
	}
	reason := gjson.GetBytes(body, "error.root_cause.0.reason").String()
	if reason == "" {
		reason = gjson.GetBytes(body, "error.reason").String()
	}
	if reason == "" {
		reason = http.StatusText(status)
	}
	if errType == "index_not_found_exception" {
		return fmt.Errorf("%w: %s", db.ErrIndexNotFound, reason)
	}
	return &db.ResponseError{Status: status, Type: errType, Reason: reason}
}
