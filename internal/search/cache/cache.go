// Package cache provides a Redis-backed cache of search responses keyed on
// the normalised query parameters, with singleflight deduplication so a cold
// popular query is computed once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/oooAHOYooo/ahoy-search/internal/index/analyzer"
	"github.com/oooAHOYooo/ahoy-search/internal/search"
	"github.com/oooAHOYooo/ahoy-search/pkg/config"
	pkgredis "github.com/oooAHOYooo/ahoy-search/pkg/redis"
	"github.com/oooAHOYooo/ahoy-search/pkg/resilience"
)

const keyPrefix = "search:"

// QueryCache caches search Responses in Redis. A circuit breaker keeps a
// down Redis from slowing every request to its dial timeout.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a QueryCache on top of an established Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("query-cache", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached Response for req, if present.
func (c *QueryCache) Get(ctx context.Context, req search.Request) (*search.Response, bool) {
	key := c.buildKey(req)
	var data string
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.client.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			return nil
		}
		return err
	})
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	if data == "" {
		c.misses.Add(1)
		return nil, false
	}
	var resp search.Response
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", req.Query, "key", key)
	return &resp, true
}

// Set stores a Response with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, req search.Request, resp *search.Response) {
	key := c.buildKey(req)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, data, c.cfg.CacheTTL)
	}); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached Response or computes and stores it,
// collapsing concurrent identical requests into one computation. The bool
// reports whether the value came from cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	req search.Request,
	computeFn func() (*search.Response, error),
) (*search.Response, bool, error) {
	if resp, ok := c.Get(ctx, req); ok {
		return resp, true, nil
	}
	key := c.buildKey(req)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if resp, ok := c.Get(ctx, req); ok {
			return resp, nil
		}
		resp, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, req, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*search.Response), false, nil
}

// Invalidate removes all cached search responses. Called after each index
// rebuild so stale generations never serve.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	pattern := keyPrefix + "*"
	deleted, err := c.client.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the in-process hit and miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the normalised request so equivalent queries (term order,
// casing, accents) share an entry while every paging or filter variation
// gets its own.
func (c *QueryCache) buildKey(req search.Request) string {
	terms := analyzer.Tokenize(req.Query)
	sort.Strings(terms)
	kinds := append([]string(nil), req.Kinds...)
	sort.Strings(kinds)

	raw := fmt.Sprintf("%s|kinds=%s|sort=%s|limit=%d|offset=%d",
		strings.Join(terms, ","),
		strings.Join(kinds, ","),
		req.Sort,
		req.Limit,
		req.Offset,
	)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
