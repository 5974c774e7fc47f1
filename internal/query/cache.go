package query

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

	"github.com/scisearch/engine/pkg/config"
	pkgredis "github.com/scisearch/engine/pkg/redis"
)

const cacheKeyPrefix = "search:"

// Cache wraps a Redis-backed SearchResponse cache with singleflight
// de-duplication, so concurrent requests for an identical query compute the
// result once (spec.md §6's cache hit/miss metrics; supplemented query
// analytics).
type Cache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache wraps an existing Redis client.
func NewCache(client *pkgredis.Client, cfg config.RedisConfig) *Cache {
	return &Cache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns a cached response for the given query/mode/semantic
// combination, if present.
func (c *Cache) Get(ctx context.Context, q string, mode Mode, semantic bool) (*SearchResponse, bool) {
	key := c.buildKey(q, mode, semantic)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if pkgredis.IsNilError(err) {
			c.misses.Add(1)
			return nil, false
		}
		c.logger.Error("cache get failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	var resp SearchResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &resp, true
}

// Set stores a response under its query/mode/semantic key with the
// configured TTL.
func (c *Cache) Set(ctx context.Context, q string, mode Mode, semantic bool, resp *SearchResponse) {
	key := c.buildKey(q, mode, semantic)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response if present; otherwise it calls
// computeFn exactly once per key even under concurrent callers, caches the
// result, and returns it. The bool return reports whether the value came
// from cache.
func (c *Cache) GetOrCompute(ctx context.Context, q string, mode Mode, semantic bool, computeFn func() (*SearchResponse, error)) (*SearchResponse, bool, error) {
	if resp, ok := c.Get(ctx, q, mode, semantic); ok {
		return resp, true, nil
	}
	key := c.buildKey(q, mode, semantic)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if resp, ok := c.Get(ctx, q, mode, semantic); ok {
			return resp, nil
		}
		resp, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, q, mode, semantic, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*SearchResponse), false, nil
}

// Invalidate flushes every cached search result, called after the
// incremental indexer makes new documents visible so stale result sets
// cannot outlive the data they were computed from.
func (c *Cache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("query: invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit/miss counts for the metrics exporter.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) buildKey(q string, mode Mode, semantic bool) string {
	normalized := normalizeForCache(q, mode)
	raw := fmt.Sprintf("%s:semantic=%v", normalized, semantic)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash[:16])
}

// normalizeForCache reduces a query to a mode-qualified, sorted term list so
// that "vaccine covid" and "covid vaccine" hit the same cache entry
// regardless of the caller's word order, matching the way Parse treats them
// as equivalent term sets.
func normalizeForCache(q string, mode Mode) string {
	plan := Parse(q)
	terms := strings.Fields(strings.ToLower(plan.RawQuery))
	sort.Strings(terms)
	excludes := append([]string(nil), plan.ExcludeWords...)
	sort.Strings(excludes)

	effectiveMode := mode
	if hasExplicitOperator(q) {
		effectiveMode = plan.Mode
	}

	parts := []string{string(effectiveMode), strings.Join(terms, ",")}
	if len(excludes) > 0 {
		parts = append(parts, "not:"+strings.Join(excludes, ","))
	}
	return strings.Join(parts, "|")
}
