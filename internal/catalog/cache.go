package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	pkgerrors "github.com/jmcastellano/storefront-backend/pkg/errors"
	"github.com/jmcastellano/storefront-backend/pkg/logger"
	"github.com/jmcastellano/storefront-backend/pkg/redis"
)

// Invalidation scopes. Any scope bumps the shared generation; per-scope
// counters exist so invalidation traffic stays attributable.
const (
	ScopeProducts       = "products"
	ScopeCategories     = "categories"
	ScopeBrands         = "brands"
	ScopeCollections    = "collections"
	ScopeSpecifications = "specifications"
)

const (
	generationKey   = "catalog:gen"
	scopeKeyPrefix  = "catalog:gen:"
	searchKeyPrefix = "catalog:search:"
)

// ResultCache stores computed search pages. Implementations must never fail
// a read path: lookup errors degrade to misses.
type ResultCache interface {
	Get(ctx context.Context, params SearchParams) (*SearchResult, bool)
	Set(ctx context.Context, params SearchParams, result *SearchResult)
	Invalidate(ctx context.Context, scope string) error
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// RedisResultCache keys entries by a generation counter plus the normalized
// parameter hash. Invalidation bumps the counter, which orphans every prior
// entry at once; orphans expire with their TTL.
type RedisResultCache struct {
	store cacheStore
	ttl   time.Duration
	log   *logger.Logger
}

func NewRedisResultCache(store cacheStore, ttl time.Duration, log *logger.Logger) *RedisResultCache {
	return &RedisResultCache{store: store, ttl: ttl, log: log}
}

func (c *RedisResultCache) key(ctx context.Context, params SearchParams) (string, error) {
	gen, err := c.store.Get(ctx, generationKey)
	if err != nil {
		if pkgerrors.Is(err, redis.ErrNotFound) {
			gen = "0"
		} else {
			return "", err
		}
	}
	sum := sha256.Sum256([]byte(params.CacheKey()))
	return searchKeyPrefix + gen + ":" + hex.EncodeToString(sum[:16]), nil
}

func (c *RedisResultCache) Get(ctx context.Context, params SearchParams) (*SearchResult, bool) {
	key, err := c.key(ctx, params)
	if err != nil {
		c.log.Warn(ctx, fmt.Sprintf("result cache key lookup failed: %v", err))
		return nil, false
	}

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgerrors.Is(err, redis.ErrNotFound) {
			c.log.Warn(ctx, fmt.Sprintf("result cache read failed: %v", err))
		}
		return nil, false
	}

	var result SearchResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.log.Warn(ctx, fmt.Sprintf("result cache entry corrupt: %v", err))
		return nil, false
	}
	return &result, true
}

func (c *RedisResultCache) Set(ctx context.Context, params SearchParams, result *SearchResult) {
	key, err := c.key(ctx, params)
	if err != nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.log.Warn(ctx, fmt.Sprintf("result cache write failed: %v", err))
	}
}

// Invalidate drops all cached search results. Callers invoke it after any
// catalog mutation; stale windows are not bounded by TTL alone.
func (c *RedisResultCache) Invalidate(ctx context.Context, scope string) error {
	if _, err := c.store.Incr(ctx, scopeKeyPrefix+scope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump scope generation")
	}
	gen, err := c.store.Incr(ctx, generationKey)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump cache generation")
	}
	ctx = c.log.WithFields(ctx, map[string]any{
		"scope":      scope,
		"generation": strconv.FormatInt(gen, 10),
	})
	c.log.Info(ctx, "search cache invalidated")
	return nil
}

// NoopResultCache disables caching. Used when the cache feature flag is off
// or redis is not configured.
type NoopResultCache struct{}

func (NoopResultCache) Get(ctx context.Context, params SearchParams) (*SearchResult, bool) {
	return nil, false
}

func (NoopResultCache) Set(ctx context.Context, params SearchParams, result *SearchResult) {}

func (NoopResultCache) Invalidate(ctx context.Context, scope string) error { return nil }
