package routecache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/watnow/routeloop/internal/apperr"
	"github.com/watnow/routeloop/internal/model"
	"github.com/watnow/routeloop/internal/opmetrics"
)

// PoiCache is the original_source's second cache tier (§9 supplement): the
// raw find_within_radius POI pool cached separately from the finished-route
// cache, under its own longer-TTL bucketed key namespace
// (poi:region:{lat3}:{lng3}:{radius}:{cats|*}). It mirrors Cache's shape
// exactly, just over []model.Poi instead of []model.Route, since the two
// payload types can't share one interface without an interface{} escape
// hatch this design doesn't otherwise need.
type PoiCache interface {
	Get(ctx context.Context, key string) ([]model.Poi, bool, error)
	Put(ctx context.Context, key string, pois []model.Poi, ttl time.Duration) error
}

// MemoryPoiCache is the in-process fallback tier, identical in shape to
// MemoryCache.
type MemoryPoiCache struct {
	mu    sync.Mutex
	store *lru.Cache[string, poiEntry]
}

type poiEntry struct {
	pois      []model.Poi
	expiresAt time.Time
}

func NewMemoryPoiCache(maxEntries int) *MemoryPoiCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	store, _ := lru.New[string, poiEntry](maxEntries)
	return &MemoryPoiCache{store: store}
}

func (c *MemoryPoiCache) Get(ctx context.Context, key string) ([]model.Poi, bool, error) {
	c.mu.Lock()
	entry, ok := c.store.Get(key)
	c.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		c.store.Remove(key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.pois, true, nil
}

func (c *MemoryPoiCache) Put(ctx context.Context, key string, pois []model.Poi, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Add(key, poiEntry{pois: pois, expiresAt: time.Now().Add(ttl)})
	return nil
}

// RedisPoiCache is the external tier, identical in shape to RedisCache.
type RedisPoiCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisPoiCache(client *redis.Client, logger *zap.Logger) *RedisPoiCache {
	return &RedisPoiCache{client: client, logger: logger}
}

func (c *RedisPoiCache) Get(ctx context.Context, key string) ([]model.Poi, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Wrap(apperr.KindStorage, "redis poi-region get failed", err)
	}
	var pois []model.Poi
	if err := json.Unmarshal(raw, &pois); err != nil {
		return nil, false, apperr.Wrap(apperr.KindStorage, "redis poi-region entry unmarshal failed", err)
	}
	return pois, true, nil
}

func (c *RedisPoiCache) Put(ctx context.Context, key string, pois []model.Poi, ttl time.Duration) error {
	raw, err := json.Marshal(pois)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "redis poi-region entry marshal failed", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KindStorage, "redis poi-region set failed", err)
	}
	return nil
}

// HierarchicalPoiCache composes external/fallback exactly as
// HierarchicalCache does for routes.
type HierarchicalPoiCache struct {
	external PoiCache
	fallback *MemoryPoiCache
	logger   *zap.Logger
}

func NewHierarchicalPoiCache(external PoiCache, fallback *MemoryPoiCache, logger *zap.Logger) *HierarchicalPoiCache {
	return &HierarchicalPoiCache{external: external, fallback: fallback, logger: logger}
}

func (c *HierarchicalPoiCache) Get(ctx context.Context, key string) ([]model.Poi, bool, error) {
	if c.external != nil {
		pois, hit, err := c.external.Get(ctx, key)
		if err == nil {
			if hit {
				opmetrics.CacheHitsTotal.WithLabelValues("poi_region:external").Inc()
				return pois, true, nil
			}
			opmetrics.CacheMissesTotal.WithLabelValues("poi_region:external").Inc()
			return c.fallback.Get(ctx, key)
		}
		c.logger.Warn("external poi-region cache tier unavailable, falling back to in-process cache", zap.Error(err))
	}
	pois, hit, err := c.fallback.Get(ctx, key)
	if hit {
		opmetrics.CacheHitsTotal.WithLabelValues("poi_region:memory").Inc()
	} else {
		opmetrics.CacheMissesTotal.WithLabelValues("poi_region:memory").Inc()
	}
	return pois, hit, err
}

func (c *HierarchicalPoiCache) Put(ctx context.Context, key string, pois []model.Poi, ttl time.Duration) error {
	if c.external != nil {
		if err := c.external.Put(ctx, key, pois, ttl); err != nil {
			c.logger.Warn("external poi-region cache tier write failed, writing to in-process cache only", zap.Error(err))
		}
	}
	return c.fallback.Put(ctx, key, pois, ttl)
}
