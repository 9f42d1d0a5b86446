package routecache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/watnow/routeloop/internal/model"
	"github.com/watnow/routeloop/internal/opmetrics"
)

// HierarchicalCache composes an external tier with an in-process fallback.
// When the external tier errors, the fallback is not optional: the design
// states silently degrading to the in-process tier is the intended
// behavior, not an exceptional path.
type HierarchicalCache struct {
	external Cache
	fallback *MemoryCache
	logger   *zap.Logger
	tierName string
}

// NewHierarchicalCache wires external (may be nil, e.g. when no Redis
// address is configured) in front of fallback.
func NewHierarchicalCache(external Cache, fallback *MemoryCache, tierName string, logger *zap.Logger) *HierarchicalCache {
	return &HierarchicalCache{external: external, fallback: fallback, logger: logger, tierName: tierName}
}

func (c *HierarchicalCache) Get(ctx context.Context, key string) ([]model.Route, bool, error) {
	if c.external != nil {
		routes, hit, err := c.external.Get(ctx, key)
		if err == nil {
			if hit {
				opmetrics.CacheHitsTotal.WithLabelValues(c.tierName + ":external").Inc()
			} else {
				opmetrics.CacheMissesTotal.WithLabelValues(c.tierName + ":external").Inc()
			}
			if hit {
				return routes, true, nil
			}
			return c.fallback.Get(ctx, key)
		}
		c.logger.Warn("external cache tier unavailable, falling back to in-process cache",
			zap.String("tier", c.tierName), zap.Error(err))
	}
	routes, hit, err := c.fallback.Get(ctx, key)
	if hit {
		opmetrics.CacheHitsTotal.WithLabelValues(c.tierName + ":memory").Inc()
	} else {
		opmetrics.CacheMissesTotal.WithLabelValues(c.tierName + ":memory").Inc()
	}
	return routes, hit, err
}

func (c *HierarchicalCache) Put(ctx context.Context, key string, routes []model.Route, ttl time.Duration) error {
	if c.external != nil {
		if err := c.external.Put(ctx, key, routes, ttl); err != nil {
			c.logger.Warn("external cache tier write failed, writing to in-process cache only",
				zap.String("tier", c.tierName), zap.Error(err))
		}
	}
	return c.fallback.Put(ctx, key, routes, ttl)
}
