package routecache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/watnow/routeloop/internal/apperr"
	"github.com/watnow/routeloop/internal/model"
)

// RedisCache is the production cache tier, grounded on the corpus's
// redis.Nil-as-cache-miss idiom and typed Get/Set-with-TTL wrapper.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]model.Route, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Wrap(apperr.KindStorage, "redis get failed", err)
	}

	var routes []model.Route
	if err := json.Unmarshal(raw, &routes); err != nil {
		return nil, false, apperr.Wrap(apperr.KindStorage, "redis cache entry unmarshal failed", err)
	}
	return routes, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, routes []model.Route, ttl time.Duration) error {
	raw, err := json.Marshal(routes)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "redis cache entry marshal failed", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KindStorage, "redis set failed", err)
	}
	return nil
}
