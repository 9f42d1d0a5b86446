package routecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/watnow/routeloop/internal/model"
)

// failingExternalCache always errors, simulating an unreachable Redis tier.
type failingExternalCache struct{}

func (failingExternalCache) Get(ctx context.Context, key string) ([]model.Route, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingExternalCache) Put(ctx context.Context, key string, routes []model.Route, ttl time.Duration) error {
	return errors.New("connection refused")
}

func TestHierarchicalCache_FallsBackWhenExternalErrors(t *testing.T) {
	fallback := NewMemoryCache(10)
	cache := NewHierarchicalCache(failingExternalCache{}, fallback, "route", zap.NewNop())
	ctx := context.Background()

	routes := []model.Route{{ID: "r1"}}
	require.NoError(t, cache.Put(ctx, "k1", routes, time.Minute))

	got, hit, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, routes, got)
}

func TestHierarchicalCache_NoExternalUsesMemoryDirectly(t *testing.T) {
	fallback := NewMemoryCache(10)
	cache := NewHierarchicalCache(nil, fallback, "route", zap.NewNop())
	ctx := context.Background()

	_, hit, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, hit)
}

type recordingExternalCache struct {
	routes map[string][]model.Route
}

func (c *recordingExternalCache) Get(ctx context.Context, key string) ([]model.Route, bool, error) {
	r, ok := c.routes[key]
	return r, ok, nil
}

func (c *recordingExternalCache) Put(ctx context.Context, key string, routes []model.Route, ttl time.Duration) error {
	c.routes[key] = routes
	return nil
}

func TestHierarchicalCache_PrefersExternalHit(t *testing.T) {
	external := &recordingExternalCache{routes: map[string][]model.Route{"k1": {{ID: "external"}}}}
	fallback := NewMemoryCache(10)
	require.NoError(t, fallback.Put(context.Background(), "k1", []model.Route{{ID: "memory"}}, time.Minute))

	cache := NewHierarchicalCache(external, fallback, "route", zap.NewNop())
	got, hit, err := cache.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "external", got[0].ID)
}

func TestHierarchicalPoiCache_NoExternalUsesMemory(t *testing.T) {
	fallback := NewMemoryPoiCache(10)
	cache := NewHierarchicalPoiCache(nil, fallback, zap.NewNop())
	ctx := context.Background()

	pois := []model.Poi{{ID: "p1"}}
	require.NoError(t, cache.Put(ctx, "region1", pois, time.Minute))

	got, hit, err := cache.Get(ctx, "region1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, pois, got)
}
