package routecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watnow/routeloop/internal/model"
)

func TestMemoryCache_PutThenGet(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()
	routes := []model.Route{{ID: "r1"}}

	require.NoError(t, c.Put(ctx, "k1", routes, time.Minute))

	got, hit, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, routes, got)
}

func TestMemoryCache_MissOnUnknownKey(t *testing.T) {
	c := NewMemoryCache(10)
	_, hit, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_ExpiresAfterTTL(t *testing.T) {
	c := NewMemoryCache(10)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "k1", []model.Route{{ID: "r1"}}, -time.Second))

	_, hit, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_EvictsBeyondCapacity(t *testing.T) {
	c := NewMemoryCache(1)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "k1", []model.Route{{ID: "r1"}}, time.Minute))
	require.NoError(t, c.Put(ctx, "k2", []model.Route{{ID: "r2"}}, time.Minute))

	_, hit, _ := c.Get(ctx, "k1")
	assert.False(t, hit, "k1 should have been evicted once capacity 1 is exceeded")

	_, hit, _ = c.Get(ctx, "k2")
	assert.True(t, hit)
}

func TestMemoryPoiCache_PutThenGet(t *testing.T) {
	c := NewMemoryPoiCache(10)
	ctx := context.Background()
	pois := []model.Poi{{ID: "p1", Name: "A"}}

	require.NoError(t, c.Put(ctx, "region1", pois, time.Minute))

	got, hit, err := c.Get(ctx, "region1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, pois, got)
}

func TestMemoryPoiCache_ExpiresAfterTTL(t *testing.T) {
	c := NewMemoryPoiCache(10)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "region1", []model.Poi{{ID: "p1"}}, -time.Second))

	_, hit, err := c.Get(ctx, "region1")
	require.NoError(t, err)
	assert.False(t, hit)
}
