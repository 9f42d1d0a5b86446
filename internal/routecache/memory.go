package routecache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/watnow/routeloop/internal/model"
)

// MemoryCache is the in-process fallback tier used when the external
// backend is unavailable, per §4.2: a hard entry bound (default 1 000)
// with wall-clock expiry checked on read, no proactive eviction beyond
// the LRU's own capacity-driven eviction.
type MemoryCache struct {
	mu    sync.Mutex
	store *lru.Cache[string, memoryEntry]
}

type memoryEntry struct {
	routes    []model.Route
	expiresAt time.Time
}

// NewMemoryCache builds a bounded LRU cache with maxEntries capacity
// (default 1000, per §4.2).
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	store, _ := lru.New[string, memoryEntry](maxEntries)
	return &MemoryCache{store: store}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]model.Route, bool, error) {
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
	return entry.routes, true, nil
}

func (c *MemoryCache) Put(ctx context.Context, key string, routes []model.Route, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Add(key, memoryEntry{routes: routes, expiresAt: time.Now().Add(ttl)})
	return nil
}
