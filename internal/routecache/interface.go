// Package routecache implements the content-addressed route cache (§4.2):
// a capability interface, an external Redis-backed tier, and a bounded
// in-process LRU fallback tier composed behind a single handle.
package routecache

import (
	"context"
	"time"

	"github.com/watnow/routeloop/internal/model"
)

// Cache is the capability the generator depends on. get/put must support
// concurrent callers without external locking; a race between two
// concurrent puts to the same key resolves last-write-wins, which is
// acceptable since this is an optimization cache, not a dedup barrier.
type Cache interface {
	Get(ctx context.Context, key string) ([]model.Route, bool, error)
	Put(ctx context.Context, key string, routes []model.Route, ttl time.Duration) error
}
