// Package poirepo defines the POI repository capability interface (§4.1)
// and its two concrete backends: PostGIS and embedded SQLite.
package poirepo

import (
	"context"

	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// Repository is the capability set the generator depends on. Both
// backends implement it identically; the generator never branches on
// which variant is active.
type Repository interface {
	// FindWithinRadius returns POIs within radiusMeters great-circle
	// distance of center, ascending by distance, honoring categories
	// (when non-empty) and limit.
	FindWithinRadius(ctx context.Context, center geo.Coordinates, radiusMeters float64, categories []model.PoiCategory, limit int) ([]model.Poi, error)

	// FindInBbox returns POIs inside the inclusive rectangle, honoring
	// categories (when non-empty) and limit. Ordering is
	// implementation-defined but stable within a call.
	FindInBbox(ctx context.Context, box geo.BoundingBox, categories []model.PoiCategory, limit int) ([]model.Poi, error)

	// Insert persists a new POI, returning its id. Used only by
	// ingestion and health probes, never on the generator hot path.
	Insert(ctx context.Context, poi model.Poi) (string, error)

	// Count returns the total number of stored POIs.
	Count(ctx context.Context) (int64, error)
}
