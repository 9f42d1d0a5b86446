package model

import (
	"time"

	"github.com/watnow/routeloop/internal/geo"
)

// RoutePoi is a waypoint actually used to build the route, tagged with its
// position and distance along the path.
type RoutePoi struct {
	Poi                 Poi
	OrderInRoute        int
	DistanceFromStartKm float64
}

// SnappedPoi is a POI found near the route polyline during the snapping
// pass, not used as a waypoint.
type SnappedPoi struct {
	Poi               Poi
	DistanceFromPathM float64
	ArcLengthKm       float64
}

// RouteMetrics holds the pure shape/density/diversity scores computed once
// per finished route (§4.8).
type RouteMetrics struct {
	Circularity        float64
	Convexity          float64
	PathOverlapPercent float64
	PoiDensityPerKm    float64
	CategoryEntropy    float64
	LandmarkCoverage   float64
	DensityContext     DensityContext
}

// DensityContext buckets POI density per km into a coarse label.
type DensityContext string

const (
	DensitySparse   DensityContext = "sparse"
	DensityModerate DensityContext = "moderate"
	DensityDense    DensityContext = "dense"
)

// ClassifyDensity buckets a POI-density-per-km value per §4.8.
func ClassifyDensity(poiPerKm float64) DensityContext {
	switch {
	case poiPerKm < 0.5:
		return DensitySparse
	case poiPerKm < 1.5:
		return DensityModerate
	default:
		return DensityDense
	}
}

// Route is a produced loop route.
type Route struct {
	ID              string
	DistanceKm      float64
	DurationMinutes int
	ElevationGainM  *float64
	Polyline        geo.Polyline
	Pois            []RoutePoi
	SnappedPois     []SnappedPoi
	Score           float64
	Metrics         *RouteMetrics
	IsFallback      bool
	CreatedAt       time.Time
}

// UniqueCategories returns the count of distinct categories across the
// route's waypoints and snapped POIs, used by final scoring (§4.6) and
// category-entropy (§4.8).
func (r Route) UniqueCategories() int {
	seen := make(map[PoiCategory]struct{})
	for _, wp := range r.Pois {
		seen[wp.Poi.Category] = struct{}{}
	}
	for _, sp := range r.SnappedPois {
		seen[sp.Poi.Category] = struct{}{}
	}
	return len(seen)
}

// MeanPopularity returns the mean popularity/100 across the route's
// waypoints only, as used by §4.6's POI-quality term.
func (r Route) MeanPopularity() float64 {
	if len(r.Pois) == 0 {
		return 0
	}
	var sum float64
	for _, wp := range r.Pois {
		sum += float64(wp.Poi.Popularity) / 100.0
	}
	return sum / float64(len(r.Pois))
}

// ContainsPoiID reports whether id appears among the route's waypoints.
func (r Route) ContainsPoiID(id string) bool {
	for _, wp := range r.Pois {
		if wp.Poi.ID == id {
			return true
		}
	}
	return false
}
