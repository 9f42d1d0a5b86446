// Package routescore implements the two final-scoring strategy variants
// of §4.6: V1 (distance accuracy, POI count, POI quality, category
// diversity) and V2 (V1 plus shape-quality adjustments from §4.8's
// metrics). The strategy is a construction-time choice of the generator
// and must not change within a single request.
package routescore

import (
	"math"

	"github.com/watnow/routeloop/internal/model"
)

// Strategy scores a finished route against its original request target.
// Implementations are pure functions of the route (and its already
// attached metrics, for V2).
type Strategy interface {
	Score(route model.Route, targetKm float64, hiddenGems bool) float64
}

// V1 is the default scoring strategy: distance accuracy, POI count, POI
// quality, and category diversity, each contributing a capped share of
// the [0, 10] total.
type V1 struct{}

func (V1) Score(route model.Route, targetKm float64, hiddenGems bool) float64 {
	return clamp010(baseScore(route, targetKm, hiddenGems))
}

// V2 additionally rewards circular, convex shapes and penalizes
// self-overlap, using the route's attached RouteMetrics.
type V2 struct{}

func (V2) Score(route model.Route, targetKm float64, hiddenGems bool) float64 {
	total := baseScore(route, targetKm, hiddenGems)
	if route.Metrics == nil {
		return clamp010(total)
	}
	if route.Metrics.Circularity >= 0.75 {
		total += 1.0
	}
	if route.Metrics.Convexity >= 0.80 {
		total += 0.5
	}
	total -= 1.5 * route.Metrics.PathOverlapPercent
	return clamp010(total)
}

// baseScore computes the four shared §4.6 terms common to V1 and V2,
// unclamped: V2 layers its shape bonuses/penalty on top before the single
// clamp in Score, so a route already at 10 on the base terms can still
// receive the circularity/convexity bonus room to offset the overlap
// penalty.
func baseScore(route model.Route, targetKm float64, hiddenGems bool) float64 {
	distanceAccuracy := distanceAccuracyTerm(route.DistanceKm, targetKm)
	poiCount := math.Min(float64(len(route.Pois)), 3)
	poiQuality := 2 * meanPoiQuality(route, hiddenGems)
	diversity := 2 * math.Min(1, float64(route.UniqueCategories())/3)
	return distanceAccuracy + poiCount + poiQuality + diversity
}

// distanceAccuracyTerm is 3*(1 - min(1, |actual-target|/target)).
func distanceAccuracyTerm(actualKm, targetKm float64) float64 {
	if targetKm <= 0 {
		return 0
	}
	deviation := math.Abs(actualKm-targetKm) / targetKm
	return 3 * (1 - math.Min(1, deviation))
}

// meanPoiQuality is §4.6's POI-quality term: model.Route.MeanPopularity,
// inverted when hidden-gems is active, mirroring the waypoint engine's own
// quality scoring (§4.4).
func meanPoiQuality(route model.Route, hiddenGems bool) float64 {
	if len(route.Pois) == 0 {
		return 0
	}
	mean := route.MeanPopularity()
	if hiddenGems {
		return 1 - mean
	}
	return mean
}

func clamp010(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// ForName resolves the construction-time strategy choice from a config
// string ("v1" default, "v2"), used by the generator's constructor.
func ForName(name string) Strategy {
	if name == "v2" {
		return V2{}
	}
	return V1{}
}
