package routecache

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// BuildLoopKey constructs the canonical bucketed key for a loop request,
// per the literal keyspace format in §6:
// route:loop:{lat3}:{lng3}:{dist0.5}:{mode}:{sorted_cats|*}:{gems|pop}.
// The serialization is order-independent over categories and depends only
// on the rounded numeric fields, so it is stable across process restarts.
func BuildLoopKey(start geo.Coordinates, distanceKm float64, mode model.TransportMode, categories []model.PoiCategory, hiddenGems bool) string {
	lat3 := roundTo(start.Lat(), 3)
	lng3 := roundTo(start.Lng(), 3)
	dist := roundToNearest(distanceKm, 0.5)

	catPart := "*"
	if len(categories) > 0 {
		sorted := make([]string, len(categories))
		for i, c := range categories {
			sorted[i] = string(c)
		}
		sort.Strings(sorted)
		catPart = strings.Join(sorted, ",")
	}

	gemsPart := "pop"
	if hiddenGems {
		gemsPart = "gems"
	}

	return fmt.Sprintf("route:loop:%.3f:%.3f:%.1f:%s:%s:%s", lat3, lng3, dist, mode, catPart, gemsPart)
}

// BuildPoiRegionKey constructs the longer-TTL POI-pool cache key from the
// original_source supplement: poi:region:{lat3}:{lng3}:{radius}:{cats|*}.
func BuildPoiRegionKey(center geo.Coordinates, radiusMeters float64, categories []model.PoiCategory) string {
	lat3 := roundTo(center.Lat(), 3)
	lng3 := roundTo(center.Lng(), 3)

	catPart := "*"
	if len(categories) > 0 {
		sorted := make([]string, len(categories))
		for i, c := range categories {
			sorted[i] = string(c)
		}
		sort.Strings(sorted)
		catPart = strings.Join(sorted, ",")
	}

	return fmt.Sprintf("poi:region:%.3f:%.3f:%.0f:%s", lat3, lng3, radiusMeters, catPart)
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

func roundToNearest(v, step float64) float64 {
	return math.Round(v/step) * step
}
