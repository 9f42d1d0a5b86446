// Package routemetrics computes the pure-function route-shape, density,
// diversity, and overlap scores of §4.8 (C8). Every function here is a
// pure function of a Route (and, for overlap, a comparison set of other
// Routes); none perform I/O, mirroring the design's "computed once per
// finished route, attached, and cached with it."
package routemetrics

import (
	"math"

	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// overlapCorridorMeters is the fixed corridor width used by the path
// overlap metric, per §4.8 and §8's scenario 6.
const overlapCorridorMeters = 20.0

// Compute produces the full RouteMetrics for route. comparisonRoutes is
// the set of other already-accepted routes in this request (for
// cross-route path overlap); pass nil for the self-overlap fallback
// defined in §9's Open Questions resolution.
func Compute(route model.Route, comparisonRoutes []model.Route) model.RouteMetrics {
	hull := route.Polyline.ConvexHull()
	area := geo.HullArea(hull)
	perimeter := geo.HullPerimeterMeters(hull)

	density := poiDensityPerKm(route)

	return model.RouteMetrics{
		Circularity:        circularity(area, perimeter),
		Convexity:          convexity(area, route.Polyline),
		PathOverlapPercent: pathOverlapPercent(route.Polyline, comparisonRoutes),
		PoiDensityPerKm:    density,
		CategoryEntropy:    categoryEntropy(route),
		LandmarkCoverage:   landmarkCoverage(route),
		DensityContext:     model.ClassifyDensity(density),
	}
}

// circularity is 4*pi*area / perimeter^2; 1.0 for a perfect circle.
func circularity(area, perimeter float64) float64 {
	if perimeter <= 0 {
		return 0
	}
	c := 4 * math.Pi * area / (perimeter * perimeter)
	return clamp01(c)
}

// convexity is area(hull) / area_covered_by_polyline_envelope, per §4.8;
// "envelope" is the bounding-box sense used elsewhere in the design
// (§4.1's "bounding envelope" overapproximation), so this is hull area
// over bounding-box area — ratio in [0, 1] since the hull is always
// contained in its own bounding box, with 1.0 when the hull already fills
// its envelope (the route's footprint is rectangle-tight).
func convexity(hullArea float64, polyline geo.Polyline) float64 {
	box, err := geo.BoundingBoxFromPoints([]geo.Coordinates(polyline))
	if err != nil {
		return 0
	}
	envelopeArea := boundingBoxAreaMeters(box)
	if envelopeArea <= 0 {
		return 0
	}
	return clamp01(hullArea / envelopeArea)
}

const metersPerDegreeLat = 111000.0

// boundingBoxAreaMeters approximates a lat/lng bounding box's area in
// square metres using the same fixed-latitude-constant plus
// cos(mid_lat) correction the design uses for bbox buffering elsewhere.
func boundingBoxAreaMeters(box geo.BoundingBox) float64 {
	midLat := (box.MinLat + box.MaxLat) / 2
	heightM := (box.MaxLat - box.MinLat) * metersPerDegreeLat
	widthM := (box.MaxLng - box.MinLng) * metersPerDegreeLat * math.Cos(midLat*math.Pi/180)
	return math.Abs(heightM * widthM)
}

// pathOverlapPercent implements §4.8's path-overlap metric: when
// comparisonRoutes is non-empty, the fraction of route's own length whose
// segments fall within the 20 m corridor of any comparison route's
// segments. When empty, falls back to the canonical single-route
// definition adopted in §9: the fraction of outbound (first half)
// segments within the corridor of inbound (second half) segments.
func pathOverlapPercent(polyline geo.Polyline, comparisonRoutes []model.Route) float64 {
	if len(polyline) < 2 {
		return 0
	}
	if len(comparisonRoutes) == 0 {
		return selfOverlapPercent(polyline)
	}
	var others geo.Polyline
	for _, r := range comparisonRoutes {
		others = append(others, r.Polyline...)
	}
	return overlapFraction(polyline, others)
}

// OverlapFraction exposes the corridor-overlap computation for the
// generator's alternative-diversity check (§4.5 step 5, §8 invariant 4):
// the fraction of a's length lying within the corridor of b's segments.
func OverlapFraction(a, b geo.Polyline) float64 {
	return overlapFraction(a, b)
}

func overlapFraction(a, b geo.Polyline) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	var overlapLen, totalLen float64
	for i := 1; i < len(a); i++ {
		segStart, segEnd := a[i-1], a[i]
		segLen := segStart.HaversineKm(segEnd)
		totalLen += segLen
		if segLen == 0 {
			continue
		}
		mid := midpoint(segStart, segEnd)
		if d, ok := b.PerpendicularDistanceMeters(mid); ok && d <= overlapCorridorMeters {
			overlapLen += segLen
		}
	}
	if totalLen == 0 {
		return 0
	}
	return clamp01(overlapLen / totalLen)
}

func selfOverlapPercent(polyline geo.Polyline) float64 {
	if len(polyline) < 3 {
		return 0
	}
	mid := len(polyline) / 2
	outbound := polyline[:mid+1]
	inbound := polyline[mid:]
	return overlapFraction(outbound, inbound)
}

func midpoint(a, b geo.Coordinates) geo.Coordinates {
	return geo.MustCoordinates((a.Lat()+b.Lat())/2, (a.Lng()+b.Lng())/2)
}

// poiDensityPerKm is (|waypoints| + |snapped|) / distance_km.
func poiDensityPerKm(route model.Route) float64 {
	if route.DistanceKm <= 0 {
		return 0
	}
	return float64(len(route.Pois)+len(route.SnappedPois)) / route.DistanceKm
}

// categoryEntropy is the Shannon entropy (natural log, nats) over
// categories present across waypoints and snapped POIs.
func categoryEntropy(route model.Route) float64 {
	counts := make(map[model.PoiCategory]int)
	for _, wp := range route.Pois {
		counts[wp.Poi.Category]++
	}
	for _, sp := range route.SnappedPois {
		counts[sp.Poi.Category]++
	}
	total := len(route.Pois) + len(route.SnappedPois)
	if total == 0 {
		return 0
	}
	var entropy float64
	for _, n := range counts {
		p := float64(n) / float64(total)
		entropy -= p * math.Log(p)
	}
	return entropy
}

// landmarkCoverage is the fraction of waypoints+snapped POIs with
// popularity >= 75.
func landmarkCoverage(route model.Route) float64 {
	total := len(route.Pois) + len(route.SnappedPois)
	if total == 0 {
		return 0
	}
	var landmarks int
	for _, wp := range route.Pois {
		if wp.Poi.IsLandmark() {
			landmarks++
		}
	}
	for _, sp := range route.SnappedPois {
		if sp.Poi.IsLandmark() {
			landmarks++
		}
	}
	return float64(landmarks) / float64(total)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
