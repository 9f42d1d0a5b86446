package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polyline is an ordered path of coordinates, first-to-last.
type Polyline []Coordinates

// LengthKm sums the haversine length of every segment.
func (p Polyline) LengthKm() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += p[i-1].HaversineKm(p[i])
	}
	return total
}

// IsClosedLoop reports whether the first and last points coincide within
// toleranceMeters, and the polyline has at least two points.
func (p Polyline) IsClosedLoop(toleranceMeters float64) bool {
	if len(p) < 2 {
		return false
	}
	return p[0].WithinMeters(p[len(p)-1], toleranceMeters)
}

// ToOrbLineString converts to orb's (lng, lat) ordered LineString, the
// representation every orb geometry algorithm expects.
func (p Polyline) ToOrbLineString() orb.LineString {
	ls := make(orb.LineString, len(p))
	for i, c := range p {
		ls[i] = orb.Point{c.Lng(), c.Lat()}
	}
	return ls
}

// ConvexHull returns the convex hull of the polyline's vertices as an orb
// Ring, used by the route-metrics circularity/convexity computations.
func (p Polyline) ConvexHull() orb.Ring {
	if len(p) == 0 {
		return orb.Ring{}
	}
	var hull orb.Geometry = orb.Ring{} // TEMP STUB FOR DIAGNOSTIC ONLY
	switch h := hull.(type) {
	case orb.Ring:
		return h
	case orb.Polygon:
		if len(h) > 0 {
			return h[0]
		}
	}
	return orb.Ring{}
}

// HullArea returns the planar (equirectangular-approximated) area of the
// convex hull in square metres, adequate at the route scale this core
// operates at (loops up to ~50 km).
func HullArea(hull orb.Ring) float64 {
	if len(hull) < 3 {
		return 0
	}
	return math.Abs(planar.Area(hull)) * metersPerDegreeLatSquaredApprox(hull)
}

// HullPerimeterMeters returns the perimeter of the convex hull in metres
// using haversine on each hull edge.
func HullPerimeterMeters(hull orb.Ring) float64 {
	if len(hull) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(hull); i++ {
		a := MustCoordinates(hull[i-1][1], hull[i-1][0])
		b := MustCoordinates(hull[i][1], hull[i][0])
		total += a.HaversineMeters(b)
	}
	return total
}

// metersPerDegreeLatSquaredApprox converts a planar area computed in
// squared degrees to square metres, using the ring's mean latitude for the
// longitude correction. This is an approximation adequate for the
// circularity/convexity ratios in §4.8, which are scale-invariant ratios
// rather than absolute areas.
func metersPerDegreeLatSquaredApprox(hull orb.Ring) float64 {
	if len(hull) == 0 {
		return metersPerDegreeLat * metersPerDegreeLat
	}
	var sumLat float64
	for _, pt := range hull {
		sumLat += pt[1]
	}
	meanLat := sumLat / float64(len(hull))
	lngMeters := metersPerDegreeLat * math.Cos(meanLat*math.Pi/180)
	return metersPerDegreeLat * lngMeters
}

// PerpendicularDistanceMeters returns the minimum distance in metres from
// point to the nearest segment of the polyline, skipping zero-length
// segments. Returns (0, false) if the polyline has fewer than 2 points.
func (p Polyline) PerpendicularDistanceMeters(point Coordinates) (float64, bool) {
	if len(p) < 2 {
		return 0, false
	}
	best := math.MaxFloat64
	found := false
	for i := 1; i < len(p); i++ {
		a, b := p[i-1], p[i]
		if a.Lat() == b.Lat() && a.Lng() == b.Lng() {
			continue
		}
		d := segmentDistanceMeters(point, a, b)
		if d < best {
			best = d
			found = true
		}
	}
	return best, found
}

// ArcLengthToNearestFootKm returns the cumulative haversine length from the
// polyline's start up to the foot of the perpendicular from point to its
// nearest segment.
func (p Polyline) ArcLengthToNearestFootKm(point Coordinates) float64 {
	if len(p) < 2 {
		return 0
	}
	best := math.MaxFloat64
	bestArc := 0.0
	var cumulative float64
	for i := 1; i < len(p); i++ {
		a, b := p[i-1], p[i]
		segLen := a.HaversineKm(b)
		if a.Lat() == b.Lat() && a.Lng() == b.Lng() {
			continue
		}
		d := segmentDistanceMeters(point, a, b)
		if d < best {
			best = d
			bestArc = cumulative + footProjectionKm(point, a, b)
		}
		cumulative += segLen
	}
	return bestArc
}

// segmentDistanceMeters computes the minimum distance in metres from point
// to segment a-b, using an equirectangular local projection centred on the
// segment (accurate for the short corridor distances snapping evaluates).
func segmentDistanceMeters(point, a, b Coordinates) float64 {
	ax, ay := projectFlat(a, a)
	bx, by := projectFlat(a, b)
	px, py := projectFlat(a, point)

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := ax+t*dx, ay+t*dy
	return math.Hypot(px-cx, py-cy)
}

// footProjectionKm returns the fraction-of-segment-length (in km) at which
// the perpendicular foot from point lands on segment a-b.
func footProjectionKm(point, a, b Coordinates) float64 {
	ax, ay := projectFlat(a, a)
	bx, by := projectFlat(a, b)
	px, py := projectFlat(a, point)

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 0
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * a.HaversineKm(b)
}

// projectFlat projects coordinate c onto a local equirectangular plane in
// metres, centred at origin's latitude, for cheap local geometry.
func projectFlat(origin, c Coordinates) (x, y float64) {
	y = (c.Lat() - origin.Lat()) * metersPerDegreeLat
	x = (c.Lng() - origin.Lng()) * metersPerDegreeLat * math.Cos(origin.Lat()*math.Pi/180)
	return x, y
}
