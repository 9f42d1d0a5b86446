package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// metersPerDegreeLat is the constant used for bounding-box buffering only.
// Per design, haversine (not this constant) must be used for any distance
// ranking; this value exists solely to convert a metre buffer into degrees.
const metersPerDegreeLat = 111000.0

// BoundingBox is an axis-aligned lat/lng rectangle. min <= max on both axes;
// antimeridian-crossing boxes are rejected rather than normalized, since the
// core's regions never span it.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// NewBoundingBox validates and constructs a BoundingBox.
func NewBoundingBox(minLat, maxLat, minLng, maxLng float64) (BoundingBox, error) {
	if minLat > maxLat {
		return BoundingBox{}, fmt.Errorf("geo: bounding box minLat %v exceeds maxLat %v", minLat, maxLat)
	}
	if minLng > maxLng {
		return BoundingBox{}, fmt.Errorf("geo: bounding box minLng %v exceeds maxLng %v", minLng, maxLng)
	}
	return BoundingBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}, nil
}

// BoundingBoxFromPoints computes the tight envelope of a set of coordinates.
func BoundingBoxFromPoints(points []Coordinates) (BoundingBox, error) {
	if len(points) == 0 {
		return BoundingBox{}, fmt.Errorf("geo: cannot compute bounding box of zero points")
	}
	b := BoundingBox{
		MinLat: points[0].Lat(), MaxLat: points[0].Lat(),
		MinLng: points[0].Lng(), MaxLng: points[0].Lng(),
	}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat())
		b.MaxLat = math.Max(b.MaxLat, p.Lat())
		b.MinLng = math.Min(b.MinLng, p.Lng())
		b.MaxLng = math.Max(b.MaxLng, p.Lng())
	}
	return b, nil
}

// Expand pads the box by radiusMeters, converting the metre buffer to
// degrees using the fixed latitude constant and a cos(mid_lat) correction
// for longitude, per the design's bbox-buffering rule.
func (b BoundingBox) Expand(radiusMeters float64) BoundingBox {
	midLat := (b.MinLat + b.MaxLat) / 2
	latDelta := radiusMeters / metersPerDegreeLat
	lngDelta := radiusMeters / (metersPerDegreeLat * math.Cos(midLat*math.Pi/180))

	return BoundingBox{
		MinLat: clampLat(b.MinLat - latDelta),
		MaxLat: clampLat(b.MaxLat + latDelta),
		MinLng: clampLng(b.MinLng - lngDelta),
		MaxLng: clampLng(b.MaxLng + lngDelta),
	}
}

// Contains reports whether c lies within the inclusive rectangle.
func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Lat() >= b.MinLat && c.Lat() <= b.MaxLat &&
		c.Lng() >= b.MinLng && c.Lng() <= b.MaxLng
}

// ToOrbBound adapts the box to paulmach/orb's Bound type for geometry
// operations (hull, area) shared with the rest of the geo package.
func (b BoundingBox) ToOrbBound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLng, b.MinLat},
		Max: orb.Point{b.MaxLng, b.MaxLat},
	}
}

func clampLat(v float64) float64 {
	if v < -90 {
		return -90
	}
	if v > 90 {
		return 90
	}
	return v
}

func clampLng(v float64) float64 {
	if v < -180 {
		return -180
	}
	if v > 180 {
		return 180
	}
	return v
}
