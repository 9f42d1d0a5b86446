package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// Coordinates is a validated, immutable (lat, lng) pair.
type Coordinates struct {
	lat float64
	lng float64
}

// NewCoordinates validates and constructs a Coordinates value.
func NewCoordinates(lat, lng float64) (Coordinates, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("geo: latitude %v out of range [-90, 90]", lat)
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) || lng < -180 || lng > 180 {
		return Coordinates{}, fmt.Errorf("geo: longitude %v out of range [-180, 180]", lng)
	}
	return Coordinates{lat: lat, lng: lng}, nil
}

// MustCoordinates panics on invalid input; reserved for construction from
// already-validated external sources (e.g. database rows written by the
// core itself).
func MustCoordinates(lat, lng float64) Coordinates {
	c, err := NewCoordinates(lat, lng)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Coordinates) Lat() float64 { return c.lat }
func (c Coordinates) Lng() float64 { return c.lng }

// HaversineKm returns the great-circle distance between c and other in
// kilometres, using the mean Earth radius.
func (c Coordinates) HaversineKm(other Coordinates) float64 {
	lat1 := c.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLat := (other.lat - c.lat) * math.Pi / 180
	dLng := (other.lng - c.lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c2 := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c2
}

// HaversineMeters is HaversineKm scaled to metres, for the smaller
// perpendicular-distance computations used by snapping.
func (c Coordinates) HaversineMeters(other Coordinates) float64 {
	return c.HaversineKm(other) * 1000
}

// BearingRad returns the initial compass bearing from c to other, in
// radians, measured clockwise from true north.
func (c Coordinates) BearingRad(other Coordinates) float64 {
	lat1 := c.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLng := (other.lng - c.lng) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	theta := math.Atan2(y, x)
	return math.Mod(theta+2*math.Pi, 2*math.Pi)
}

// WithinMeters reports whether c and other coincide within the given
// tolerance in metres. Used for the loop-closure invariant.
func (c Coordinates) WithinMeters(other Coordinates, tolerance float64) bool {
	return c.HaversineMeters(other) <= tolerance
}

// Destination returns the coordinate reached by travelling distanceKm
// from c along initial bearing bearingRad, using the same mean-Earth-
// radius spherical model as HaversineKm. Used by the geometric-fallback
// loop construction (§4.5 step 4) to place virtual waypoints on a circle
// around a start point.
func (c Coordinates) Destination(bearingRad, distanceKm float64) Coordinates {
	angularDist := distanceKm / earthRadiusKm
	lat1 := c.lat * math.Pi / 180
	lng1 := c.lng * math.Pi / 180

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angularDist) + math.Cos(lat1)*math.Sin(angularDist)*math.Cos(bearingRad))
	lng2 := lng1 + math.Atan2(
		math.Sin(bearingRad)*math.Sin(angularDist)*math.Cos(lat1),
		math.Cos(angularDist)-math.Sin(lat1)*math.Sin(lat2),
	)

	lat2Deg := lat2 * 180 / math.Pi
	lng2Deg := math.Mod(lng2*180/math.Pi+540, 360) - 180 // normalize to [-180, 180]

	if lat2Deg > 90 {
		lat2Deg = 90
	} else if lat2Deg < -90 {
		lat2Deg = -90
	}
	return Coordinates{lat: lat2Deg, lng: lng2Deg}
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.lat, c.lng)
}

// coordinatesJSON is the wire shape for Coordinates. Since lat/lng are
// unexported (to keep Coordinates validated-by-construction), the zero-value
// struct marshaler would silently emit "{}" and drop both fields, so
// MarshalJSON/UnmarshalJSON are required wherever a Coordinates crosses a
// json.Marshal boundary (the Redis cache tiers, notably).
type coordinatesJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal(coordinatesJSON{Lat: c.lat, Lng: c.lng})
}

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var wire coordinatesJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	coords, err := NewCoordinates(wire.Lat, wire.Lng)
	if err != nil {
		return err
	}
	*c = coords
	return nil
}
