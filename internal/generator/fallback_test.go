package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/watnow/routeloop/internal/geo"
)

func TestFallbackJitter_AlternatesSign(t *testing.T) {
	r0, _ := fallbackJitter(0)
	r1, _ := fallbackJitter(1)
	assert.Greater(t, r0, 1.0)
	assert.Less(t, r1, 1.0)
}

func TestFallbackJitter_BoundedMagnitude(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		radiusFactor, rotationRad := fallbackJitter(attempt)
		assert.InDelta(t, 1.0, radiusFactor, 0.16)
		assert.LessOrEqual(t, rotationRad, 20.1*3.14159/180)
		assert.GreaterOrEqual(t, rotationRad, -20.1*3.14159/180)
	}
}

func TestVirtualWaypoints_CountAndRadius(t *testing.T) {
	start := geo.MustCoordinates(35.0, 135.0)
	points := virtualWaypoints(start, 1.0, 0)

	assert.Len(t, points, fallbackWaypointCount)
	for _, p := range points {
		assert.InDelta(t, 1.0, start.HaversineKm(p), 0.01)
	}
}
