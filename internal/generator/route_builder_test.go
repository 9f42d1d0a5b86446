package generator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/watnow/routeloop/internal/directions"
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

func TestAdjustedTarget_PrimaryAttemptIsUnchanged(t *testing.T) {
	assert.Equal(t, 5.0, adjustedTarget(5.0, 0))
}

func TestAdjustedTarget_EscalatesWithRetry(t *testing.T) {
	assert.InDelta(t, 5.0, adjustedTarget(5.0, 1), 1e-9)
	assert.Greater(t, adjustedTarget(5.0, 2), adjustedTarget(5.0, 1))
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, withinTolerance(5.5, 5.0, 0.2))
	assert.False(t, withinTolerance(7.0, 5.0, 0.2))
	assert.False(t, withinTolerance(5.0, 0, 0.2))
}

func TestComboSignature_OrderIndependent(t *testing.T) {
	a := poiAt(t, "a", 0, 1.0)
	b := poiAt(t, "b", math.Pi, 1.0)

	sig1 := comboSignature([]model.Poi{a, b})
	sig2 := comboSignature([]model.Poi{b, a})
	assert.Equal(t, sig1, sig2)
}

func TestEligibleWaypointCounts(t *testing.T) {
	assert.Equal(t, []int{3, 2}, eligibleWaypointCounts(3))
	assert.Equal(t, []int{2}, eligibleWaypointCounts(2))
}

func TestBuildRoute_DistanceAndDurationFromResult(t *testing.T) {
	start := geo.MustCoordinates(35.0, 135.0)
	result := directions.Result{
		Polyline:       geo.Polyline{start, start.Destination(0, 5.0)},
		TotalDistanceM: 5000,
		TotalDurationS: 3600,
	}

	route := buildRoute(nil, result, false)
	assert.Equal(t, 5.0, route.DistanceKm)
	assert.Equal(t, 60, route.DurationMinutes)
	assert.False(t, route.IsFallback)
	assert.NotEmpty(t, route.ID)
}

func TestBuildRoute_MonotonicDistanceFromStart(t *testing.T) {
	start := geo.MustCoordinates(35.0, 135.0)
	result := directions.Result{
		Polyline:       geo.Polyline{start, start.Destination(0, 1.0), start.Destination(0, 2.0)},
		TotalDistanceM: 2000,
		TotalDurationS: 600,
	}
	ordered := []model.Poi{
		poiAt(t, "a", 0, 0.5),
		poiAt(t, "b", 0, 1.5),
	}

	route := buildRoute(ordered, result, false)
	for i := 1; i < len(route.Pois); i++ {
		assert.Greater(t, route.Pois[i].DistanceFromStartKm, route.Pois[i-1].DistanceFromStartKm)
	}
}

func TestClampDamping(t *testing.T) {
	assert.Equal(t, 0.5, clampDamping(0.1, 0.5, 2.5))
	assert.Equal(t, 2.5, clampDamping(10, 0.5, 2.5))
	assert.Equal(t, 1.2, clampDamping(1.2, 0.5, 2.5))
}
