package routescore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

func sampleRoute(t *testing.T, distanceKm float64) model.Route {
	t.Helper()
	loc := geo.MustCoordinates(35.0, 135.0)
	a, err := model.NewPoi("a", "A", model.CategoryMuseum, loc, 80)
	require.NoError(t, err)
	b, err := model.NewPoi("b", "B", model.CategoryCafe, loc, 60)
	require.NoError(t, err)

	return model.Route{
		DistanceKm: distanceKm,
		Pois: []model.RoutePoi{
			{Poi: a},
			{Poi: b},
		},
	}
}

func TestV1_Score_PerfectDistanceMatch(t *testing.T) {
	route := sampleRoute(t, 5.0)
	score := V1{}.Score(route, 5.0, false)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 10.0)
}

func TestV1_Score_PenalizesDistanceDeviation(t *testing.T) {
	onTarget := V1{}.Score(sampleRoute(t, 5.0), 5.0, false)
	offTarget := V1{}.Score(sampleRoute(t, 9.0), 5.0, false)
	assert.Greater(t, onTarget, offTarget)
}

func TestV2_Score_RewardsCircularityAndConvexity(t *testing.T) {
	route := sampleRoute(t, 5.0)
	route.Metrics = &model.RouteMetrics{Circularity: 0.9, Convexity: 0.9, PathOverlapPercent: 0}

	flat := V1{}.Score(route, 5.0, false)
	shaped := V2{}.Score(route, 5.0, false)
	assert.GreaterOrEqual(t, shaped, flat)
}

func TestV2_Score_PenalizesOverlap(t *testing.T) {
	route := sampleRoute(t, 5.0)
	route.Metrics = &model.RouteMetrics{Circularity: 0.5, Convexity: 0.5, PathOverlapPercent: 0.9}

	withoutMetrics := sampleRoute(t, 5.0)
	overlapping := V2{}.Score(route, 5.0, false)
	clean := V2{}.Score(withoutMetrics, 5.0, false)
	assert.Less(t, overlapping, clean)
}

func TestV2_Score_NilMetricsFallsBackToBase(t *testing.T) {
	route := sampleRoute(t, 5.0)
	score := V2{}.Score(route, 5.0, false)
	assert.Equal(t, V1{}.Score(route, 5.0, false), score)
}

func TestForName(t *testing.T) {
	assert.IsType(t, V1{}, ForName("v1"))
	assert.IsType(t, V2{}, ForName("v2"))
	assert.IsType(t, V1{}, ForName(""))
}
