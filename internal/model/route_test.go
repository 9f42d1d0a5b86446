package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watnow/routeloop/internal/geo"
)

func TestClassifyDensity(t *testing.T) {
	assert.Equal(t, DensitySparse, ClassifyDensity(0.1))
	assert.Equal(t, DensityModerate, ClassifyDensity(1.0))
	assert.Equal(t, DensityDense, ClassifyDensity(2.0))
}

func TestRoute_UniqueCategories(t *testing.T) {
	loc := geo.MustCoordinates(35.0, 135.0)
	museum, err := NewPoi("p1", "Museum", CategoryMuseum, loc, 50)
	require.NoError(t, err)
	cafe, err := NewPoi("p2", "Cafe", CategoryCafe, loc, 40)
	require.NoError(t, err)
	cafe2, err := NewPoi("p3", "Another Cafe", CategoryCafe, loc, 30)
	require.NoError(t, err)

	r := Route{
		Pois: []RoutePoi{
			{Poi: museum, OrderInRoute: 0},
			{Poi: cafe, OrderInRoute: 1},
		},
		SnappedPois: []SnappedPoi{
			{Poi: cafe2},
		},
	}

	assert.Equal(t, 2, r.UniqueCategories())
}

func TestRoute_MeanPopularity(t *testing.T) {
	loc := geo.MustCoordinates(35.0, 135.0)
	a, err := NewPoi("p1", "A", CategoryMuseum, loc, 80)
	require.NoError(t, err)
	b, err := NewPoi("p2", "B", CategoryCafe, loc, 40)
	require.NoError(t, err)

	r := Route{Pois: []RoutePoi{{Poi: a}, {Poi: b}}}
	assert.InDelta(t, 0.6, r.MeanPopularity(), 1e-9)
}

func TestRoute_MeanPopularity_Empty(t *testing.T) {
	r := Route{}
	assert.Equal(t, 0.0, r.MeanPopularity())
}

func TestRoute_ContainsPoiID(t *testing.T) {
	loc := geo.MustCoordinates(35.0, 135.0)
	a, err := NewPoi("p1", "A", CategoryMuseum, loc, 80)
	require.NoError(t, err)

	r := Route{Pois: []RoutePoi{{Poi: a}}}
	assert.True(t, r.ContainsPoiID("p1"))
	assert.False(t, r.ContainsPoiID("p2"))
}
