package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watnow/routeloop/internal/geo"
)

func TestNewPoi_Validates(t *testing.T) {
	loc := geo.MustCoordinates(35.0, 135.0)

	_, err := NewPoi("", "Temple", CategoryHistoric, loc, 50)
	assert.Error(t, err)

	_, err = NewPoi("p1", "", CategoryHistoric, loc, 50)
	assert.Error(t, err)

	_, err = NewPoi("p1", "Temple", PoiCategory("bogus"), loc, 50)
	assert.Error(t, err)

	_, err = NewPoi("p1", "Temple", CategoryHistoric, loc, 150)
	assert.Error(t, err)

	p, err := NewPoi("p1", "Temple", CategoryHistoric, loc, 50)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 50, p.Popularity)
}

func TestPoi_QualityScore(t *testing.T) {
	loc := geo.MustCoordinates(35.0, 135.0)
	p, err := NewPoi("p1", "Temple", CategoryHistoric, loc, 80)
	require.NoError(t, err)

	assert.InDelta(t, 0.8, p.QualityScore(false), 1e-9)
	assert.InDelta(t, 0.2, p.QualityScore(true), 1e-9)
}

func TestPoi_IsLandmark(t *testing.T) {
	loc := geo.MustCoordinates(35.0, 135.0)

	landmark, err := NewPoi("p1", "Castle", CategoryCastle, loc, 75)
	require.NoError(t, err)
	assert.True(t, landmark.IsLandmark())

	minor, err := NewPoi("p2", "Bench", CategoryPark, loc, 10)
	require.NoError(t, err)
	assert.False(t, minor.IsLandmark())
}
