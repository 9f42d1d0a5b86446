package generator

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/watnow/routeloop/internal/directions"
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// mockRepository is a mock of poirepo.Repository, grounded on the pack's
// own testify/mock convention for repository collaborators.
type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindWithinRadius(ctx context.Context, center geo.Coordinates, radiusMeters float64, categories []model.PoiCategory, limit int) ([]model.Poi, error) {
	args := m.Called(ctx, center, radiusMeters, categories, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Poi), args.Error(1)
}

func (m *mockRepository) FindInBbox(ctx context.Context, box geo.BoundingBox, categories []model.PoiCategory, limit int) ([]model.Poi, error) {
	args := m.Called(ctx, box, categories, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Poi), args.Error(1)
}

func (m *mockRepository) Insert(ctx context.Context, poi model.Poi) (string, error) {
	args := m.Called(ctx, poi)
	return args.String(0), args.Error(1)
}

func (m *mockRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// mockCache is a mock of routecache.Cache.
type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]model.Route, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]model.Route), args.Bool(1), args.Error(2)
}

func (m *mockCache) Put(ctx context.Context, key string, routes []model.Route, ttl time.Duration) error {
	args := m.Called(ctx, key, routes, ttl)
	return args.Error(0)
}

// mockDirectionsClient is a mock of directions.Client.
type mockDirectionsClient struct {
	mock.Mock
}

func (m *mockDirectionsClient) GetDirections(ctx context.Context, waypoints []geo.Coordinates, mode model.TransportMode) (directions.Result, error) {
	args := m.Called(ctx, waypoints, mode)
	return args.Get(0).(directions.Result), args.Error(1)
}
