// Package snapping implements the second-pass POI enrichment of §4.7
// (C7): given a finished route's polyline and the waypoints already used,
// it finds POIs lying near the path without altering the route geometry.
package snapping

import (
	"context"
	"sort"

	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
	"github.com/watnow/routeloop/internal/poirepo"
)

// DefaultSnapRadiusMeters is §4.7's stated default corridor half-width.
const DefaultSnapRadiusMeters = 100.0

// DefaultBboxLimit is the POI count ceiling passed to find_in_bbox, per
// §4.7 step 2.
const DefaultBboxLimit = 200

// Service finds POIs within a perpendicular corridor of a route polyline.
type Service struct {
	repo        poirepo.Repository
	snapRadiusM float64
	bboxLimit   int
}

func NewService(repo poirepo.Repository, snapRadiusMeters float64, bboxLimit int) *Service {
	if snapRadiusMeters <= 0 {
		snapRadiusMeters = DefaultSnapRadiusMeters
	}
	if bboxLimit <= 0 {
		bboxLimit = DefaultBboxLimit
	}
	return &Service{repo: repo, snapRadiusM: snapRadiusMeters, bboxLimit: bboxLimit}
}

// Snap returns the list of SnappedPoi near polyline, excluding any POI
// whose id appears in usedWaypoints, ordered by arclength along the path
// ascending, per §4.7 steps 1-5.
func (s *Service) Snap(ctx context.Context, polyline geo.Polyline, usedWaypoints []model.Poi, categories []model.PoiCategory) ([]model.SnappedPoi, error) {
	if len(polyline) < 2 {
		return nil, nil
	}

	box, err := geo.BoundingBoxFromPoints([]geo.Coordinates(polyline))
	if err != nil {
		return nil, nil
	}
	expanded := box.Expand(s.snapRadiusM)

	candidates, err := s.repo.FindInBbox(ctx, expanded, categories, s.bboxLimit)
	if err != nil {
		return nil, err
	}

	used := make(map[string]struct{}, len(usedWaypoints))
	for _, wp := range usedWaypoints {
		used[wp.ID] = struct{}{}
	}

	snapped := make([]model.SnappedPoi, 0, len(candidates))
	for _, poi := range candidates {
		if _, isWaypoint := used[poi.ID]; isWaypoint {
			continue
		}
		dist, ok := polyline.PerpendicularDistanceMeters(poi.Location)
		if !ok || dist > s.snapRadiusM {
			continue
		}
		arcKm := polyline.ArcLengthToNearestFootKm(poi.Location)
		snapped = append(snapped, model.SnappedPoi{
			Poi:               poi,
			DistanceFromPathM: dist,
			ArcLengthKm:       arcKm,
		})
	}

	sort.Slice(snapped, func(i, j int) bool {
		return snapped[i].ArcLengthKm < snapped[j].ArcLengthKm
	})
	return snapped, nil
}
