package generator

import (
	"context"
	"math"

	"github.com/watnow/routeloop/internal/apperr"
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// fallbackJitter returns the deterministic per-attempt radius factor and
// rotation offset (radians) for the geometric fallback's synthetic loops,
// per §4.5 step 4: jittered by +/-15% in radius and +/-20 degrees in start
// rotation. The sequence is deterministic (not true randomness) so a
// retried request explores the same fallback shapes, matching the rest
// of the design's deterministic-salt convention (§4.4's variation term).
func fallbackJitter(attempt int) (radiusFactor, rotationRad float64) {
	sign := 1.0
	if attempt%2 == 1 {
		sign = -1.0
	}
	radiusFactor = 1.0 + 0.15*sign*float64((attempt%3)+1)/3.0
	rotationDeg := 20.0 * sign * float64((attempt%2)+1) / 2.0
	rotationRad = rotationDeg * math.Pi / 180
	return radiusFactor, rotationRad
}

// fallbackWaypointCount is the fixed k=4 virtual-waypoint count for
// geometric fallback loops, per §4.5 step 4.
const fallbackWaypointCount = 4

// virtualWaypoints places fallbackWaypointCount points evenly around a
// circle of radiusKm centred on start, starting at rotationRad.
func virtualWaypoints(start geo.Coordinates, radiusKm, rotationRad float64) []geo.Coordinates {
	points := make([]geo.Coordinates, fallbackWaypointCount)
	angleStep := 2 * math.Pi / float64(fallbackWaypointCount)
	for i := 0; i < fallbackWaypointCount; i++ {
		bearing := rotationRad + float64(i)*angleStep
		points[i] = start.Destination(bearing, radiusKm)
	}
	return points
}

// geometricFallback implements §4.5 step 4: construct up to
// cfg.FallbackAttempts synthetic loops on a circle of radius t/(2pi)
// around start, jittered per attempt, accepting the first within
// very_relaxed tolerance. Between attempts, the radius is corrected by
// the original_source's damped feedback loop rather than jumping
// straight to the naive corrected radius.
func (g *Generator) geometricFallback(ctx context.Context, req model.LoopRequest, budget *callBudget) (*model.Route, error) {
	baseRadiusKm := req.DistanceKm / (2 * math.Pi)
	radiusKm := baseRadiusKm
	tolerance := model.ToleranceVeryRelaxed.Fraction()

	for attempt := 0; attempt < g.cfg.FallbackAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if budget.Consumed() >= g.cfg.DirectionsBudgetCeiling {
			return nil, errBudgetExhausted
		}

		radiusFactor, rotationRad := fallbackJitter(attempt)
		effectiveRadiusKm := radiusKm * radiusFactor

		points := virtualWaypoints(req.Start, effectiveRadiusKm, rotationRad)
		seq := closeLoopSequence(req.Start, points)

		result, err := callDirectionsWithRetry(ctx, g.directions, seq, req.Mode, budget, 2)
		if err != nil {
			continue
		}

		actualKm := result.TotalDistanceM / 1000.0
		if withinTolerance(actualKm, req.DistanceKm, tolerance) {
			route := buildRoute(nil, result, true)
			return &route, nil
		}

		if actualKm > 0 {
			ratio := req.DistanceKm / actualKm
			correction := 1 + (ratio-1)*g.cfg.DistanceCorrectionDamping
			radiusKm *= clampDamping(correction, 0.5, 2.5)
		}
	}

	return nil, apperr.New(apperr.KindDirectionsUnavailable, "geometric fallback exhausted all attempts")
}
