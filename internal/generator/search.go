package generator

import (
	"context"
	"errors"

	"github.com/watnow/routeloop/internal/fanout"
	"github.com/watnow/routeloop/internal/model"
	"github.com/watnow/routeloop/internal/waypoint"
)

// errNotAccepted marks a directions result that decoded successfully but
// fell outside the tolerance window for this attempt; it is not a
// directions failure and is never retried.
var errNotAccepted = errors.New("generator: route outside tolerance window")

// searchResult is one accepted route from a tolerance-escalating search
// pass, together with the combo signature that produced it (so callers
// can mark it seen).
type searchResult struct {
	route     model.Route
	signature string
}

// search implements §4.5 step 3: for each tolerance level and retry
// attempt, enumerate candidate k-tuples, apply the geometric pre-filter,
// and fan out directions calls, accepting the first route within the
// tolerance window. attemptSeed differentiates repeated calls for
// alternative generation (§4.5 step 5) from the first, primary call
// (attemptSeed == 0): it perturbs the variation salt and is used to
// alternate k when the §4.4 table permits more than one value, without
// changing which k values are eligible.
func (g *Generator) search(ctx context.Context, req model.LoopRequest, prefs model.Preferences, pool []model.Poi, budget *callBudget, seen map[string]struct{}, attemptSeed int) (*searchResult, error) {
	kBase := waypoint.WaypointCount(req.DistanceKm, len(pool))
	eligibleK := eligibleWaypointCounts(kBase)

	for _, level := range model.ToleranceLevels {
		tolerance := level.Fraction()
		for r := 0; r <= g.cfg.MaxRetries; r++ {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if budget.Consumed() >= g.cfg.DirectionsBudgetCeiling {
				return nil, errBudgetExhausted
			}

			tPrime := adjustedTarget(req.DistanceKm, r)
			k := eligibleK[(attemptSeed+r)%len(eligibleK)]

			filtered := waypoint.FilterCandidates(req.Start, pool, tPrime)
			if len(filtered) < k {
				continue
			}

			combos := g.engine.Enumerate(filtered, waypoint.EnumerateOptions{
				Start:         req.Start,
				TargetKm:      tPrime,
				HiddenGems:    prefs.HiddenGems,
				K:             k,
				Attempt:       r + attemptSeed*2,
				MaxResults:    g.cfg.MaxCombinationsPerTolerance,
				MinSeparation: g.cfg.MinPoiSeparationKm,
			})

			result := g.evaluateCombinations(ctx, req, combos, tPrime, tolerance, k, seen, budget)
			if result != nil {
				return result, nil
			}
		}
	}
	return nil, nil
}

// evaluateCombinations applies the nearest-neighbour ordering and
// pre-directions geometric filter to each combination (§4.5 step 3c,
// §5's cost guard), then fans the survivors out to the directions client
// with bounded concurrency, accepting the first result within tolerance
// of the request's original target distance (§4.5 step 3e).
func (g *Generator) evaluateCombinations(ctx context.Context, req model.LoopRequest, combos []waypoint.Combination, tPrime, tolerance float64, k int, seen map[string]struct{}, budget *callBudget) *searchResult {
	type survivor struct {
		ordered   []model.Poi
		signature string
	}
	var survivors []survivor
	for _, combo := range combos {
		sig := comboSignature(combo.Pois)
		if _, already := seen[sig]; already {
			continue
		}
		ordered := nearestNeighbourTour(req.Start, combo.Pois)
		tourKm := tourLengthKm(req.Start, ordered)
		if !passesGeometricPrefilter(tourKm, tPrime, tolerance, k) {
			continue
		}
		survivors = append(survivors, survivor{ordered: ordered, signature: sig})
	}
	if len(survivors) == 0 {
		return nil
	}

	tasks := make([]fanout.Task[*searchResult], len(survivors))
	for i, sv := range survivors {
		sv := sv
		tasks[i] = func(ctx context.Context) (*searchResult, error) {
			seq := waypointSequence(req.Start, sv.ordered)
			result, err := callDirectionsWithRetry(ctx, g.directions, seq, req.Mode, budget, 2)
			if err != nil {
				return nil, err
			}
			route := buildRoute(sv.ordered, result, false)
			if !withinTolerance(route.DistanceKm, req.DistanceKm, tolerance) {
				return nil, errNotAccepted
			}
			return &searchResult{route: route, signature: sv.signature}, nil
		}
	}

	winner, ok := fanout.RunUntilFirstSuccess(ctx, g.cfg.MaxFanOut, tasks, func(r *searchResult) bool {
		return r != nil
	})
	if !ok {
		return nil
	}
	seen[winner.signature] = struct{}{}
	return winner
}
