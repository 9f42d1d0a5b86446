// Package waypoint: k-combination enumeration over scored candidates,
// applying the pairwise hard constraints (§4.4) lazily so the engine never
// materializes more than MaxCombinationsPerTolerance accepted tuples.
package waypoint

import (
	"math"

	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// StratifiedRingCount and StratifiedMaxRingDistanceFactor implement the
// original_source distance-stratified candidate selection: for long, dense
// requests, candidates are bucketed into concentric rings out to this
// fraction of the target distance before enumeration, so the
// highest-scored combinations aren't all clustered near the start.
const (
	StratifiedRingCount             = 4
	StratifiedMaxRingDistanceFactor = 0.6
	stratifiedMinPoolSize           = 12
	stratifiedMinTargetKm           = 8.0
)

// Combination is an accepted k-tuple with its POIs in candidate-rank order
// (§4.5 step 3c's nearest-neighbour ordering is applied by the caller; this
// package only guarantees the pairwise constraints hold).
type Combination struct {
	Pois  []model.Poi
	Score float64
}

// EnumerateOptions parameterizes one enumeration pass.
type EnumerateOptions struct {
	Start          geo.Coordinates
	TargetKm       float64
	HiddenGems     bool
	K              int
	Attempt        int // retry attempt index, feeds variation salt and angular relaxation
	MaxResults     int
	MinSeparation  float64 // MinPoiSeparationKm unless overridden
}

// angularRelaxation implements the original_source's retry-aware
// relaxation of the angular-gap requirement: base_min_gap = pi/(k+1),
// relaxed by min((attempt-1)*0.2, 0.6) for attempt >= 1, never below 40%
// of the base gap.
func angularRelaxation(attempt int) float64 {
	if attempt < 1 {
		return 0
	}
	relax := math.Min(float64(attempt-1)*0.2, 0.6)
	if relax < 0 {
		relax = 0
	}
	return relax
}

func minAngularGap(k, attempt int) float64 {
	base := math.Pi / float64(k+1)
	relaxed := base * (1 - angularRelaxation(attempt))
	floor := base * 0.4
	if relaxed < floor {
		return floor
	}
	return relaxed
}

// Enumerate produces up to opts.MaxResults accepted k-combinations from
// pool. Candidates are ranked once against the empty selection (§4.4:
// "sort candidates by score descending, then enumerate k-combinations in
// score order"), and combinations are walked in that fixed order,
// honoring the separation and angular pairwise filters with the
// per-attempt angular relaxation.
func (e *Engine) Enumerate(pool []model.Poi, opts EnumerateOptions) []Combination {
	if opts.K <= 0 || len(pool) < opts.K {
		return nil
	}
	minSep := opts.MinSeparation
	if minSep <= 0 {
		minSep = MinPoiSeparationKm
	}
	minGap := minAngularGap(opts.K, opts.Attempt)

	candidates := pool
	if shouldStratify(len(pool), opts.TargetKm) {
		candidates = stratifyByRing(opts.Start, pool, opts.TargetKm)
	}

	ranked := e.RankCandidates(opts.Start, candidates, opts.TargetKm, opts.HiddenGems, opts.K, opts.Attempt)

	var results []Combination
	var walk func(start int, partial []ScoredCandidate)
	walk = func(start int, partial []ScoredCandidate) {
		if len(results) >= opts.MaxResults {
			return
		}
		if len(partial) == opts.K {
			results = append(results, buildCombination(partial))
			return
		}
		for i := start; i < len(ranked); i++ {
			if len(results) >= opts.MaxResults {
				return
			}
			candidate := ranked[i]
			if !satisfiesPairwiseFilters(candidate.Poi, partial, opts.Start, minSep, minGap) {
				continue
			}
			walk(i+1, append(partial, candidate))
		}
	}
	walk(0, make([]ScoredCandidate, 0, opts.K))
	return results
}

func buildCombination(scored []ScoredCandidate) Combination {
	pois := make([]model.Poi, len(scored))
	var total float64
	for i, s := range scored {
		pois[i] = s.Poi
		total += s.Score
	}
	return Combination{Pois: pois, Score: total}
}

func satisfiesPairwiseFilters(candidate model.Poi, partial []ScoredCandidate, start geo.Coordinates, minSepKm, minGapRad float64) bool {
	candidateBearing := start.BearingRad(candidate.Location)
	for _, p := range partial {
		if candidate.Location.HaversineKm(p.Poi.Location) < minSepKm {
			return false
		}
		if angularGap(candidateBearing, start.BearingRad(p.Poi.Location)) < minGapRad {
			return false
		}
	}
	return true
}

// angularGap returns the smallest absolute angular distance between two
// bearings in radians, accounting for wraparound at 2pi.
func angularGap(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff
}

func shouldStratify(poolSize int, targetKm float64) bool {
	return poolSize >= stratifiedMinPoolSize && targetKm >= stratifiedMinTargetKm
}

// stratifyByRing partitions pool into StratifiedRingCount concentric
// distance rings out to StratifiedMaxRingDistanceFactor*targetKm from
// start, then interleaves across rings so the returned order isn't
// dominated by whichever ring happens to hold the globally top-scored
// POIs, per the original_source's stratified candidate selection.
func stratifyByRing(start geo.Coordinates, pool []model.Poi, targetKm float64) []model.Poi {
	maxRingDist := targetKm * StratifiedMaxRingDistanceFactor
	if maxRingDist <= 0 {
		return pool
	}
	rings := make([][]model.Poi, StratifiedRingCount)
	var beyond []model.Poi
	ringWidth := maxRingDist / float64(StratifiedRingCount)
	for _, p := range pool {
		d := start.HaversineKm(p.Location)
		if d > maxRingDist {
			beyond = append(beyond, p)
			continue
		}
		idx := int(d / ringWidth)
		if idx >= StratifiedRingCount {
			idx = StratifiedRingCount - 1
		}
		rings[idx] = append(rings[idx], p)
	}

	interleaved := make([]model.Poi, 0, len(pool))
	for i := 0; ; i++ {
		added := false
		for _, ring := range rings {
			if i < len(ring) {
				interleaved = append(interleaved, ring[i])
				added = true
			}
		}
		if !added {
			break
		}
	}
	return append(interleaved, beyond...)
}
