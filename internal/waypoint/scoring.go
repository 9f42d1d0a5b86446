// Package waypoint implements the Waypoint & Scoring Engine (§4.4): count
// selection, per-candidate scoring, hard rejection filters, and bounded
// k-combination enumeration.
package waypoint

import (
	"math"

	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// Weights are the per-term multipliers in the scoring sum. They must sum
// to 1.0; DefaultWeights is the design's stated default.
type Weights struct {
	Distance  float64
	Quality   float64
	Angular   float64
	Diversity float64
	Variation float64
}

// DefaultWeights matches §4.4's stated default point.
var DefaultWeights = Weights{
	Distance:  0.6,
	Quality:   0.2,
	Angular:   0.1,
	Diversity: 0.05,
	Variation: 0.05,
}

// MinPoiSeparationKm is the pairwise minimum separation a selected k-tuple
// must satisfy (§4.4 rejection filters).
const MinPoiSeparationKm = 0.3

// MinDistanceFromStartKm rejects POIs too close to the start to form a
// loop.
const MinDistanceFromStartKm = 0.2

// MaxCombinationsPerTolerance caps accepted combinations emitted per
// tolerance level (§4.4, §5).
const MaxCombinationsPerTolerance = 20

// WaypointCount selects k per the piecewise table in §4.4.
func WaypointCount(targetKm float64, poolSize int) int {
	switch {
	case targetKm > 10 && poolSize >= 6:
		return 3
	case targetKm > 5 && poolSize >= 4:
		return 3
	default:
		return 2
	}
}

// WaypointDistanceMultiplier is the per-leg distance budget fraction used
// by the pre-directions geometric pre-filter, supplementing §4.4's
// rejection filters with a per-k expectation (original_source supplement).
func WaypointDistanceMultiplier(k int) float64 {
	switch k {
	case 2:
		return 0.50
	case 3:
		return 0.35
	case 4:
		return 0.28
	default:
		return 0.35
	}
}

// MaxDistanceFromStartKm rejects POIs too far to reach without overshoot.
func MaxDistanceFromStartKm(targetKm float64) float64 {
	return targetKm / 1.5
}

// candidate bundles a POI with its precomputed distance and bearing from
// the start, avoiding repeated haversine calls during scoring.
type candidate struct {
	poi      model.Poi
	distKm   float64
	bearing  float64
}

// ScoredCandidate is a POI annotated with its score for a specific
// partial-selection context (category/angular bonuses depend on what's
// already selected, so scores are not globally static).
type ScoredCandidate struct {
	Poi   model.Poi
	Score float64
}

// Engine scores and filters POI candidates for one generation attempt.
type Engine struct {
	weights Weights
}

func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights}
}

// FilterCandidates applies the hard rejection filters independent of any
// partial selection: minimum/maximum distance from start.
func FilterCandidates(start geo.Coordinates, pois []model.Poi, targetKm float64) []model.Poi {
	maxDist := MaxDistanceFromStartKm(targetKm)
	filtered := make([]model.Poi, 0, len(pois))
	for _, p := range pois {
		d := start.HaversineKm(p.Location)
		if d < MinDistanceFromStartKm || d > maxDist {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// distanceSuitability implements §4.4's piecewise distance-suitability
// term: d is the POI's distance from start, tau is the ideal inscribed
// radius t/2pi.
func distanceSuitability(d, tau float64) float64 {
	if tau <= 0 {
		return 0
	}
	if d <= tau {
		return math.Min(d, tau)/tau*0.8 + 0.2
	}
	return math.Max(0, 1-0.5*(d-tau)/tau)
}

// variationSalt is the deterministic per-attempt pseudo-random offset from
// §4.4 and the original_source's formula: (idx*3 + attempt*11) mod 100,
// normalized to [0, 1).
func variationSalt(idx, attempt int) float64 {
	return float64((idx*3+attempt*11)%100) / 100.0
}

// angularBucket returns which of k buckets of width 2pi/k the bearing
// falls into.
func angularBucket(bearing float64, k int) int {
	if k <= 0 {
		return 0
	}
	bucketWidth := 2 * math.Pi / float64(k)
	return int(bearing / bucketWidth)
}

// scoreCandidate computes the weighted sum for poi given the partial
// selection already made (for diversity/angular bonuses), the request
// target distance, the hidden-gems flag, and the attempt index used for
// the variation salt.
func (e *Engine) scoreCandidate(start geo.Coordinates, poi model.Poi, partial []model.Poi, targetKm float64, hiddenGems bool, k, idx, attempt int) float64 {
	d := start.HaversineKm(poi.Location)
	tau := targetKm / (2 * math.Pi)

	distScore := distanceSuitability(d, tau)
	qualityScore := poi.QualityScore(hiddenGems)

	diversityScore := 0.0
	occupiedCategories := make(map[model.PoiCategory]struct{}, len(partial))
	for _, sel := range partial {
		occupiedCategories[sel.Category] = struct{}{}
	}
	if _, occupied := occupiedCategories[poi.Category]; !occupied {
		diversityScore = 1.0
	}

	angularScore := 0.0
	occupiedBuckets := make(map[int]struct{}, len(partial))
	for _, sel := range partial {
		occupiedBuckets[angularBucket(start.BearingRad(sel.Location), k)] = struct{}{}
	}
	bucket := angularBucket(start.BearingRad(poi.Location), k)
	if _, occupied := occupiedBuckets[bucket]; !occupied {
		angularScore = 1.0
	}

	variationScore := variationSalt(idx, attempt)

	return e.weights.Distance*distScore +
		e.weights.Quality*qualityScore +
		e.weights.Diversity*diversityScore +
		e.weights.Angular*angularScore +
		e.weights.Variation*variationScore
}

// RankCandidates scores every candidate against the empty partial
// selection (the initial ranking pass before combination enumeration) and
// returns them sorted descending by score.
func (e *Engine) RankCandidates(start geo.Coordinates, pois []model.Poi, targetKm float64, hiddenGems bool, k, attempt int) []ScoredCandidate {
	scored := make([]ScoredCandidate, len(pois))
	for i, p := range pois {
		scored[i] = ScoredCandidate{
			Poi:   p,
			Score: e.scoreCandidate(start, p, nil, targetKm, hiddenGems, k, i, attempt),
		}
	}
	sortByScoreDesc(scored)
	return scored
}

func sortByScoreDesc(scored []ScoredCandidate) {
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && scored[j].Score > scored[j-1].Score; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}
}
