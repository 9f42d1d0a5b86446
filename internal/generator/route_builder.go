package generator

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/watnow/routeloop/internal/directions"
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// adjustedTarget computes t' for retry attempt r, per §4.5 step 3a.
func adjustedTarget(targetKm float64, r int) float64 {
	switch {
	case r == 0:
		return targetKm
	case r == 1 || r == 2:
		return targetKm * (0.8 + 0.2*float64(r))
	default:
		return targetKm * (0.6 + 0.15*float64(r))
	}
}

// withinTolerance reports whether actualKm is within the relative
// tolerance window of targetKm, per §4.5 step 3e / §8 invariant 1.
func withinTolerance(actualKm, targetKm, tolerance float64) bool {
	if targetKm <= 0 {
		return false
	}
	return math.Abs(actualKm-targetKm)/targetKm <= tolerance
}

// comboSignature is a stable identity for a k-tuple of POIs, used to skip
// re-exploring the same combination across tolerance levels and
// alternative-generation passes.
func comboSignature(pois []model.Poi) string {
	ids := make([]string, len(pois))
	for i, p := range pois {
		ids[i] = p.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// eligibleWaypointCounts returns the k values the generator may use for a
// given base count, per the original_source's waypoint-count alternation:
// when the §4.4 table yields k=3, k=2 remains eligible for diversifying
// alternative generation; the table's own choice is always eligible.
func eligibleWaypointCounts(kBase int) []int {
	if kBase == 3 {
		return []int{3, 2}
	}
	return []int{kBase}
}

// buildRoute assembles a model.Route from an ordered set of waypoint POIs
// and the directions client's normalized result.
func buildRoute(ordered []model.Poi, result directions.Result, fallback bool) model.Route {
	routePois := make([]model.RoutePoi, len(ordered))
	prevDist := 0.0
	for i, p := range ordered {
		d := result.Polyline.ArcLengthToNearestFootKm(p.Location)
		if d <= prevDist {
			d = prevDist + 0.001
		}
		routePois[i] = model.RoutePoi{Poi: p, OrderInRoute: i + 1, DistanceFromStartKm: d}
		prevDist = d
	}

	return model.Route{
		ID:              uuid.New().String(),
		DistanceKm:      result.TotalDistanceM / 1000.0,
		DurationMinutes: result.TotalDurationS / 60,
		Polyline:        result.Polyline,
		Pois:            routePois,
		IsFallback:      fallback,
		CreatedAt:       time.Now(),
	}
}

// closeLoopSequence builds the directions waypoint list start -> ordered
// points -> start.
func closeLoopSequence(start geo.Coordinates, points []geo.Coordinates) []geo.Coordinates {
	seq := make([]geo.Coordinates, 0, len(points)+2)
	seq = append(seq, start)
	seq = append(seq, points...)
	seq = append(seq, start)
	return seq
}

func clampDamping(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
