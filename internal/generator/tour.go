package generator

import (
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
	"github.com/watnow/routeloop/internal/waypoint"
)

// nearestNeighbourTour orders pois starting from start by repeatedly
// visiting the closest unvisited point, per §4.5 step 3c. It is a
// heuristic lower-bound ordering, not required to be optimal (§9's open
// question explicitly permits any <=-preserving substitute).
func nearestNeighbourTour(start geo.Coordinates, pois []model.Poi) []model.Poi {
	remaining := append([]model.Poi(nil), pois...)
	ordered := make([]model.Poi, 0, len(pois))
	current := start
	for len(remaining) > 0 {
		bestIdx := 0
		bestDist := current.HaversineKm(remaining[0].Location)
		for i := 1; i < len(remaining); i++ {
			d := current.HaversineKm(remaining[i].Location)
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		ordered = append(ordered, remaining[bestIdx])
		current = remaining[bestIdx].Location
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return ordered
}

// tourLengthKm is the nearest-neighbour loop length: start -> ordered
// waypoints -> start. This is the cheap lower-bound the pre-directions
// geometric filter (§5) compares against the tolerance window before any
// network call.
func tourLengthKm(start geo.Coordinates, ordered []model.Poi) float64 {
	if len(ordered) == 0 {
		return 0
	}
	total := 0.0
	current := start
	for _, p := range ordered {
		total += current.HaversineKm(p.Location)
		current = p.Location
	}
	total += current.HaversineKm(start)
	return total
}

// passesGeometricPrefilter implements §5's cost guard: the nearest-
// neighbour tour length lower bound must fall within
// [target*(1-tolerance)*WaypointDistanceMultiplier(k), target*(1+tolerance)],
// else the combination is rejected without a directions call. The lower
// bound scales with k because a k-waypoint loop's minimum plausible length
// (all legs collapsed toward the start) shrinks as k grows, per the
// original_source's per-waypoint-count distance budget.
func passesGeometricPrefilter(tourKm, targetKm, tolerance float64, k int) bool {
	upper := targetKm * (1 + tolerance)
	lower := targetKm * (1 - tolerance) * waypoint.WaypointDistanceMultiplier(k)
	return tourKm >= lower && tourKm <= upper
}

// waypointSequence builds the full directions-client waypoint list:
// start, ordered POIs, start (closing the loop).
func waypointSequence(start geo.Coordinates, ordered []model.Poi) []geo.Coordinates {
	seq := make([]geo.Coordinates, 0, len(ordered)+2)
	seq = append(seq, start)
	for _, p := range ordered {
		seq = append(seq, p.Location)
	}
	seq = append(seq, start)
	return seq
}
