package generator

import (
	"time"

	"github.com/watnow/routeloop/internal/routescore"
	"github.com/watnow/routeloop/internal/waypoint"
)

// Config bundles every tunable constant named in §4-§5 of the design, so
// operators can retune the generator's behavior without a rebuild (wired
// from internal/config's viper-backed defaults).
type Config struct {
	MaxRetries                  int
	MaxCombinationsPerTolerance int
	MaxFanOut                   int
	DirectionsBudgetCeiling     int
	MinPoiSeparationKm          float64
	SnapRadiusMeters            float64
	SnapBboxLimit               int
	RouteCacheTTL               time.Duration
	PoiRegionCacheTTL           time.Duration
	MaxAlternativesClamp        int
	MinAlternativesForSuccess   int
	FallbackAttempts            int
	DistanceCorrectionDamping   float64
	ScoreStrategy               string // "v1" | "v2"
	Weights                     waypoint.Weights
}

// DefaultConfig pins every numeric default the design states explicitly.
func DefaultConfig() Config {
	return Config{
		MaxRetries:                  5,
		MaxCombinationsPerTolerance: waypoint.MaxCombinationsPerTolerance,
		MaxFanOut:                   5,
		DirectionsBudgetCeiling:     60,
		MinPoiSeparationKm:          waypoint.MinPoiSeparationKm,
		SnapRadiusMeters:            100,
		SnapBboxLimit:               200,
		RouteCacheTTL:               24 * time.Hour,
		PoiRegionCacheTTL:           7 * 24 * time.Hour,
		MaxAlternativesClamp:        5,
		MinAlternativesForSuccess:   3,
		FallbackAttempts:            3,
		DistanceCorrectionDamping:   0.85,
		ScoreStrategy:               "v1",
		Weights:                     waypoint.DefaultWeights,
	}
}

// scoringStrategy resolves the construction-time strategy (§4.6).
func (c Config) scoringStrategy() routescore.Strategy {
	return routescore.ForName(c.ScoreStrategy)
}
