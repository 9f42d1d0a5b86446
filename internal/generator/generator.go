// Package generator implements the Route Generator (C6): the orchestrator
// that ties the POI repository, waypoint engine, directions client, route
// cache, snapping service, and scoring strategy together into §4.5's
// end-to-end loop generation pipeline.
package generator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/watnow/routeloop/internal/apperr"
	"github.com/watnow/routeloop/internal/directions"
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
	"github.com/watnow/routeloop/internal/opmetrics"
	"github.com/watnow/routeloop/internal/poirepo"
	"github.com/watnow/routeloop/internal/routecache"
	"github.com/watnow/routeloop/internal/routemetrics"
	"github.com/watnow/routeloop/internal/routescore"
	"github.com/watnow/routeloop/internal/snapping"
	"github.com/watnow/routeloop/internal/waypoint"
)

// Generator wires every collaborator named in §4 behind a single Generate
// entry point. It holds no per-request state; all of that lives in the
// call stack of a single Generate invocation.
type Generator struct {
	repo       poirepo.Repository
	cache      routecache.Cache
	poiCache   routecache.PoiCache
	directions directions.Client
	snapper    *snapping.Service
	engine     *waypoint.Engine
	score      routescore.Strategy
	logger     *zap.Logger
	cfg        Config
}

// New constructs a Generator from its collaborators and config. poiCache
// may be nil, in which case every request fetches its POI pool directly
// from repo (the original_source's region-cache tier is an optimization,
// not a correctness requirement).
func New(repo poirepo.Repository, cache routecache.Cache, poiCache routecache.PoiCache, directionsClient directions.Client, logger *zap.Logger, cfg Config) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		repo:       repo,
		cache:      cache,
		poiCache:   poiCache,
		directions: directionsClient,
		snapper:    snapping.NewService(repo, cfg.SnapRadiusMeters, cfg.SnapBboxLimit),
		engine:     waypoint.NewEngine(cfg.Weights),
		score:      cfg.scoringStrategy(),
		logger:     logger,
		cfg:        cfg,
	}
}

// poiFetchRadiusMeters is the POI pool fetch radius relative to the
// request's target distance: half the target loop length (t*500 m), far
// wider than the loop's inscribed radius so the waypoint engine has real
// choice.
func poiFetchRadiusMeters(targetKm float64) float64 {
	return targetKm * 500
}

// fetchPoiPool implements the original_source's POI-region cache tier
// (§9 supplement): check the longer-TTL region cache before querying the
// repository, populating it on miss.
func (g *Generator) fetchPoiPool(ctx context.Context, center geo.Coordinates, radiusMeters float64, categories []model.PoiCategory) ([]model.Poi, error) {
	if g.poiCache == nil {
		return g.repo.FindWithinRadius(ctx, center, radiusMeters, categories, 200)
	}

	key := routecache.BuildPoiRegionKey(center, radiusMeters, categories)
	if cached, hit, err := g.poiCache.Get(ctx, key); err == nil && hit {
		return cached, nil
	} else if err != nil {
		g.logger.Warn("poi-region cache get failed, falling through to repository", zap.Error(err))
	}

	pool, err := g.repo.FindWithinRadius(ctx, center, radiusMeters, categories, 200)
	if err != nil {
		return nil, err
	}
	if err := g.poiCache.Put(ctx, key, pool, g.cfg.PoiRegionCacheTTL); err != nil {
		g.logger.Warn("poi-region cache put failed", zap.Error(err))
	}
	return pool, nil
}

// Generate implements §4.5 end to end: cache lookup, POI pool fetch,
// tolerance-escalating search with geometric fallback, alternative
// generation, snapping enrichment, metrics, and scoring. It returns the
// accepted routes sorted by score descending, truncated to
// prefs.MaxAlternatives.
func (g *Generator) Generate(ctx context.Context, req model.LoopRequest) ([]model.Route, error) {
	start := time.Now()
	outcome := "error"
	defer func() {
		opmetrics.RouteGenerationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	if err := req.Validate(); err != nil {
		outcome = "validation_error"
		return nil, apperr.Wrap(apperr.KindValidation, "invalid loop request", err)
	}
	prefs := req.Preferences.NormalizedPreferences()
	req.Preferences = prefs

	cacheKey := routecache.BuildLoopKey(req.Start, req.DistanceKm, req.Mode, prefs.Categories, prefs.HiddenGems)
	if cached, hit, err := g.cache.Get(ctx, cacheKey); err == nil && hit {
		opmetrics.CacheHitsTotal.WithLabelValues("route").Inc()
		outcome = "cache_hit"
		return truncateRoutes(cached, prefs.MaxAlternatives), nil
	} else if err != nil {
		g.logger.Warn("route cache get failed, falling through to generation", zap.Error(err))
	}
	opmetrics.CacheMissesTotal.WithLabelValues("route").Inc()

	pool, err := g.fetchPoiPool(ctx, req.Start, poiFetchRadiusMeters(req.DistanceKm), prefs.Categories)
	if err != nil {
		outcome = "storage_error"
		return nil, apperr.Wrap(apperr.KindStorage, "poi pool fetch failed", err)
	}
	if len(pool) < 2 {
		outcome = "insufficient_pois"
		return nil, apperr.Insufficient(len(pool))
	}

	budget := newCallBudget(g.cfg.DirectionsBudgetCeiling)
	defer func() { opmetrics.DirectionsBudgetConsumed.Set(float64(budget.Consumed())) }()

	seen := make(map[string]struct{})

	primary, searchErr := g.search(ctx, req, prefs, pool, budget, seen, 0)
	if searchErr != nil && searchErr != errBudgetExhausted {
		return nil, apperr.Wrap(apperr.KindCancelled, "route generation cancelled", searchErr)
	}

	var accepted []model.Route
	if primary != nil {
		accepted = append(accepted, primary.route)
	} else {
		fallbackRoute, fbErr := g.geometricFallback(ctx, req, budget)
		if fbErr != nil {
			outcome = "directions_unavailable"
			return nil, apperr.Wrap(apperr.KindDirectionsUnavailable, "no route found within tolerance and fallback exhausted", fbErr)
		}
		accepted = append(accepted, *fallbackRoute)
	}

	g.generateAlternatives(ctx, req, prefs, pool, budget, seen, &accepted)

	if len(accepted) < g.cfg.MinAlternativesForSuccess && len(accepted) >= 1 {
		g.logger.Info("fewer alternatives than preferred, returning what was found",
			zap.Int("accepted", len(accepted)), zap.Int("preferred_minimum", g.cfg.MinAlternativesForSuccess))
	}

	g.finalize(ctx, req, accepted)

	if len(accepted) > g.cfg.MaxAlternativesClamp {
		accepted = accepted[:g.cfg.MaxAlternativesClamp]
	}
	accepted = truncateRoutes(accepted, prefs.MaxAlternatives)

	if err := g.cache.Put(ctx, cacheKey, accepted, g.cfg.RouteCacheTTL); err != nil {
		g.logger.Warn("route cache put failed", zap.Error(err))
	}

	outcome = "success"
	return accepted, nil
}

// generateAlternatives implements §4.5 step 5: further search passes until
// prefs.MaxAlternatives routes are accepted, each seeded to diversify k and
// variation salt, rejecting any candidate whose path overlaps an
// already-accepted route by more than 70% (§8 invariant 4). A failed or
// rejected pass ends the loop once the seed exceeds 3*prefs.MaxAlternatives;
// a cancelled context or an exhausted call budget also ends it.
func (g *Generator) generateAlternatives(ctx context.Context, req model.LoopRequest, prefs model.Preferences, pool []model.Poi, budget *callBudget, seen map[string]struct{}, accepted *[]model.Route) {
	const maxOverlap = 0.70
	attemptSeed := 1
	for len(*accepted) < prefs.MaxAlternatives {
		if ctx.Err() != nil || budget.Consumed() >= g.cfg.DirectionsBudgetCeiling {
			return
		}
		result, err := g.search(ctx, req, prefs, pool, budget, seen, attemptSeed)
		attemptSeed++
		if err != nil || result == nil {
			if attemptSeed > prefs.MaxAlternatives*3 {
				return
			}
			continue
		}

		overlaps := false
		for _, existing := range *accepted {
			if routemetrics.OverlapFraction(result.route.Polyline, existing.Polyline) > maxOverlap {
				overlaps = true
				break
			}
		}
		if overlaps {
			if attemptSeed > prefs.MaxAlternatives*3 {
				return
			}
			continue
		}
		*accepted = append(*accepted, result.route)
	}
}

// finalize attaches snapped POIs, computed route metrics, and the final
// score to every accepted route, per §4.6-§4.8.
func (g *Generator) finalize(ctx context.Context, req model.LoopRequest, routes []model.Route) {
	for i := range routes {
		snapped, err := g.snapper.Snap(ctx, routes[i].Polyline, poisOf(routes[i]), req.Preferences.Categories)
		if err != nil {
			g.logger.Warn("snapping pass failed, route kept without enrichment", zap.Error(err))
		} else {
			routes[i].SnappedPois = snapped
		}
	}
	for i := range routes {
		comparison := make([]model.Route, 0, len(routes)-1)
		for j := range routes {
			if j != i {
				comparison = append(comparison, routes[j])
			}
		}
		metrics := routemetrics.Compute(routes[i], comparison)
		routes[i].Metrics = &metrics
		routes[i].Score = g.score.Score(routes[i], req.DistanceKm, req.Preferences.HiddenGems)
	}
	sortRoutesByScoreDesc(routes)
}

func poisOf(route model.Route) []model.Poi {
	pois := make([]model.Poi, len(route.Pois))
	for i, wp := range route.Pois {
		pois[i] = wp.Poi
	}
	return pois
}

func sortRoutesByScoreDesc(routes []model.Route) {
	for i := 1; i < len(routes); i++ {
		for j := i; j > 0 && routes[j].Score > routes[j-1].Score; j-- {
			routes[j], routes[j-1] = routes[j-1], routes[j]
		}
	}
}

func truncateRoutes(routes []model.Route, max int) []model.Route {
	if max <= 0 || len(routes) <= max {
		return routes
	}
	return routes[:max]
}
