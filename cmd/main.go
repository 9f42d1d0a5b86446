package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/watnow/routeloop/internal/config"
	"github.com/watnow/routeloop/internal/directions"
	"github.com/watnow/routeloop/internal/generator"
	"github.com/watnow/routeloop/internal/httpapi"
	"github.com/watnow/routeloop/internal/logging"
	"github.com/watnow/routeloop/internal/poirepo"
	"github.com/watnow/routeloop/internal/routecache"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Env)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	repo, closeRepo, err := newRepository(cfg, logger)
	if err != nil {
		logger.Fatal("poi repository init failed", zap.Error(err))
	}
	defer closeRepo()

	cache := newCache(cfg, logger)
	poiCache := newPoiCache(cfg, logger)

	directionsClient := directions.NewClient(
		cfg.Directions.BaseURL,
		cfg.Directions.ProxyBaseURL,
		cfg.Directions.SharedSecret,
		cfg.Directions.BearerToken,
		cfg.Directions.PerCallTimeout,
	)

	genCfg := generator.DefaultConfig()
	genCfg.MaxFanOut = cfg.Concurrency.MaxFanOut
	genCfg.MaxCombinationsPerTolerance = cfg.Concurrency.MaxCombinationsPerTol
	genCfg.MaxRetries = cfg.Concurrency.MaxRetries
	genCfg.DirectionsBudgetCeiling = cfg.Concurrency.DirectionsBudgetCeil
	genCfg.RouteCacheTTL = cfg.Cache.RouteTTL
	genCfg.PoiRegionCacheTTL = cfg.Cache.PoiRegionTTL

	gen := generator.New(repo, cache, poiCache, directionsClient, logger, genCfg)

	loopHandler := httpapi.NewLoopHandler(gen, logger)
	health := httpapi.NewHealthChecker(repo, cache, directionsClient)
	router := httpapi.NewRouter(loopHandler, health, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("route discovery core starting", zap.String("addr", addr), zap.String("poi_backend", cfg.PoiBackend))
	log.Fatal(http.ListenAndServe(addr, router))
}

// newRepository selects the POI backend named by cfg.PoiBackend, per §6:
// "sqlite" selects the embedded SQLite region database; any other value
// selects PostGIS.
func newRepository(cfg *config.Config, logger *zap.Logger) (poirepo.Repository, func(), error) {
	switch cfg.PoiBackend {
	case "sqlite":
		db, err := sql.Open("sqlite", cfg.SQLite.Path)
		if err != nil {
			return nil, func() {}, fmt.Errorf("sqlite open failed: %w", err)
		}
		repo := poirepo.NewSqliteRepository(db, logger)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, func() {}, fmt.Errorf("sqlite schema setup failed: %w", err)
		}
		return repo, func() { db.Close() }, nil
	default:
		db, err := sqlx.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return nil, func() {}, fmt.Errorf("postgres open failed: %w", err)
		}
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConn)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConn)
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, func() {}, fmt.Errorf("postgres ping failed: %w", err)
		}
		repo := poirepo.NewPostgisRepository(db, logger)
		return repo, func() { db.Close() }, nil
	}
}

// newCache composes the hierarchical cache per §4.2: an external Redis
// tier in front of the bounded in-process LRU fallback, active even when
// no Redis address is configured.
func newCache(cfg *config.Config, logger *zap.Logger) routecache.Cache {
	fallback := routecache.NewMemoryCache(cfg.Cache.MemoryCacheMaxEntries)

	var external routecache.Cache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		external = routecache.NewRedisCache(client, logger)
	}

	return routecache.NewHierarchicalCache(external, fallback, "route", logger)
}

// newPoiCache composes the original_source's second cache tier (§9
// supplement): the raw POI pool per region, cached separately from the
// finished-route cache under its own longer TTL.
func newPoiCache(cfg *config.Config, logger *zap.Logger) routecache.PoiCache {
	fallback := routecache.NewMemoryPoiCache(cfg.Cache.MemoryCacheMaxEntries)

	var external routecache.PoiCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		external = routecache.NewRedisPoiCache(client, logger)
	}

	return routecache.NewHierarchicalPoiCache(external, fallback, logger)
}
