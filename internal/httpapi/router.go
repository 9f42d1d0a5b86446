package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/watnow/routeloop/internal/directions"
	"github.com/watnow/routeloop/internal/poirepo"
	"github.com/watnow/routeloop/internal/routecache"
)

// HealthChecker serves §6's /healthz: it probes the POI repository and the
// cache backend, and reports the directions client as configured without
// calling it. It never touches the generation hot path.
type HealthChecker struct {
	repo       poirepo.Repository
	cache      routecache.Cache
	directions directions.Client
}

func NewHealthChecker(repo poirepo.Repository, cache routecache.Cache, directionsClient directions.Client) *HealthChecker {
	return &HealthChecker{repo: repo, cache: cache, directions: directionsClient}
}

// GetHealthz reports reachability of the repository and the cache, per §6.
// Only a repository failure turns the response into 503; a cache failure is
// reported in the body with a 200 status. The directions client is not
// probed and is always reported as "configured".
func (h *HealthChecker) GetHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	overall := http.StatusOK

	if _, err := h.repo.Count(ctx); err != nil {
		checks["repository"] = "unreachable: " + err.Error()
		overall = http.StatusServiceUnavailable
	} else {
		checks["repository"] = "ok"
	}

	if _, _, err := h.cache.Get(ctx, "healthz:probe"); err != nil {
		checks["cache"] = "unreachable: " + err.Error()
	} else {
		checks["cache"] = "ok"
	}

	checks["directions"] = "configured"

	c.JSON(overall, gin.H{"status": checks})
}

// NewRouter assembles the gin.Engine, grouping the loop-generation endpoint
// the way the teacher groups its own route-proposal endpoints, plus
// /healthz and a promhttp.Handler() mount at /metrics per the ambient
// stack's operational-metrics section.
func NewRouter(loopHandler *LoopHandler, health *HealthChecker, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	r.GET("/healthz", health.GetHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	loops := r.Group("/loops")
	{
		loops.POST("", loopHandler.PostLoop)
	}

	return r
}

// requestLogger is a minimal zap-backed access log middleware, generalized
// from the corpus's convention of injecting a structured logger rather than
// gin's own default text logger.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
