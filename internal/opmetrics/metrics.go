// Package opmetrics exposes the service's operational Prometheus metrics,
// distinct from the pure-function route metrics in routemetrics. It is
// grounded on the corpus's promauto counter/histogram-vec pattern but
// instantiated for this domain's own concerns: directions-call budget
// consumption, cache tier hit/miss rates, and generation latency.
package opmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DirectionsCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeloop",
		Subsystem: "directions",
		Name:      "calls_total",
		Help:      "Total directions client calls, by outcome",
	}, []string{"outcome"})

	DirectionsCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routeloop",
		Subsystem: "directions",
		Name:      "call_duration_seconds",
		Help:      "Directions client call latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"mode"})

	DirectionsBudgetConsumed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routeloop",
		Subsystem: "directions",
		Name:      "budget_consumed",
		Help:      "Directions calls consumed by the most recently completed request",
	})

	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeloop",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits, by tier",
	}, []string{"tier"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routeloop",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses, by tier",
	}, []string{"tier"})

	RouteGenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routeloop",
		Subsystem: "generator",
		Name:      "generation_duration_seconds",
		Help:      "End-to-end loop generation latency, by outcome",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"outcome"})

	RepositoryQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routeloop",
		Subsystem: "repository",
		Name:      "query_duration_seconds",
		Help:      "POI repository query latency, by operation",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"operation"})
)
