// Package metrics exposes Prometheus instrumentation for optimizer runs and
// the result cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal counts optimizer runs by objective and termination reason.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budget_optimizer_runs_total",
		Help: "Total number of optimizer runs",
	}, []string{"objective", "termination"})

	// runIterations measures how many steps each run committed.
	runIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "budget_optimizer_run_iterations",
		Help:    "Number of allocation steps committed per run",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	// runDuration measures optimizer latency.
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "budget_optimizer_run_duration_seconds",
		Help:    "Optimizer run latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// allocatedBudget tracks the budget allocated by the most recent run.
	allocatedBudget = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "budget_optimizer_allocated_budget",
		Help: "Spend allocated by the most recent optimizer run",
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budget_optimizer_cache_lookups_total",
		Help: "Result cache lookups by outcome",
	}, []string{"outcome"})
)

// ObserveRun records one completed optimizer run.
func ObserveRun(objective, termination string, iterations int, spend float64, elapsed time.Duration) {
	runsTotal.WithLabelValues(objective, termination).Inc()
	runIterations.Observe(float64(iterations))
	runDuration.Observe(elapsed.Seconds())
	allocatedBudget.Set(spend)
}

// ObserveCacheHit records a result served from cache.
func ObserveCacheHit() {
	cacheLookups.WithLabelValues("hit").Inc()
}

// ObserveCacheMiss records a lookup that required a fresh run.
func ObserveCacheMiss() {
	cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveCacheError records a cache backend failure.
func ObserveCacheError() {
	cacheLookups.WithLabelValues("error").Inc()
}
