package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantkit_resolutions_total",
		Help: "Tenant resolutions by outcome code",
	}, []string{"code"})

	resolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenantkit_resolution_duration_seconds",
		Help:    "Duration of tenant resolutions",
		Buckets: prometheus.DefBuckets,
	}, []string{"code"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantkit_cache_lookups_total",
		Help: "Tenant cache lookups by result",
	}, []string{"result"})

	storeCalls = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenantkit_store_call_duration_seconds",
		Help:    "Duration of backing store calls by operation and result",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "result"})

	cacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantkit_cache_invalidations_total",
		Help: "Tenant cache invalidations by scope and source",
	}, []string{"scope", "source"})
)

// CodeResolved labels successful resolutions.
const CodeResolved = "RESOLVED"

// ObserveResolution records the outcome of one resolution.
func ObserveResolution(code string, d time.Duration) {
	resolutionsTotal.WithLabelValues(code).Inc()
	resolutionDuration.WithLabelValues(code).Observe(d.Seconds())
}

// ObserveCacheLookup counts a cache hit or miss.
func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

// ObserveStoreCall records one call to the backing store.
func ObserveStoreCall(operation, result string, d time.Duration) {
	storeCalls.WithLabelValues(operation, result).Observe(d.Seconds())
}

// ObserveInvalidation counts a cache invalidation. scope is "key" or "all".
func ObserveInvalidation(scope, source string) {
	cacheInvalidations.WithLabelValues(scope, source).Inc()
}
