package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetrics records latency and cache behavior for catalog searches.
type SearchMetrics struct {
	duration  *prometheus.HistogramVec
	cacheHit  *prometheus.CounterVec
	cacheMiss *prometheus.CounterVec
}

// NewSearchMetrics registers the search metrics on the provided registerer.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	if reg == nil {
		return &SearchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_search_duration_seconds",
		Help:    "Duration of catalog search queries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	cacheHit := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_search_cache_hits",
		Help: "Catalog search results served from cache.",
	}, []string{"operation"})
	cacheMiss := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_search_cache_misses",
		Help: "Catalog search results computed from storage.",
	}, []string{"operation"})
	reg.MustRegister(duration, cacheHit, cacheMiss)
	return &SearchMetrics{
		duration:  duration,
		cacheHit:  cacheHit,
		cacheMiss: cacheMiss,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *SearchMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncCacheHit increments the cache hit counter for the named operation.
func (m *SearchMetrics) IncCacheHit(operation string) {
	if m == nil || m.cacheHit == nil {
		return
	}
	m.cacheHit.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncCacheMiss increments the cache miss counter for the named operation.
func (m *SearchMetrics) IncCacheMiss(operation string) {
	if m == nil || m.cacheMiss == nil {
		return
	}
	m.cacheMiss.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
