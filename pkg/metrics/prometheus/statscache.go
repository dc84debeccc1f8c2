package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/badgehub/badgehub/pkg/metadata/statscache"
	"github.com/badgehub/badgehub/pkg/metrics"
)

// cacheMetrics is the Prometheus implementation of statscache.Metrics.
type cacheMetrics struct {
	lookups       *prometheus.CounterVec
	errors        *prometheus.CounterVec
	invalidations prometheus.Counter
}

// NewStatsCacheMetrics creates the stats cache collectors.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStatsCacheMetrics() *cacheMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &cacheMetrics{
		lookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "badgehub_stats_cache_lookups_total",
				Help: "Total number of stats cache lookups by status",
			},
			[]string{"status"}, // "hit", "miss"
		),
		errors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "badgehub_stats_cache_errors_total",
				Help: "Total number of failed Redis calls by operation",
			},
			[]string{"operation"}, // "get", "set", "del"
		),
		invalidations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "badgehub_stats_cache_invalidations_total",
				Help: "Total number of stats cache invalidations",
			},
		),
	}
}

// RecordLookup records a cache hit or miss.
func (m *cacheMetrics) RecordLookup(hit bool) {
	if m == nil {
		return
	}
	status := "miss"
	if hit {
		status = "hit"
	}
	m.lookups.WithLabelValues(status).Inc()
}

// RecordError records a failed Redis call.
func (m *cacheMetrics) RecordError(operation string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(operation).Inc()
}

// RecordInvalidation records a dropped cache entry.
func (m *cacheMetrics) RecordInvalidation() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}

var _ statscache.Metrics = (*cacheMetrics)(nil)
