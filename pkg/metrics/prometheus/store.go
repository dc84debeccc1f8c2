// Package prometheus implements the metrics interfaces of the metadata
// packages on top of the shared registry.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metrics"
)

// storeMetrics is the Prometheus implementation of metadata.Metrics.
type storeMetrics struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	projects      prometheus.Gauge
	authors       prometheus.Gauge
	badges        prometheus.Gauge
	events        *prometheus.GaugeVec
	eventProjects *prometheus.GaugeVec
}

// NewStoreMetrics creates the metadata service collectors.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStoreMetrics() *storeMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &storeMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "badgehub_store_operations_total",
				Help: "Total number of metadata store operations by operation and outcome",
			},
			[]string{"operation", "outcome"}, // outcome: ok or an error code
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "badgehub_store_operation_duration_seconds",
				Help: "Duration of metadata store operations in seconds",
				Buckets: []float64{
					0.0005, // 500us - cached reads
					0.001,  // 1ms
					0.005,  // 5ms
					0.01,   // 10ms
					0.05,   // 50ms
					0.1,    // 100ms
					0.5,    // 500ms - publish under contention
					1,      // 1s
					5,      // 5s
				},
			},
			[]string{"operation"},
		),
		projects: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "badgehub_stats_projects",
				Help: "Number of non-deleted projects at the last stats read",
			},
		),
		authors: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "badgehub_stats_authors",
				Help: "Number of distinct project owners at the last stats read",
			},
		),
		badges: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "badgehub_stats_badges",
				Help: "Number of registered badges at the last stats read",
			},
		),
		events: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "badgehub_stats_events",
				Help: "Total reported events by type at the last stats read",
			},
			[]string{"event_type"},
		),
		eventProjects: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "badgehub_stats_event_projects",
				Help: "Distinct projects with at least one event of the type",
			},
			[]string{"event_type"},
		),
	}
}

// ObserveOperation records one completed service call.
func (m *storeMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordStats publishes a stats snapshot as gauges.
func (m *storeMetrics) RecordStats(s *metadata.Stats) {
	if m == nil || s == nil {
		return
	}
	m.projects.Set(float64(s.Projects))
	m.authors.Set(float64(s.Authors))
	m.badges.Set(float64(s.Badges))

	m.events.WithLabelValues(string(metadata.EventInstall)).Set(float64(s.Installs))
	m.events.WithLabelValues(string(metadata.EventLaunch)).Set(float64(s.Launches))
	m.events.WithLabelValues(string(metadata.EventCrash)).Set(float64(s.Crashes))
	m.eventProjects.WithLabelValues(string(metadata.EventInstall)).Set(float64(s.InstalledProjects))
	m.eventProjects.WithLabelValues(string(metadata.EventLaunch)).Set(float64(s.LaunchedProjects))
	m.eventProjects.WithLabelValues(string(metadata.EventCrash)).Set(float64(s.CrashedProjects))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := metadata.Code(err); code != 0 {
		return code.String()
	}
	return "error"
}

var _ metadata.Metrics = (*storeMetrics)(nil)
