// Package metrics owns the Prometheus registry shared by every collector.
//
// Collectors live in pkg/metrics/prometheus and are only created after
// InitRegistry; until then their constructors return nil and callers pass
// nil down, which disables collection.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process registry with Go runtime and process
// collectors. Calling it again returns the existing registry.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return registry
}

// GetRegistry returns the registry, or nil if metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// IsEnabled reports whether InitRegistry was called.
func IsEnabled() bool {
	return GetRegistry() != nil
}

// Handler serves the registry in the Prometheus exposition format. With
// metrics disabled it answers 404.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Reset drops the registry. Tests use it to start from a clean slate.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = nil
}
