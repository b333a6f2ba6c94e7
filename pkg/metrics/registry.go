package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry manages Prometheus metric registration
type Registry struct {
	registry *prometheus.Registry
	metrics  *LeoNTPMetrics
}

// NewRegistry creates a new metrics registry with the default namespace "leontp"
func NewRegistry() *Registry {
	return NewRegistryWithConfig("leontp", "")
}

// NewRegistryWithConfig creates a new metrics registry with custom namespace and subsystem
func NewRegistryWithConfig(namespace, subsystem string) *Registry {
	return &Registry{
		registry: prometheus.NewRegistry(),
		metrics:  NewLeoNTPMetricsWithConfig(namespace, subsystem),
	}
}

// Register registers the LeoNTP metrics only. Runtime collectors are left
// out so the registry can be written to a node_exporter textfile.
func (r *Registry) Register() error {
	return r.registry.Register(r.metrics)
}

// RegisterRuntime adds Go runtime and process metrics, for the watch-mode endpoint
func (r *Registry) RegisterRuntime() error {
	if err := r.registry.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	return r.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// GetRegistry returns the underlying Prometheus registry
func (r *Registry) GetRegistry() *prometheus.Registry {
	return r.registry
}

// GetMetrics returns the LeoNTP metrics instance
func (r *Registry) GetMetrics() *LeoNTPMetrics {
	return r.metrics
}

// MustRegister registers the LeoNTP metrics and panics on error
func (r *Registry) MustRegister() {
	if err := r.Register(); err != nil {
		panic(err)
	}
}
