package collector

import (
	"context"
	"fmt"

	"github.com/maximewewer/leontp-stats/pkg/logger"
	"github.com/maximewewer/leontp-stats/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// TextfilePublisher writes the LeoNTP metrics in Prometheus text format for
// node_exporter's textfile collector. Runtime metrics are never included.
type TextfilePublisher struct {
	commonPublisher
	path     string
	gatherer prometheus.Gatherer
}

// NewTextfilePublisher creates a publisher writing to path; an empty path disables it
func NewTextfilePublisher(path string, m *metrics.LeoNTPMetrics) *TextfilePublisher {
	registry := prometheus.NewRegistry()
	registry.MustRegister(m)

	return &TextfilePublisher{
		commonPublisher: newCommonPublisher("textfile", path != ""),
		path:            path,
		gatherer:        registry,
	}
}

// Publish writes the file atomically (temporary file, then rename)
func (p *TextfilePublisher) Publish(_ context.Context, _ *Reading) error {
	if err := prometheus.WriteToTextfile(p.path, p.gatherer); err != nil {
		return fmt.Errorf("failed to write textfile %s: %w", p.path, err)
	}

	logger.SafeDebug("collector", "Textfile written", map[string]interface{}{
		"path": p.path,
	})
	return nil
}
