// Package collector runs one LeoNTP collection cycle and fans the result out.
//
// A cycle is a status query through a StatusCollector followed by a
// Registry of publishers:
//   - ConsolePublisher: prints the human-readable report
//   - InfluxPublisher: pushes one line-protocol record to InfluxDB
//   - GaugePublisher: updates the Prometheus gauges
//   - TextfilePublisher: writes the gauges for node_exporter's textfile collector
//
// Usage:
//
//	cfg, _ := config.LoadFromYamlWithEnvOverrides("config.yaml")
//	reg := metrics.NewRegistryWithConfig(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
//	c := collector.NewStatusCollector(cfg, collector.NewQuerier(cfg), reg.GetMetrics())
//	cycle, err := collector.RunOnce(ctx, c, collector.NewPublishers(cfg, reg, os.Stdout, os.Stderr))
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/maximewewer/leontp-stats/internal/config"
	"github.com/maximewewer/leontp-stats/internal/leontp"
	"github.com/maximewewer/leontp-stats/pkg/civil"
	"github.com/maximewewer/leontp-stats/pkg/logger"
	"github.com/maximewewer/leontp-stats/pkg/metrics"
)

// Reading is the outcome of one successful status query
type Reading struct {
	// Address is the configured device address, Target the dialed host:port
	Address string
	Target  string

	Status         *leontp.Status
	Civil          civil.Timestamp
	TimestampNanos int64
	QueriedAt      time.Time

	// Set only when the offset probe is enabled
	Offset    *leontp.Offset
	OffsetErr error
}

// OffsetProber measures the local clock against the device
type OffsetProber interface {
	Probe(ctx context.Context, target string) (*leontp.Offset, error)
}

// StatusCollector queries the device and builds a Reading
type StatusCollector struct {
	address string
	target  string
	querier leontp.Querier
	probe   OffsetProber
	metrics *metrics.LeoNTPMetrics
	now     func() time.Time
}

// NewStatusCollector creates a collector for the device named in cfg
func NewStatusCollector(cfg *config.Config, querier leontp.Querier, m *metrics.LeoNTPMetrics) *StatusCollector {
	c := &StatusCollector{
		address: cfg.LeoNTP.Address,
		target:  cfg.Target(),
		querier: querier,
		metrics: m,
		now:     time.Now,
	}
	if cfg.Options.CheckOffset {
		c.probe = leontp.NewOffsetProbe(cfg.LeoNTP.Timeout)
	}
	return c
}

// SetOffsetProbe replaces the offset probe; nil disables it
func (c *StatusCollector) SetOffsetProbe(p OffsetProber) {
	c.probe = p
}

// Target returns the host:port being queried
func (c *StatusCollector) Target() string {
	return c.target
}

// Collect performs one status query. The query error stays in the chain, so
// errors.Is tells a timeout from a decode failure.
func (c *StatusCollector) Collect(ctx context.Context) (*Reading, error) {
	m := c.metrics
	start := time.Now()

	status, err := c.querier.Query(ctx, c.target)
	duration := time.Since(start)
	m.QueryDurationSeconds.WithLabelValues(c.target).Observe(duration.Seconds())

	if err != nil {
		m.QueriesTotal.WithLabelValues(c.target, "failure").Inc()
		m.Up.WithLabelValues(c.target).Set(0)
		logger.SafeError("collector", "Status query failed", err, map[string]interface{}{
			"target": c.target,
		})
		return nil, fmt.Errorf("failed to query LeoNTP %s: %w", c.target, err)
	}

	m.QueriesTotal.WithLabelValues(c.target, "success").Inc()
	m.Up.WithLabelValues(c.target).Set(1)

	reading := &Reading{
		Address:        c.address,
		Target:         c.target,
		Status:         status,
		Civil:          status.Civil(),
		TimestampNanos: status.TimestampNanos(),
		QueriedAt:      c.now(),
	}
	m.LastSuccessTimestamp.WithLabelValues(c.target).Set(
		float64(reading.QueriedAt.Unix()) + float64(reading.QueriedAt.Nanosecond())/1e9)

	logger.Query("status", c.target, map[string]interface{}{
		"duration":   duration.Seconds(),
		"uptime":     status.Uptime,
		"satellites": status.ActiveSatellites,
	})

	if c.probe != nil {
		reading.Offset, reading.OffsetErr = c.probe.Probe(ctx, c.target)
		if reading.OffsetErr != nil {
			logger.SafeWarn("collector", "Offset probe failed", map[string]interface{}{
				"target": c.target,
				"error":  reading.OffsetErr.Error(),
			})
		}
	}

	return reading, nil
}

// Cycle is the result of RunOnce
type Cycle struct {
	Reading *Reading
	// PublishErr joins every publisher failure; it never fails the cycle
	PublishErr error
}

// RunOnce queries the device then publishes the reading. The returned error
// is the query error only; nothing is published when the query fails.
func RunOnce(ctx context.Context, c *StatusCollector, publishers *Registry) (*Cycle, error) {
	reading, err := c.Collect(ctx)
	if err != nil {
		return nil, err
	}

	return &Cycle{
		Reading:    reading,
		PublishErr: publishers.PublishAll(ctx, reading),
	}, nil
}
