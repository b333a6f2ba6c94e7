package collector

import (
	"context"
	"strconv"

	"github.com/maximewewer/leontp-stats/pkg/logger"
	"github.com/maximewewer/leontp-stats/pkg/metrics"
)

// GaugePublisher mirrors the reading into Prometheus gauges
type GaugePublisher struct {
	commonPublisher
	metrics *metrics.LeoNTPMetrics
}

// NewGaugePublisher creates an always-enabled gauge publisher
func NewGaugePublisher(m *metrics.LeoNTPMetrics) *GaugePublisher {
	return &GaugePublisher{
		commonPublisher: newCommonPublisher("gauges", true),
		metrics:         m,
	}
}

// Publish updates the device gauges, and the probe gauges when an offset is attached
func (p *GaugePublisher) Publish(_ context.Context, reading *Reading) error {
	m := p.metrics
	s := reading.Status
	target := reading.Target

	m.ReferenceTimestamp.WithLabelValues(target).Set(float64(reading.TimestampNanos) / 1e9)
	m.UptimeSeconds.WithLabelValues(target).Set(float64(s.Uptime))
	m.NTPRequestsServed.WithLabelValues(target).Set(float64(s.NTPRequests))
	m.Mode6RequestsServed.WithLabelValues(target).Set(float64(s.Mode6Requests))
	m.GPSLockSeconds.WithLabelValues(target).Set(float64(s.GPSLockTime))
	m.GPSFlags.WithLabelValues(target).Set(float64(s.Flags))
	m.ActiveSatellites.WithLabelValues(target).Set(float64(s.ActiveSatellites))

	// A firmware upgrade changes the label set; keep a single series per target
	m.DeviceInfo.DeletePartialMatch(map[string]string{"target": target})
	m.DeviceInfo.WithLabelValues(target, strconv.Itoa(int(s.SerialNumber)), s.FirmwareVersion()).Set(1)

	if o := reading.Offset; o != nil {
		m.OffsetSeconds.WithLabelValues(target).Set(o.ClockOffset.Seconds())
		m.RTTSeconds.WithLabelValues(target).Set(o.RTT.Seconds())
		m.Stratum.WithLabelValues(target).Set(float64(o.Stratum))
		m.LeapIndicator.WithLabelValues(target).Set(float64(o.LeapIndicator))
	}

	logger.SafeDebug("collector", "Gauges updated", map[string]interface{}{
		"target":     target,
		"uptime":     s.Uptime,
		"satellites": s.ActiveSatellites,
	})

	return nil
}
