package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LeoNTPMetrics encapsulates all LeoNTP collector metrics
type LeoNTPMetrics struct {
	// Device status, as decoded from the last successful query
	Up                  *prometheus.GaugeVec
	ReferenceTimestamp  *prometheus.GaugeVec
	UptimeSeconds       *prometheus.GaugeVec
	NTPRequestsServed   *prometheus.GaugeVec
	Mode6RequestsServed *prometheus.GaugeVec
	GPSLockSeconds      *prometheus.GaugeVec
	GPSFlags            *prometheus.GaugeVec
	ActiveSatellites    *prometheus.GaugeVec
	DeviceInfo          *prometheus.GaugeVec

	// Client-mode NTP probe
	OffsetSeconds *prometheus.GaugeVec
	RTTSeconds    *prometheus.GaugeVec
	Stratum       *prometheus.GaugeVec
	LeapIndicator *prometheus.GaugeVec

	// Collector operational metrics
	BuildInfo            *prometheus.GaugeVec
	QueryDurationSeconds *prometheus.HistogramVec
	QueriesTotal         *prometheus.CounterVec
	PushesTotal          *prometheus.CounterVec
	LastSuccessTimestamp *prometheus.GaugeVec
}

// NewLeoNTPMetricsWithConfig creates and initializes all metrics with custom namespace and subsystem
func NewLeoNTPMetricsWithConfig(namespace, subsystem string) *LeoNTPMetrics {
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      name,
				Help:      help,
			},
			labels,
		)
	}

	return &LeoNTPMetrics{
		Up: gauge("up",
			"Whether the last status query succeeded (1) or not (0)", "target"),
		ReferenceTimestamp: gauge("reference_timestamp_seconds",
			"Device reference time in Unix seconds, including the fraction", "target"),
		UptimeSeconds: gauge("uptime_seconds",
			"Device uptime in seconds", "target"),
		NTPRequestsServed: gauge("ntp_requests_served",
			"NTP requests served since boot, as reported by the device", "target"),
		Mode6RequestsServed: gauge("mode6_requests_served",
			"Mode 6 requests served since boot, as reported by the device", "target"),
		GPSLockSeconds: gauge("gps_lock_seconds",
			"Time since the GPS receiver acquired lock, in seconds", "target"),
		GPSFlags: gauge("gps_flags",
			"Raw GPS flags byte", "target"),
		ActiveSatellites: gauge("active_satellites",
			"Number of satellites in use", "target"),
		DeviceInfo: gauge("device_info",
			"Device identity; always 1", "target", "serial", "firmware"),

		OffsetSeconds: gauge("offset_seconds",
			"Local clock offset against the device in seconds", "target"),
		RTTSeconds: gauge("rtt_seconds",
			"Round-trip time of the client-mode NTP probe in seconds", "target"),
		Stratum: gauge("stratum",
			"Stratum reported by the device", "target"),
		LeapIndicator: gauge("leap_indicator",
			"Leap indicator reported by the device (0 none, 1 insert, 2 delete, 3 unsynchronized)", "target"),

		BuildInfo: gauge("build_info",
			"Build information; always 1", "version", "commit", "goversion"),
		QueryDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "query_duration_seconds",
				Help:      "Duration of status queries in seconds",
				Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"target"},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queries_total",
				Help:      "Total number of status queries by result",
			},
			[]string{"target", "result"},
		),
		PushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pushes_total",
				Help:      "Total number of metrics pushes by outcome",
			},
			[]string{"sink", "outcome"},
		),
		LastSuccessTimestamp: gauge("last_success_timestamp_seconds",
			"Unix time of the last successful status query", "target"),
	}
}

// NewLeoNTPMetrics creates all metrics with the default namespace
func NewLeoNTPMetrics() *LeoNTPMetrics {
	return NewLeoNTPMetricsWithConfig("leontp", "")
}

func (m *LeoNTPMetrics) getAllMetrics() []prometheus.Collector {
	return []prometheus.Collector{
		// Device metrics
		m.Up,
		m.ReferenceTimestamp,
		m.UptimeSeconds,
		m.NTPRequestsServed,
		m.Mode6RequestsServed,
		m.GPSLockSeconds,
		m.GPSFlags,
		m.ActiveSatellites,
		m.DeviceInfo,

		// Probe metrics
		m.OffsetSeconds,
		m.RTTSeconds,
		m.Stratum,
		m.LeapIndicator,

		// Operational metrics
		m.BuildInfo,
		m.QueryDurationSeconds,
		m.QueriesTotal,
		m.PushesTotal,
		m.LastSuccessTimestamp,
	}
}

// Describe implements prometheus.Collector interface
func (m *LeoNTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, metric := range m.getAllMetrics() {
		metric.Describe(ch)
	}
}

// Collect implements prometheus.Collector interface
func (m *LeoNTPMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, metric := range m.getAllMetrics() {
		metric.Collect(ch)
	}
}
