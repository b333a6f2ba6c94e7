package collector

import (
	"io"

	"github.com/maximewewer/leontp-stats/internal/config"
	"github.com/maximewewer/leontp-stats/internal/influx"
	"github.com/maximewewer/leontp-stats/internal/leontp"
	"github.com/maximewewer/leontp-stats/pkg/metrics"
)

// commonPublisher provides shared functionality for all publishers
type commonPublisher struct {
	name    string
	enabled bool
}

func newCommonPublisher(name string, enabled bool) commonPublisher {
	return commonPublisher{name: name, enabled: enabled}
}

// Name returns the publisher name
func (p *commonPublisher) Name() string {
	return p.name
}

// Enabled returns whether the publisher is enabled
func (p *commonPublisher) Enabled() bool {
	return p.enabled
}

// NewQuerier creates the status client for cfg.
// In watch mode the client is paced per target by min_query_interval.
func NewQuerier(cfg *config.Config) leontp.Querier {
	var querier leontp.Querier = leontp.NewClient(cfg.LeoNTP.Timeout)

	if cfg.Watch() {
		querier = leontp.NewRateLimitedClient(querier, cfg.LeoNTP.MinQueryInterval)
	}

	return querier
}

// NewPusher creates the InfluxDB push client for cfg.
// In watch mode pushes go through a circuit breaker.
func NewPusher(cfg *config.Config) influx.Pusher {
	var pusher influx.Pusher = influx.NewClient(
		influx.Endpoint{
			Host:   cfg.InfluxDB.Host,
			Port:   cfg.InfluxDB.Port,
			Token:  cfg.InfluxDB.Token,
			Org:    cfg.InfluxDB.Org,
			Bucket: cfg.InfluxDB.Bucket,
		},
		influx.Timeouts{
			Connect: cfg.InfluxDB.ConnectTimeout,
			Write:   cfg.InfluxDB.WriteTimeout,
			Read:    cfg.InfluxDB.ReadTimeout,
		},
	)

	if cfg.Watch() {
		pusher = influx.NewBreakerPusher("influxdb", pusher, influx.DefaultBreakerConfig())
	}

	return pusher
}

// NewPublishers builds the publisher registry for cfg, in report order:
// console, influx, gauges, textfile. out receives the console report and,
// with show_stats, the push confirmation; errOut receives push failures.
func NewPublishers(cfg *config.Config, reg *metrics.Registry, out, errOut io.Writer) *Registry {
	m := reg.GetMetrics()

	var pushOut io.Writer
	if cfg.Options.ShowStats {
		pushOut = out
	}

	r := NewRegistry()
	r.Register(NewConsolePublisher(out, cfg.Options.ShowStats))
	r.Register(NewInfluxPublisher(NewPusher(cfg), m, cfg.Options.SendToInfluxDB).WithReport(pushOut, errOut))
	r.Register(NewGaugePublisher(m))
	r.Register(NewTextfilePublisher(cfg.Metrics.TextfilePath, m))
	return r
}
