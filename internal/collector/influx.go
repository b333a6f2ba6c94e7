package collector

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/maximewewer/leontp-stats/internal/influx"
	"github.com/maximewewer/leontp-stats/pkg/metrics"
)

// InfluxPublisher pushes the reading as one line-protocol record
type InfluxPublisher struct {
	commonPublisher
	pusher  influx.Pusher
	metrics *metrics.LeoNTPMetrics
	out     io.Writer
	errOut  io.Writer
}

// NewInfluxPublisher creates a publisher pushing through pusher
func NewInfluxPublisher(pusher influx.Pusher, m *metrics.LeoNTPMetrics, enabled bool) *InfluxPublisher {
	return &InfluxPublisher{
		commonPublisher: newCommonPublisher("influxdb", enabled),
		pusher:          pusher,
		metrics:         m,
	}
}

// WithReport prints the push outcome after every push: the success line to
// out and failures to errOut. A nil writer silences that half of the report.
func (p *InfluxPublisher) WithReport(out, errOut io.Writer) *InfluxPublisher {
	p.out = out
	p.errOut = errOut
	return p
}

// Publish encodes and pushes the reading
func (p *InfluxPublisher) Publish(ctx context.Context, reading *Reading) error {
	err := p.pusher.Push(ctx, influx.NewLine(reading.Status))

	outcome := influx.Classify(err)
	p.metrics.PushesTotal.WithLabelValues(p.Name(), outcome.String()).Inc()

	switch {
	case err == nil && p.out != nil:
		fmt.Fprintln(p.out, "Data successfully sent to InfluxDB.")
	case err != nil && p.errOut != nil:
		writePushFailure(p.errOut, err)
	}

	return err
}

func writePushFailure(w io.Writer, err error) {
	var remote *influx.RemoteError
	if errors.As(err, &remote) {
		fmt.Fprintf(w, "InfluxDB error: %s\n", remote.StatusLine)
		if remote.Detail != "" {
			fmt.Fprintf(w, "Detail: %s\n", remote.Detail)
		}
		return
	}

	fmt.Fprintf(w, "InfluxDB push failed: %v\n", err)
}
