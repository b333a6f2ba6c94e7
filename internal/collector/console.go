package collector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const secondsPerDay = 86400.0

// ConsolePublisher prints the statistics report
type ConsolePublisher struct {
	commonPublisher
	out io.Writer
}

// NewConsolePublisher creates a publisher writing the report to out
func NewConsolePublisher(out io.Writer, enabled bool) *ConsolePublisher {
	return &ConsolePublisher{
		commonPublisher: newCommonPublisher("console", enabled),
		out:             out,
	}
}

// Publish writes the report for reading
func (p *ConsolePublisher) Publish(_ context.Context, reading *Reading) error {
	w := bufio.NewWriter(p.out)
	WriteReport(w, reading)
	return w.Flush()
}

// WriteReport formats reading as the human-readable statistics block
func WriteReport(w io.Writer, reading *Reading) {
	s := reading.Status
	fmt.Fprintf(w, "\n===== LeoNTP Statistics (%s) =====\n", reading.Address)
	fmt.Fprintf(w, "UTC time       : %s\n", reading.Civil.Format(s.FractionNanos()))
	fmt.Fprintf(w, "NTP time       : %s\n", s.NTPTime())
	fmt.Fprintf(w, "Uptime         : %d s (%.2f days)\n", s.Uptime, float64(s.Uptime)/secondsPerDay)
	fmt.Fprintf(w, "NTP requests   : %d\n", s.NTPRequests)
	fmt.Fprintf(w, "Mode 6 requests: %d\n", s.Mode6Requests)
	fmt.Fprintf(w, "GPS lock time  : %d s (%.2f days)\n", s.GPSLockTime, float64(s.GPSLockTime)/secondsPerDay)
	fmt.Fprintf(w, "GPS flags      : %d\n", s.Flags)
	fmt.Fprintf(w, "Active satellites: %d\n", s.ActiveSatellites)
	fmt.Fprintf(w, "Firmware ver.  : %s\n", s.FirmwareVersion())
	fmt.Fprintf(w, "Serial number  : %d\n", s.SerialNumber)

	switch {
	case reading.OffsetErr != nil:
		fmt.Fprintf(w, "Clock offset   : unavailable (%v)\n", reading.OffsetErr)
	case reading.Offset != nil:
		o := reading.Offset
		fmt.Fprintf(w, "Clock offset   : %+.6f s (rtt %.6f s, stratum %d)\n",
			o.ClockOffset.Seconds(), o.RTT.Seconds(), o.Stratum)
	}

	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 42))
}
