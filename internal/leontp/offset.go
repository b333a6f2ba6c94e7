package leontp

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"
	"github.com/maximewewer/leontp-stats/pkg/logger"
)

// Offset is the result of a client-mode NTP exchange with the device
type Offset struct {
	ClockOffset   time.Duration
	RTT           time.Duration
	Stratum       uint8
	LeapIndicator uint8
	ValidateError error
}

// OffsetProbe measures the local clock offset against a LeoNTP device
type OffsetProbe struct {
	timeout time.Duration
	query   func(address string, opt ntp.QueryOptions) (*ntp.Response, error)
}

// NewOffsetProbe creates a probe using a standard NTP version 4 query
func NewOffsetProbe(timeout time.Duration) *OffsetProbe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OffsetProbe{
		timeout: timeout,
		query:   ntp.QueryWithOptions,
	}
}

// Probe queries target ("host:port") once
func (p *OffsetProbe) Probe(ctx context.Context, target string) (*Offset, error) {
	opts := ntp.QueryOptions{
		Timeout: p.timeout,
		Version: ProtocolVersion,
	}

	type probeResult struct {
		response *ntp.Response
		err      error
	}

	// Buffered so the goroutine can finish after a cancellation
	resultChan := make(chan probeResult, 1)
	go func() {
		resp, err := p.query(target, opts)
		resultChan <- probeResult{response: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("offset probe cancelled: %w", ctx.Err())
	case result := <-resultChan:
		if result.err != nil {
			return nil, fmt.Errorf("ntp query to %s failed: %w", target, result.err)
		}

		resp := result.response
		off := &Offset{
			ClockOffset:   resp.ClockOffset,
			RTT:           resp.RTT,
			Stratum:       resp.Stratum,
			LeapIndicator: uint8(resp.Leap),
			ValidateError: resp.Validate(),
		}
		if off.ValidateError != nil {
			logger.SafeWarn("leontp", "NTP response validation failed", map[string]interface{}{
				"target": target,
				"error":  off.ValidateError.Error(),
			})
		}

		logger.Query("offset", target, map[string]interface{}{
			"offset":  off.ClockOffset.Seconds(),
			"rtt":     off.RTT.Seconds(),
			"stratum": off.Stratum,
			"leap":    off.LeapIndicator,
		})
		return off, nil
	}
}
