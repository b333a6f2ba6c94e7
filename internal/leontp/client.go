package leontp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/maximewewer/leontp-stats/pkg/logger"
)

// Querier retrieves the status of a LeoNTP device
type Querier interface {
	Query(ctx context.Context, target string) (*Status, error)
}

// Client performs a single status exchange per Query call over UDP
type Client struct {
	timeout time.Duration
	request Request
}

// NewClient creates a status client with the given receive deadline.
// A zero timeout selects DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		timeout: timeout,
		request: NewRequest(),
	}
}

// Timeout returns the receive deadline applied to each query
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Query sends one status request to target ("host:port") and waits for one
// response datagram. It never retries. The socket is closed before returning.
func (c *Client) Query(ctx context.Context, target string) (*Status, error) {
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, &QueryError{Stage: StageBind, Target: target, Err: err}
	}
	defer conn.Close()

	raddr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, &QueryError{Stage: StageResolve, Target: target, Err: err}
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, &QueryError{Stage: StageBind, Target: target, Err: err}
	}

	// Cancellation collapses the deadline so the blocked read returns.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	start := time.Now()
	if _, err := conn.WriteTo(c.request[:], raddr); err != nil {
		return nil, &QueryError{Stage: StageSend, Target: target, Err: err}
	}

	buf := make([]byte, MaxDatagramSize)
	n, from, err := conn.ReadFrom(buf)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, &QueryError{Stage: StageReceive, Target: target, Err: ctx.Err()}
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", ErrTimeout, time.Since(start).Round(time.Millisecond), err)
		}
		return nil, &QueryError{Stage: StageReceive, Target: target, Err: err}
	}

	logger.Query("status", target, map[string]interface{}{
		"bytes": n,
		"from":  from.String(),
		"rtt":   time.Since(start).Seconds(),
	})

	status, err := DecodeStatus(buf[:n])
	if err != nil {
		return nil, &QueryError{Stage: StageDecode, Target: target, Err: err}
	}
	return status, nil
}
