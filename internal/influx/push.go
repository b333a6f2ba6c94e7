package influx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/maximewewer/leontp-stats/pkg/logger"
)

// Default stream deadlines
const (
	DefaultConnectTimeout = 3 * time.Second
	DefaultWriteTimeout   = 3 * time.Second
	DefaultReadTimeout    = 5 * time.Second
	DefaultPort           = 8086

	// maxResponseSize bounds how much of the reply is kept
	maxResponseSize = 64 << 10
)

// Pusher delivers one record to a time-series sink
type Pusher interface {
	Push(ctx context.Context, line Line) error
}

// Endpoint identifies the sink and the write target
type Endpoint struct {
	Host   string
	Port   int
	Token  string `json:"-"`
	Org    string
	Bucket string
}

// Addr returns the dial address
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}


// Timeouts bounds each phase of a push
type Timeouts struct {
	Connect time.Duration
	Write   time.Duration
	Read    time.Duration
}

// DefaultTimeouts returns 3 s connect, 3 s write and 5 s read deadlines
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Connect: DefaultConnectTimeout,
		Write:   DefaultWriteTimeout,
		Read:    DefaultReadTimeout,
	}
}

// Client pushes records over a fresh HTTP/1.1 connection per call
type Client struct {
	endpoint Endpoint
	timeouts Timeouts
}

// NewClient creates a push client. Zero timeouts take their defaults.
func NewClient(endpoint Endpoint, timeouts Timeouts) *Client {
	def := DefaultTimeouts()
	if timeouts.Connect <= 0 {
		timeouts.Connect = def.Connect
	}
	if timeouts.Write <= 0 {
		timeouts.Write = def.Write
	}
	if timeouts.Read <= 0 {
		timeouts.Read = def.Read
	}
	return &Client{endpoint: endpoint, timeouts: timeouts}
}

// Endpoint returns the configured sink
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// BuildRequest returns the complete request bytes for body
func (c *Client) BuildRequest(body []byte) []byte {
	var b bytes.Buffer
	b.Grow(256 + len(body))
	b.WriteString("POST ")
	b.WriteString(WritePath(c.endpoint.Org, c.endpoint.Bucket))
	b.WriteString(" HTTP/1.1\r\n")
	b.WriteString("Host: " + c.endpoint.Addr() + "\r\n")
	b.WriteString("Authorization: Token " + c.endpoint.Token + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Length: " + strconv.Itoa(len(body)) + "\r\n")
	b.WriteString("Connection: close\r\n")
	b.WriteString("\r\n")
	b.Write(body)
	return b.Bytes()
}

// Push writes line to the sink and reads the reply until the peer closes.
// It returns nil on a 200 or 204 status line, a *RemoteError for any other
// reply and a *TransportError when no reply could be obtained. It never
// retries or follows redirects.
func (c *Client) Push(ctx context.Context, line Line) (err error) {
	addr := c.endpoint.Addr()
	start := time.Now()
	defer func() {
		logger.Push(addr, time.Since(start), err == nil)
	}()

	dialer := net.Dialer{Timeout: c.timeouts.Connect}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &TransportError{Stage: StageConnect, Addr: addr, Err: err}
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	req := c.BuildRequest(line.AppendTo(nil))
	if err := armDeadline(ctx, conn.SetWriteDeadline, c.timeouts.Write); err != nil {
		return &TransportError{Stage: StageWrite, Addr: addr, Err: err}
	}
	if _, err := conn.Write(req); err != nil {
		return &TransportError{Stage: StageWrite, Addr: addr, Err: ctxOr(ctx, err)}
	}

	if err := armDeadline(ctx, conn.SetReadDeadline, c.timeouts.Read); err != nil {
		return &TransportError{Stage: StageRead, Addr: addr, Err: err}
	}
	resp, err := io.ReadAll(io.LimitReader(conn, maxResponseSize))
	if err != nil {
		return &TransportError{Stage: StageRead, Addr: addr, Err: ctxOr(ctx, err)}
	}

	logger.SafeDebug("influx", "Sink replied", map[string]interface{}{
		"addr":  addr,
		"bytes": len(resp),
	})

	return ParseResponse(addr, resp)
}

// ParseResponse classifies a raw reply. The first line is a success when it
// carries the status code 200 or 204 as a standalone token.
func ParseResponse(addr string, resp []byte) error {
	if len(resp) == 0 {
		return &TransportError{Stage: StageEmptyResponse, Addr: addr, Err: ErrEmptyResponse}
	}

	text := string(resp)
	first, _, _ := strings.Cut(text, "\n")
	first = strings.TrimSuffix(first, "\r")

	padded := first + " "
	if strings.Contains(padded, " 200 ") || strings.Contains(padded, " 204 ") {
		return nil
	}

	var detail string
	if _, rest, ok := strings.Cut(text, "\r\n\r\n"); ok {
		detail = rest
	}
	return &RemoteError{StatusLine: first, Detail: detail}
}

// armDeadline sets a phase deadline d from now. The new deadline replaces
// the one collapsed by a cancellation, so ctx is checked after setting it.
func armDeadline(ctx context.Context, set func(time.Time) error, d time.Duration) error {
	if err := set(time.Now().Add(d)); err != nil {
		return err
	}
	return ctx.Err()
}

func ctxOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, err)
	}
	return err
}
