package testutil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// StatusFrame holds the fields of a LeoNTP status response, for building
// test datagrams independently of the decoder.
type StatusFrame struct {
	RefFraction      uint32
	RefSeconds       uint32
	Uptime           uint32
	NTPRequests      uint32
	Mode6Requests    uint32
	GPSLockTime      uint32
	Flags            uint8
	ActiveSatellites uint8
	SerialNumber     uint16
	Firmware         uint32
}

// Bytes encodes the frame as a 48-byte little-endian response
func (f StatusFrame) Bytes() []byte {
	b := make([]byte, 48)
	b[0] = 0x27
	binary.LittleEndian.PutUint32(b[16:], f.RefFraction)
	binary.LittleEndian.PutUint32(b[20:], f.RefSeconds)
	binary.LittleEndian.PutUint32(b[24:], f.Uptime)
	binary.LittleEndian.PutUint32(b[28:], f.NTPRequests)
	binary.LittleEndian.PutUint32(b[32:], f.Mode6Requests)
	binary.LittleEndian.PutUint32(b[36:], f.GPSLockTime)
	b[40] = f.Flags
	b[41] = f.ActiveSatellites
	binary.LittleEndian.PutUint16(b[42:], f.SerialNumber)
	binary.LittleEndian.PutUint32(b[44:], f.Firmware)
	return b
}

// SampleFrame returns a frame for a locked device at 2023-11-14 22:13:20.5 UTC
func SampleFrame() StatusFrame {
	return StatusFrame{
		RefFraction:      1 << 31,
		RefSeconds:       2_208_988_800 + 1_700_000_000,
		Uptime:           864_000,
		NTPRequests:      123_456,
		Mode6Requests:    42,
		GPSLockTime:      863_000,
		Flags:            1,
		ActiveSatellites: 9,
		SerialNumber:     1234,
		Firmware:         0x0113,
	}
}

// FakeLeoNTP is a UDP responder standing in for a LeoNTP device
type FakeLeoNTP struct {
	conn     net.PacketConn
	mu       sync.Mutex
	reply    []byte
	silent   bool
	requests [][]byte
}

// StartFakeLeoNTP listens on a loopback UDP port and answers every datagram
// with reply. The listener is closed when the test ends.
func StartFakeLeoNTP(t *testing.T, reply []byte) *FakeLeoNTP {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	f := &FakeLeoNTP{conn: conn, reply: reply}
	go f.serve()
	t.Cleanup(func() {
		conn.Close()
	})
	return f
}

func (f *FakeLeoNTP) serve() {
	buf := make([]byte, 1024)
	for {
		n, from, err := f.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, append([]byte(nil), buf[:n]...))
		reply, silent := f.reply, f.silent
		f.mu.Unlock()

		if !silent {
			f.conn.WriteTo(reply, from)
		}
	}
}

// Addr returns the "host:port" the fake listens on
func (f *FakeLeoNTP) Addr() string {
	return f.conn.LocalAddr().String()
}

// SetSilent makes the fake swallow requests without answering
func (f *FakeLeoNTP) SetSilent(silent bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.silent = silent
}

// Requests returns copies of the datagrams received so far
func (f *FakeLeoNTP) Requests() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.requests...)
}

// FakeSink is a TCP listener standing in for an ingestion endpoint. It reads
// one request per connection, answers with a canned response and closes.
type FakeSink struct {
	ln       net.Listener
	response []byte
	mu       sync.Mutex
	requests [][]byte
	done     chan struct{}
}

// StartFakeSink starts a sink on a loopback port replying with response
func StartFakeSink(t *testing.T, response string) *FakeSink {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	s := &FakeSink{ln: ln, response: []byte(response), done: make(chan struct{}, 16)}
	go s.serve()
	t.Cleanup(func() {
		ln.Close()
	})
	return s
}

func (s *FakeSink) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.handle(conn)
	}
}

func (s *FakeSink) handle(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	req, err := readRequest(conn)
	if err == nil {
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
	}
	if len(s.response) > 0 {
		conn.Write(s.response)
	}
	s.done <- struct{}{}
}

// readRequest reads the header block and a Content-Length body
func readRequest(r io.Reader) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, 512)
	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if end := headerEnd(buf); end >= 0 {
			want := end + contentLength(buf[:end])
			for len(buf) < want {
				n, err = r.Read(chunk)
				buf = append(buf, chunk[:n]...)
				if err != nil {
					return buf, err
				}
			}
			return buf, nil
		}
		if err != nil {
			return buf, err
		}
	}
}

func headerEnd(b []byte) int {
	i := bytes.Index(b, []byte("\r\n\r\n"))
	if i < 0 {
		return -1
	}
	return i + 4
}

func contentLength(header []byte) int {
	for _, line := range bytes.Split(header, []byte("\r\n")) {
		name, value, ok := bytes.Cut(line, []byte(":"))
		if !ok || !bytes.EqualFold(bytes.TrimSpace(name), []byte("Content-Length")) {
			continue
		}
		n, _ := strconv.Atoi(string(bytes.TrimSpace(value)))
		return n
	}
	return 0
}

// Host returns the sink's host
func (s *FakeSink) Host() string {
	return s.ln.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the sink's port
func (s *FakeSink) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// WaitRequest waits until a connection has been served and returns the
// last raw request received.
func (s *FakeSink) WaitRequest(t *testing.T, timeout time.Duration) []byte {
	t.Helper()

	select {
	case <-s.done:
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatalf("No complete request received")
	}
	return s.requests[len(s.requests)-1]
}

// RequestCount returns the number of complete requests received
func (s *FakeSink) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// FreeTCPAddr returns a loopback address nobody listens on
func FreeTCPAddr(t *testing.T) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()
	return addr.IP.String(), addr.Port
}

// AssertMetricValue validates a Prometheus metric value
func AssertMetricValue(t *testing.T, registry prometheus.Gatherer, metricName string, labels map[string]string, expected float64) {
	t.Helper()

	value, err := MetricValue(registry, metricName, labels)
	if err != nil {
		t.Errorf("Metric %s with labels %v: %v", metricName, labels, err)
		return
	}
	if value != expected {
		t.Errorf("Metric %s with labels %v: expected %f, got %f", metricName, labels, expected, value)
	}
}

// AssertMetricExists checks if a metric exists with given labels
func AssertMetricExists(t *testing.T, registry prometheus.Gatherer, metricName string, labels map[string]string) {
	t.Helper()

	if _, err := MetricValue(registry, metricName, labels); err != nil {
		t.Errorf("Metric %s with labels %v: %v", metricName, labels, err)
	}
}

// MetricValue returns the value of a gauge, counter or histogram sum
func MetricValue(registry prometheus.Gatherer, metricName string, labels map[string]string) (float64, error) {
	families, err := registry.Gather()
	if err != nil {
		return 0, err
	}

	for _, mf := range families {
		if mf.GetName() != metricName {
			continue
		}

		for _, m := range mf.GetMetric() {
			if !labelsMatch(m.GetLabel(), labels) {
				continue
			}
			switch mf.GetType() {
			case dto.MetricType_GAUGE:
				return m.GetGauge().GetValue(), nil
			case dto.MetricType_COUNTER:
				return m.GetCounter().GetValue(), nil
			case dto.MetricType_HISTOGRAM:
				return m.GetHistogram().GetSampleSum(), nil
			default:
				return 0, errors.New("unsupported metric type " + mf.GetType().String())
			}
		}
	}

	return 0, errors.New("not found")
}

// labelsMatch checks if metric labels match expected labels
func labelsMatch(metricLabels []*dto.LabelPair, expected map[string]string) bool {
	if len(metricLabels) != len(expected) {
		return false
	}

	for _, label := range metricLabels {
		expectedValue, exists := expected[label.GetName()]
		if !exists || expectedValue != label.GetValue() {
			return false
		}
	}

	return true
}
