package leontp

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MockQuerier is a Querier returning canned statuses, for tests
type MockQuerier struct {
	mu         sync.RWMutex
	responses  map[string]*Status
	errors     map[string]error
	delays     map[string]time.Duration
	callCounts map[string]int
}

// NewMockQuerier creates an empty mock querier
func NewMockQuerier() *MockQuerier {
	return &MockQuerier{
		responses:  make(map[string]*Status),
		errors:     make(map[string]error),
		delays:     make(map[string]time.Duration),
		callCounts: make(map[string]int),
	}
}

// Query returns the status or error configured for target
func (m *MockQuerier) Query(ctx context.Context, target string) (*Status, error) {
	m.mu.Lock()
	m.callCounts[target]++
	delay := m.delays[target]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.errors[target]; ok {
		return nil, err
	}
	if resp, ok := m.responses[target]; ok {
		cp := *resp
		return &cp, nil
	}
	return nil, errors.New("target not configured in mock")
}

// SetupHealthyDevice configures a locked device reporting the given Unix time
func (m *MockQuerier) SetupHealthyDevice(target string, unixSeconds uint32) {
	m.SetResponse(target, &Status{
		RefFraction:      1 << 31,
		RefSeconds:       uint32(uint64(unixSeconds) + NTPEpochOffset),
		Uptime:           864000,
		NTPRequests:      123456,
		Mode6Requests:    42,
		GPSLockTime:      863000,
		Flags:            1,
		ActiveSatellites: 9,
		SerialNumber:     1234,
		Firmware:         0x0113,
	})
}

// SetupTimeout makes queries to target fail as if no datagram arrived
func (m *MockQuerier) SetupTimeout(target string) {
	m.SetError(target, &QueryError{Stage: StageReceive, Target: target, Err: ErrTimeout})
}

// SetResponse sets the status returned for target
func (m *MockQuerier) SetResponse(target string, status *Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[target] = status
}

// SetError sets the error returned for target
func (m *MockQuerier) SetError(target string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errors[target] = err
}

// SetDelay sets a delay before responding
func (m *MockQuerier) SetDelay(target string, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.delays[target] = delay
}

// GetCallCount returns the number of times target was queried
func (m *MockQuerier) GetCallCount(target string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.callCounts[target]
}
