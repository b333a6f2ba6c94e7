package leontp

import (
	"context"
	"errors"
	"testing"
	"time"

	testutil "github.com/maximewewer/leontp-stats/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewClient(0).Timeout())
	assert.Equal(t, DefaultTimeout, NewClient(-time.Second).Timeout())
	assert.Equal(t, 300*time.Millisecond, NewClient(300*time.Millisecond).Timeout())
}

func TestClient_Query_Success(t *testing.T) {
	fake := testutil.StartFakeLeoNTP(t, testutil.SampleFrame().Bytes())
	client := NewClient(time.Second)

	status, err := client.Query(context.Background(), fake.Addr())
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, int64(1700000000), status.UnixSeconds())
	assert.Equal(t, uint32(864000), status.Uptime)
	assert.Equal(t, uint32(123456), status.NTPRequests)
	assert.Equal(t, uint8(9), status.ActiveSatellites)
	assert.Equal(t, uint16(1234), status.SerialNumber)
	assert.Equal(t, "1.19", status.FirmwareVersion())

	requests := fake.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, []byte{0x27, 0x00, 0x10, 0x01, 0x00, 0x00, 0x00, 0x00}, requests[0])
}

func TestClient_Query_OneRequestPerCall(t *testing.T) {
	fake := testutil.StartFakeLeoNTP(t, testutil.SampleFrame().Bytes())
	client := NewClient(time.Second)

	for i := 0; i < 3; i++ {
		_, err := client.Query(context.Background(), fake.Addr())
		require.NoError(t, err)
	}
	assert.Len(t, fake.Requests(), 3)
}

func TestClient_Query_Timeout(t *testing.T) {
	fake := testutil.StartFakeLeoNTP(t, testutil.SampleFrame().Bytes())
	fake.SetSilent(true)
	client := NewClient(200 * time.Millisecond)

	start := time.Now()
	status, err := client.Query(context.Background(), fake.Addr())
	elapsed := time.Since(start)

	assert.Nil(t, status)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, StageReceive, qe.Stage)

	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)

	// The request was sent exactly once, no retry
	assert.Len(t, fake.Requests(), 1)
}

func TestClient_Query_ContextDeadlineIsTimeout(t *testing.T) {
	fake := testutil.StartFakeLeoNTP(t, nil)
	fake.SetSilent(true)
	client := NewClient(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Query(ctx, fake.Addr())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_Query_Cancelled(t *testing.T) {
	fake := testutil.StartFakeLeoNTP(t, nil)
	fake.SetSilent(true)
	client := NewClient(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.Query(ctx, fake.Addr())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_Query_ShortResponse(t *testing.T) {
	fake := testutil.StartFakeLeoNTP(t, make([]byte, 20))
	client := NewClient(time.Second)

	status, err := client.Query(context.Background(), fake.Addr())
	assert.Nil(t, status)
	assert.ErrorIs(t, err, ErrTooShort)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, StageDecode, qe.Stage)
}

func TestClient_Query_ResolveFailure(t *testing.T) {
	client := NewClient(time.Second)

	_, err := client.Query(context.Background(), "missing-port")
	require.Error(t, err)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, StageResolve, qe.Stage)
	assert.Equal(t, "missing-port", qe.Target)
}

func TestMockQuerier(t *testing.T) {
	mock := NewMockQuerier()
	mock.SetupHealthyDevice("dev:123", 1700000000)
	mock.SetupTimeout("down:123")

	status, err := mock.Query(context.Background(), "dev:123")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), status.UnixSeconds())

	// Returned statuses are copies
	status.Uptime = 0
	again, err := mock.Query(context.Background(), "dev:123")
	require.NoError(t, err)
	assert.Equal(t, uint32(864000), again.Uptime)

	_, err = mock.Query(context.Background(), "down:123")
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = mock.Query(context.Background(), "unknown:123")
	assert.Error(t, err)

	assert.Equal(t, 2, mock.GetCallCount("dev:123"))
	assert.Equal(t, 1, mock.GetCallCount("down:123"))
}

func TestMockQuerier_DelayHonoursContext(t *testing.T) {
	mock := NewMockQuerier()
	mock.SetupHealthyDevice("dev:123", 1700000000)
	mock.SetDelay("dev:123", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := mock.Query(ctx, "dev:123")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
