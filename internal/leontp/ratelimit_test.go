package leontp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(time.Second, 0)
	require.NotNil(t, rl)
	assert.Equal(t, 1, rl.burst)
	assert.Equal(t, time.Second, rl.interval)
	assert.NotNil(t, rl.perTarget)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(time.Hour, 1)

	assert.True(t, rl.Allow("a:123"))
	assert.False(t, rl.Allow("a:123"))

	// Targets are limited independently
	assert.True(t, rl.Allow("b:123"))
}

func TestRateLimiter_ZeroIntervalIsUnlimited(t *testing.T) {
	rl := NewRateLimiter(0, 1)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("a:123"))
	}
}

func TestRateLimiter_WaitContextCancelled(t *testing.T) {
	rl := NewRateLimiter(time.Hour, 1)
	require.NoError(t, rl.Wait(context.Background(), "a:123"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx, "a:123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a:123")
}

func TestRateLimiter_WaitSpacesQueries(t *testing.T) {
	rl := NewRateLimiter(100*time.Millisecond, 1)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "a:123"))
	require.NoError(t, rl.Wait(ctx, "a:123"))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestRateLimitedClient_Query(t *testing.T) {
	mock := NewMockQuerier()
	mock.SetupHealthyDevice("dev:123", 1700000000)
	client := NewRateLimitedClient(mock, time.Hour)

	status, err := client.Query(context.Background(), "dev:123")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), status.UnixSeconds())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Query(ctx, "dev:123")
	assert.Error(t, err)
	assert.Equal(t, 1, mock.GetCallCount("dev:123"))
}
