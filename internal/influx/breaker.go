package influx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maximewewer/leontp-stats/pkg/logger"
	"github.com/sony/gobreaker"
)

// BreakerConfig holds configuration for the push circuit breaker.
type BreakerConfig struct {
	// MaxRequests is the number of pushes allowed through while half-open.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state after which
	// the failure counts are cleared.
	Interval time.Duration

	// Timeout is how long the breaker stays open before trying again.
	Timeout time.Duration

	// ReadyToTrip decides from the counts whether a failure opens the breaker.
	ReadyToTrip func(counts gobreaker.Counts) bool
}

// DefaultBreakerConfig opens after three consecutive failed pushes and
// retries after a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
}

// BreakerPusher stops hammering an unavailable sink in watch mode.
type BreakerPusher struct {
	pusher  Pusher
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerPusher wraps pusher with circuit breaker protection.
func NewBreakerPusher(name string, pusher Pusher, config BreakerConfig) *BreakerPusher {
	if config.MaxRequests == 0 {
		config = DefaultBreakerConfig()
	}

	return &BreakerPusher{
		pusher: pusher,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: config.MaxRequests,
			Interval:    config.Interval,
			Timeout:     config.Timeout,
			ReadyToTrip: config.ReadyToTrip,
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.SafeWarn("influx", "Push circuit breaker state changed", map[string]interface{}{
					"sink": name,
					"from": from.String(),
					"to":   to.String(),
				})
			},
		}),
	}
}

// Push forwards line unless the breaker is open. An open breaker is reported
// as a connect-stage TransportError.
func (b *BreakerPusher) Push(ctx context.Context, line Line) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.pusher.Push(ctx, line)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &TransportError{
			Stage: StageConnect,
			Addr:  b.breaker.Name(),
			Err:   fmt.Errorf("circuit breaker open: %w", err),
		}
	}
	return err
}

// State returns the current breaker state.
func (b *BreakerPusher) State() gobreaker.State {
	return b.breaker.State()
}

// Counts returns the current breaker counts.
func (b *BreakerPusher) Counts() gobreaker.Counts {
	return b.breaker.Counts()
}
