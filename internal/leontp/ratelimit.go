package leontp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces out status queries per target
type RateLimiter struct {
	perTarget map[string]*rate.Limiter
	mu        sync.RWMutex
	interval  time.Duration
	burst     int
}

// NewRateLimiter allows one query per interval and target, with the given burst
func NewRateLimiter(interval time.Duration, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		perTarget: make(map[string]*rate.Limiter),
		interval:  interval,
		burst:     burst,
	}
}

// Wait blocks until a query to target is allowed
func (rl *RateLimiter) Wait(ctx context.Context, target string) error {
	if err := rl.limiterFor(target).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit for %s: %w", target, err)
	}
	return nil
}

// Allow reports whether a query to target is allowed now
func (rl *RateLimiter) Allow(target string) bool {
	return rl.limiterFor(target).Allow()
}

func (rl *RateLimiter) limiterFor(target string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.perTarget[target]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := rl.perTarget[target]; exists {
		return limiter
	}

	limit := rate.Inf
	if rl.interval > 0 {
		limit = rate.Every(rl.interval)
	}
	limiter = rate.NewLimiter(limit, rl.burst)
	rl.perTarget[target] = limiter
	return limiter
}

// RateLimitedClient paces a Querier with a RateLimiter
type RateLimitedClient struct {
	querier Querier
	limiter *RateLimiter
}

// NewRateLimitedClient wraps querier so that queries to one target are at
// least interval apart
func NewRateLimitedClient(querier Querier, interval time.Duration) *RateLimitedClient {
	return &RateLimitedClient{
		querier: querier,
		limiter: NewRateLimiter(interval, 1),
	}
}

// Query waits for the rate limiter, then queries target
func (c *RateLimitedClient) Query(ctx context.Context, target string) (*Status, error) {
	if err := c.limiter.Wait(ctx, target); err != nil {
		return nil, err
	}
	return c.querier.Query(ctx, target)
}
