package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/maximewewer/leontp-stats/pkg/logger"
)

// Publisher hands a reading to one destination
type Publisher interface {
	// Publish delivers the reading
	Publish(ctx context.Context, reading *Reading) error

	// Name returns the name of the publisher
	Name() string

	// Enabled indicates if the publisher is active
	Enabled() bool
}

// Registry manages multiple publishers
type Registry struct {
	publishers []Publisher
}

// NewRegistry creates a new publisher registry
func NewRegistry() *Registry {
	return &Registry{
		publishers: make([]Publisher, 0),
	}
}

// Register registers a publisher. Publishers run in registration order.
func (r *Registry) Register(p Publisher) {
	r.publishers = append(r.publishers, p)
}

// PublishAll hands the reading to every enabled publisher. A failing
// publisher does not stop the others; all failures are joined.
func (r *Registry) PublishAll(ctx context.Context, reading *Reading) error {
	var errs []error

	for _, p := range r.publishers {
		if !p.Enabled() {
			continue
		}

		if err := p.Publish(ctx, reading); err != nil {
			logger.SafeWarn("collector", "Publish failed", map[string]interface{}{
				"publisher": p.Name(),
				"error":     err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// List returns all registered publishers
func (r *Registry) List() []Publisher {
	return r.publishers
}

// Count returns the number of registered publishers
func (r *Registry) Count() int {
	return len(r.publishers)
}

// EnabledCount returns the number of enabled publishers
func (r *Registry) EnabledCount() int {
	count := 0
	for _, p := range r.publishers {
		if p.Enabled() {
			count++
		}
	}
	return count
}
