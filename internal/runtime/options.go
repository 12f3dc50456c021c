package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/tripreel/pkg/domain"
)

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithOverlappingSubmissions allows Submit while a request is pending.
// The newest submission always owns the state: resolutions of older ones are
// discarded instead of overwriting it.
func WithOverlappingSubmissions() Option {
	return func(c *Controller) {
		c.allowOverlap = true
	}
}
