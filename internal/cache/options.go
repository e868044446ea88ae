package cache

import (
	"time"

	"github.com/robostats/scoutrank/pkg/logger"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTTL sets the freshness window for cached records.
func WithTTL(ttl time.Duration) Option {
	return func(c *Coordinator) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the coordinator logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}
