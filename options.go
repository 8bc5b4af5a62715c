package until

import (
	"time"

	"github.com/zoobzio/clockz"
)

// config holds the options for a single wait.
type config struct {
	timeout        time.Duration
	hasTimeout     bool
	throwOnTimeout bool
	deep           bool
	clock          clockz.Clock
	metrics        MetricsProvider
}

// Option configures a wait.
type Option func(*config)

func newConfig(opts []Option) *config {
	cfg := &config{clock: clockz.RealClock}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithTimeout arms a timer that settles the wait after d if the condition
// has not matched. A zero duration fires on the next scheduling opportunity.
// Negative durations are treated as zero. Without this option the wait has
// no timer.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d < 0 {
			d = 0
		}
		c.timeout = d
		c.hasTimeout = true
	}
}

// WithThrowOnTimeout makes a timeout settle the wait as a TimeoutError
// instead of a silent success.
func WithThrowOnTimeout() Option {
	return func(c *config) {
		c.throwOnTimeout = true
	}
}

// WithDeep switches equality and containment checks from identity to
// structural comparison.
func WithDeep() Option {
	return func(c *config) {
		c.deep = true
	}
}

// WithClock sets the clock used for the timeout timer.
// Use this with clockz.FakeClock for deterministic timeout testing.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithMetrics sets a metrics provider that observes the wait lifecycle.
func WithMetrics(provider MetricsProvider) Option {
	return func(c *config) {
		c.metrics = provider
	}
}

// WithPolicy applies a Policy, typically loaded from a configuration file.
// Options given after it override its fields.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		if d, ok := p.TimeoutDuration(); ok {
			WithTimeout(d)(c)
		}
		c.throwOnTimeout = p.ThrowOnTimeout
		c.deep = p.Deep
	}
}
