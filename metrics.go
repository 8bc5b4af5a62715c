package until

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key wait and capacitor events.
type MetricsProvider interface {
	// OnWaitStarted is called when a wait is created.
	OnWaitStarted(condition string)

	// OnWaitSettled is called when a wait settles. Duration is the time
	// from creation to settlement.
	OnWaitSettled(condition string, outcome Outcome, duration time.Duration)

	// OnWaitAbandoned is called when a wait is torn down without settling.
	OnWaitAbandoned(condition string)

	// OnStateChange is called when a capacitor transitions between states.
	OnStateChange(from, to State)

	// OnProcessSuccess is called when a capacitor applies a value.
	// Duration is the time taken to decode, validate and apply.
	OnProcessSuccess(duration time.Duration)

	// OnProcessFailure is called when capacitor processing fails at any stage.
	// Stage indicates where the failure occurred: "decode", "validate", or "apply".
	OnProcessFailure(stage string, duration time.Duration)

	// OnChangeReceived is called when a capacitor receives raw data from its watcher.
	OnChangeReceived()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnWaitStarted(_ string)                             {}
func (NoOpMetricsProvider) OnWaitSettled(_ string, _ Outcome, _ time.Duration) {}
func (NoOpMetricsProvider) OnWaitAbandoned(_ string)                           {}
func (NoOpMetricsProvider) OnStateChange(_, _ State)                           {}
func (NoOpMetricsProvider) OnProcessSuccess(_ time.Duration)                   {}
func (NoOpMetricsProvider) OnProcessFailure(_ string, _ time.Duration)         {}
func (NoOpMetricsProvider) OnChangeReceived()                                  {}
