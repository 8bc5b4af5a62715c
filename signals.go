package until

import "github.com/zoobzio/capitan"

// Waiter lifecycle signals.
var (
	// WaiterStarted is emitted when a condition method creates a wait.
	WaiterStarted = capitan.NewSignal(
		"until.waiter.started",
		"Wait started",
	)

	// WaiterSubscribed is emitted when the immediate check did not match and
	// the wait subscribed to the value.
	WaiterSubscribed = capitan.NewSignal(
		"until.waiter.subscribed",
		"Wait subscribed for changes",
	)

	// WaiterMatched is emitted when the condition matched.
	WaiterMatched = capitan.NewSignal(
		"until.waiter.matched",
		"Wait condition matched",
	)

	// WaiterTimedOut is emitted when the timeout elapsed before a match.
	WaiterTimedOut = capitan.NewSignal(
		"until.waiter.timed_out",
		"Wait timed out",
	)

	// WaiterReleased is emitted when the owning scope ended before a match
	// and the wait was abandoned.
	WaiterReleased = capitan.NewSignal(
		"until.waiter.released",
		"Wait abandoned",
	)
)

// Stream bridge signals.
var (
	// ExtractSubscribed is emitted when the bridge subscribes to a new stream.
	ExtractSubscribed = capitan.NewSignal(
		"until.extract.subscribed",
		"Extracted stream subscribed",
	)

	// ExtractCompleted is emitted when the active stream completes.
	ExtractCompleted = capitan.NewSignal(
		"until.extract.completed",
		"Extracted stream completed",
	)

	// ExtractFailed is emitted when subscribing to a stream fails.
	ExtractFailed = capitan.NewSignal(
		"until.extract.failed",
		"Extracted stream failed",
	)

	// ExtractClosed is emitted when the bridge is torn down.
	ExtractClosed = capitan.NewSignal(
		"until.extract.closed",
		"Extracted stream closed",
	)
)

// Capacitor lifecycle signals.
var (
	// CapacitorStarted is emitted when a Capacitor begins watching.
	CapacitorStarted = capitan.NewSignal(
		"until.capacitor.started",
		"Capacitor watching started",
	)

	// CapacitorStopped is emitted when a Capacitor stops watching.
	CapacitorStopped = capitan.NewSignal(
		"until.capacitor.stopped",
		"Capacitor watching stopped",
	)

	// CapacitorStateChanged is emitted when a Capacitor transitions between states.
	CapacitorStateChanged = capitan.NewSignal(
		"until.capacitor.state.changed",
		"Capacitor state transition",
	)

	// CapacitorChangeReceived is emitted when raw data is received from the watcher.
	CapacitorChangeReceived = capitan.NewSignal(
		"until.capacitor.change.received",
		"Raw change received from watcher",
	)

	// CapacitorDecodeFailed is emitted when the codec cannot decode a change.
	CapacitorDecodeFailed = capitan.NewSignal(
		"until.capacitor.decode.failed",
		"Decoding failed",
	)

	// CapacitorValidationFailed is emitted when validation fails.
	CapacitorValidationFailed = capitan.NewSignal(
		"until.capacitor.validation.failed",
		"Validation failed",
	)

	// CapacitorApplyFailed is emitted when the apply callback fails.
	CapacitorApplyFailed = capitan.NewSignal(
		"until.capacitor.apply.failed",
		"Apply callback failed",
	)

	// CapacitorApplySucceeded is emitted when a value is successfully applied.
	CapacitorApplySucceeded = capitan.NewSignal(
		"until.capacitor.apply.succeeded",
		"Value applied successfully",
	)
)
