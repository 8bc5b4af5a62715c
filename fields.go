package until

import "github.com/zoobzio/capitan"

// Field keys for wait events.
var (
	// KeyCondition is the condition name, prefixed with "not_" when negated.
	KeyCondition = capitan.NewStringKey("condition")

	// KeyOutcome is how a wait settled.
	KeyOutcome = capitan.NewStringKey("outcome")

	// KeyTimeout is the configured wait timeout.
	KeyTimeout = capitan.NewDurationKey("timeout")

	// KeyElapsed is the time between the start of a wait and its settlement.
	KeyElapsed = capitan.NewDurationKey("elapsed")

	// KeyRemaining is the number of change events a counting wait still needs.
	KeyRemaining = capitan.NewIntKey("remaining")
)

// Field keys for Capacitor events.
var (
	// KeyState is the current state of the Capacitor.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyContentType is the MIME type of the configured codec.
	KeyContentType = capitan.NewStringKey("content_type")
)
