package until

import "time"

// ErrTimeout is the failure a wait settles with when its timeout elapses and
// ThrowOnTimeout is enabled. Match it with errors.Is.
var ErrTimeout error = TimeoutError{}

// TimeoutError reports that a wait did not match before its timeout.
// Its message is the literal reason "Timeout".
type TimeoutError struct {
	// After is the configured timeout that elapsed.
	After time.Duration
}

// Error returns "Timeout".
func (TimeoutError) Error() string {
	return "Timeout"
}

// Is reports whether target is a TimeoutError, regardless of duration.
func (TimeoutError) Is(target error) bool {
	_, ok := target.(TimeoutError)
	return ok
}
