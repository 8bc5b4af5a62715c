package until

// State represents the current state of a Capacitor.
type State int32

const (
	// StateLoading indicates the Capacitor is initializing and has not yet
	// processed any value.
	StateLoading State = iota

	// StateHealthy indicates the Capacitor has a valid value applied.
	StateHealthy

	// StateDegraded indicates the last change failed decoding, validation or
	// application. The previous valid value remains current.
	StateDegraded

	// StateEmpty indicates the initial load failed and no valid value has
	// ever been obtained. The Capacitor continues watching for valid updates.
	StateEmpty
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// WaiterState is the lifecycle position of a single wait.
type WaiterState int32

const (
	// WaiterCreated is the transient state during construction.
	WaiterCreated WaiterState = iota

	// WaiterEvaluating is the synchronous immediate check against the
	// current value.
	WaiterEvaluating

	// WaiterWatching means a live subscription and, optionally, a pending
	// timer exist.
	WaiterWatching

	// WaiterSettled is terminal: the future has an outcome and all
	// resources are released.
	WaiterSettled

	// WaiterAbandoned is terminal: the owning scope ended before a match,
	// resources are released and the future never settles.
	WaiterAbandoned
)

// String returns the string representation of the waiter state.
func (s WaiterState) String() string {
	switch s {
	case WaiterCreated:
		return "created"
	case WaiterEvaluating:
		return "evaluating"
	case WaiterWatching:
		return "watching"
	case WaiterSettled:
		return "settled"
	case WaiterAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// terminal reports whether no further events are processed in this state.
func (s WaiterState) terminal() bool {
	return s == WaiterSettled || s == WaiterAbandoned
}
