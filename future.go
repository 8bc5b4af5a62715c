package until

import (
	"context"
	"sync"
)

// Outcome describes how a wait settled.
type Outcome int

const (
	// OutcomePending means the wait has not settled. Abandoned waits stay
	// pending forever.
	OutcomePending Outcome = iota

	// OutcomeMatched means the condition matched and the result carries
	// the payload.
	OutcomeMatched

	// OutcomeTimedOut means the timeout elapsed without ThrowOnTimeout.
	// The wait succeeded without a payload.
	OutcomeTimedOut

	// OutcomeFailed means the timeout elapsed with ThrowOnTimeout and the
	// result carries a TimeoutError.
	OutcomeFailed
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeMatched:
		return "matched"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the settlement of a wait.
type Result[T any] struct {
	// Value is the matched payload. It is the zero value unless Outcome is
	// OutcomeMatched.
	Value T

	// Outcome tells matched, silently timed out and failed apart.
	Outcome Outcome

	// Err is non-nil only for OutcomeFailed.
	Err error
}

// Future is the single-shot handle returned by every condition method.
type Future[T any] struct {
	done    chan struct{}
	once    sync.Once
	result  Result[T]
	waiter  interface{ abandon() }
	stateFn func() WaiterState
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve records the result and releases waiters. Only the first call has
// any effect.
func (f *Future[T]) resolve(r Result[T]) bool {
	resolved := false
	f.once.Do(func() {
		f.result = r
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done returns a channel that is closed once the wait settles.
// It is never closed for an abandoned wait.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the wait settles or ctx is done.
//
// A match returns the payload. A timeout with ThrowOnTimeout returns a
// TimeoutError. A timeout without ThrowOnTimeout returns the zero value and
// a nil error, exactly like a match on the zero value would; use Result or
// Outcome when the difference matters. Canceling ctx only stops this call
// from waiting and does not affect the wait itself.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the settlement and true, or false if the wait has not
// settled.
func (f *Future[T]) Result() (Result[T], bool) {
	select {
	case <-f.done:
		return f.result, true
	default:
		return Result[T]{}, false
	}
}

// Outcome returns how the wait settled, or OutcomePending.
func (f *Future[T]) Outcome() Outcome {
	r, _ := f.Result()
	return r.Outcome
}

// State returns the lifecycle state of the underlying waiter.
func (f *Future[T]) State() WaiterState {
	if f.stateFn == nil {
		return WaiterSettled
	}
	return f.stateFn()
}

// Abandon tears the wait down without settling it: the subscription and
// timer are released and the future stays pending. It has no effect on a
// settled wait.
func (f *Future[T]) Abandon() {
	if f.waiter != nil {
		f.waiter.abandon()
	}
}
