package until

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// waiter ties one condition to one watchable and settles one Future.
//
// It is driven by three event sources: value changes, the timeout timer and
// the owning scope. Whichever reaches a terminal state first releases the
// subscriptions and timer before the future is resolved, so later events
// are no-ops.
type waiter[T any] struct {
	scope  context.Context
	events context.Context
	source Watchable[T]
	cond   *condition[T]
	cfg    *config
	future *Future[T]
	began  time.Time

	mu        sync.Mutex
	state     WaiterState
	remaining int
	unsubs    []func()
	timer     clockz.Timer
	stop      chan struct{}
}

// wait starts a waiter and returns its future.
func wait[T any](scope context.Context, source Watchable[T], cond *condition[T], cfg *config) *Future[T] {
	w := &waiter[T]{
		scope:  scope,
		events: context.WithoutCancel(scope),
		source: source,
		cond:   cond,
		cfg:    cfg,
		future: newFuture[T](),
		state:  WaiterCreated,
		stop:   make(chan struct{}),
	}
	w.future.waiter = w
	w.future.stateFn = w.currentState
	w.begin()
	return w.future
}

func (w *waiter[T]) currentState() WaiterState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// begin runs the immediate pass and, if it did not match, subscribes and
// arms the timer.
func (w *waiter[T]) begin() {
	w.began = w.cfg.clock.Now()
	capitan.Emit(w.events, WaiterStarted, w.fields()...)
	if w.cfg.metrics != nil {
		w.cfg.metrics.OnWaitStarted(w.cond.name())
	}

	if w.scope.Err() != nil {
		w.abandon()
		return
	}

	w.mu.Lock()
	w.state = WaiterEvaluating
	w.mu.Unlock()

	if !w.cond.counting() {
		current := w.source.Get()
		if payload, ok := w.cond.evaluate(current, current); ok {
			w.match(payload, WaiterEvaluating)
			return
		}
	}

	w.mu.Lock()
	if w.state.terminal() {
		w.mu.Unlock()
		return
	}
	w.state = WaiterWatching
	w.remaining = w.cond.changeTarget()
	w.mu.Unlock()

	w.track(w.source.Subscribe(w.onChange))
	if dep, ok := w.cond.dependency(); ok {
		w.track(dep.Subscribe(w.onDependencyChange))
	}

	w.mu.Lock()
	if w.state.terminal() {
		w.mu.Unlock()
		return
	}
	if w.cfg.hasTimeout {
		w.timer = w.cfg.clock.NewTimer(w.cfg.timeout)
	}
	timer := w.timer
	w.mu.Unlock()

	capitan.Emit(w.events, WaiterSubscribed, w.fields()...)

	if timer != nil || w.scope.Done() != nil {
		go w.run(timer)
	}

	// A change may have landed between the immediate pass and Subscribe.
	if !w.cond.counting() {
		w.recheck()
	}
}

// recheck evaluates the current value once the subscriptions are live. A
// panicking predicate releases the subscriptions and timer before the panic
// reaches the caller, since no future is returned to abandon.
func (w *waiter[T]) recheck() {
	defer func() {
		if p := recover(); p != nil {
			w.mu.Lock()
			if w.state.terminal() {
				w.mu.Unlock()
				panic(p)
			}
			release := w.finishLocked(WaiterAbandoned)
			w.mu.Unlock()
			release()
			panic(p)
		}
	}()

	current := w.source.Get()
	if payload, ok := w.cond.evaluate(current, current); ok {
		w.match(payload, WaiterWatching)
	}
}

// track records an unsubscribe function, or calls it right away if the
// waiter finished while subscribing.
func (w *waiter[T]) track(unsubscribe func()) {
	w.mu.Lock()
	if w.state.terminal() {
		w.mu.Unlock()
		unsubscribe()
		return
	}
	w.unsubs = append(w.unsubs, unsubscribe)
	w.mu.Unlock()
}

// run waits for the timer or the scope, whichever comes first.
func (w *waiter[T]) run(timer clockz.Timer) {
	var timerC <-chan time.Time
	if timer != nil {
		timerC = timer.C()
	}

	select {
	case <-w.stop:
	case <-timerC:
		w.expire()
	case <-w.scope.Done():
		w.abandon()
	}
}

// onChange handles a transition of the watched value.
func (w *waiter[T]) onChange(value, old T) {
	if w.cond.counting() {
		w.mu.Lock()
		if w.state != WaiterWatching {
			w.mu.Unlock()
			return
		}
		w.remaining--
		if w.remaining > 0 {
			w.mu.Unlock()
			return
		}
		release := w.finishLocked(WaiterSettled)
		w.mu.Unlock()
		release()
		w.resolve(Result[T]{Value: value, Outcome: OutcomeMatched})
		return
	}

	if w.currentState() != WaiterWatching {
		return
	}
	if payload, ok := w.cond.evaluate(value, old); ok {
		w.match(payload, WaiterWatching)
	}
}

// onDependencyChange re-evaluates the current value when an equality
// target changes.
func (w *waiter[T]) onDependencyChange(_, _ T) {
	if w.currentState() != WaiterWatching {
		return
	}
	current := w.source.Get()
	if payload, ok := w.cond.evaluate(current, current); ok {
		w.match(payload, WaiterWatching)
	}
}

// match settles the waiter with payload if it is still in the expected state.
func (w *waiter[T]) match(payload T, expected WaiterState) {
	w.mu.Lock()
	if w.state != expected {
		w.mu.Unlock()
		return
	}
	release := w.finishLocked(WaiterSettled)
	w.mu.Unlock()
	release()
	w.resolve(Result[T]{Value: payload, Outcome: OutcomeMatched})
}

// expire settles the waiter when the timer fires.
func (w *waiter[T]) expire() {
	w.mu.Lock()
	if w.state != WaiterWatching {
		w.mu.Unlock()
		return
	}
	release := w.finishLocked(WaiterSettled)
	w.mu.Unlock()
	release()

	if w.cfg.throwOnTimeout {
		w.resolve(Result[T]{Outcome: OutcomeFailed, Err: TimeoutError{After: w.cfg.timeout}})
		return
	}
	w.resolve(Result[T]{Outcome: OutcomeTimedOut})
}

// abandon releases everything without settling the future.
func (w *waiter[T]) abandon() {
	w.mu.Lock()
	if w.state.terminal() {
		w.mu.Unlock()
		return
	}
	release := w.finishLocked(WaiterAbandoned)
	w.mu.Unlock()
	release()

	capitan.Emit(w.events, WaiterReleased, w.fields()...)
	if w.cfg.metrics != nil {
		w.cfg.metrics.OnWaitAbandoned(w.cond.name())
	}
}

// finishLocked moves the waiter into a terminal state and returns a
// function that releases its subscriptions and timer. The caller must hold
// w.mu and must call the returned function after unlocking.
func (w *waiter[T]) finishLocked(next WaiterState) func() {
	w.state = next
	unsubs, timer := w.unsubs, w.timer
	w.unsubs, w.timer = nil, nil
	close(w.stop)

	return func() {
		for _, unsubscribe := range unsubs {
			unsubscribe()
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// resolve completes the future and reports the settlement.
func (w *waiter[T]) resolve(r Result[T]) {
	if !w.future.resolve(r) {
		return
	}

	elapsed := w.cfg.clock.Since(w.began)
	fields := append(w.fields(),
		KeyOutcome.Field(r.Outcome.String()),
		KeyElapsed.Field(elapsed),
	)
	if r.Outcome == OutcomeMatched {
		capitan.Emit(w.events, WaiterMatched, fields...)
	} else {
		capitan.Emit(w.events, WaiterTimedOut, fields...)
	}
	if w.cfg.metrics != nil {
		w.cfg.metrics.OnWaitSettled(w.cond.name(), r.Outcome, elapsed)
	}
}

// fields returns the event fields describing this wait.
func (w *waiter[T]) fields() []capitan.Field {
	fields := []capitan.Field{KeyCondition.Field(w.cond.name())}
	if w.cfg.hasTimeout {
		fields = append(fields, KeyTimeout.Field(w.cfg.timeout))
	}
	if w.cond.counting() {
		fields = append(fields, KeyRemaining.Field(w.cond.changeTarget()))
	}
	return fields
}
