package until

import "context"

// Facade builds waits over a single Watchable. It holds no state between
// calls, so one Facade may start any number of independent waits.
type Facade[T any] struct {
	scope   context.Context
	source  Watchable[T]
	negated bool
}

// For returns a Facade over source whose waits live until they settle or
// are abandoned.
//
//	v, err := until.For(ready).ToBeTruthy(until.WithTimeout(time.Second)).Wait(ctx)
func For[T any](source Watchable[T]) *Facade[T] {
	return ForContext(context.Background(), source)
}

// ForContext returns a Facade whose waits are abandoned when ctx is done:
// their subscriptions and timers are released and their futures never
// settle.
func ForContext[T any](ctx context.Context, source Watchable[T]) *Facade[T] {
	return &Facade[T]{scope: ctx, source: source}
}

// Not returns a new Facade with inverted conditions. Each call builds a
// fresh sibling; the receiver is never modified.
func (f *Facade[T]) Not() *Facade[T] {
	return &Facade[T]{scope: f.scope, source: f.source, negated: !f.negated}
}

// start applies negation and launches a waiter.
func (f *Facade[T]) start(c *condition[T], cfg *config) *Future[T] {
	if f.negated {
		c = negate(c)
	}
	return wait(f.scope, f.source, c, cfg)
}

// ToMatch waits until predicate reports true for the value.
// A panic in predicate propagates to whoever changed the value.
func (f *Facade[T]) ToMatch(predicate func(T) bool, opts ...Option) *Future[T] {
	return f.start(&condition[T]{kind: kindMatch, predicate: predicate}, newConfig(opts))
}

// ToBe waits until the value equals target. Equality is identity unless
// WithDeep is given.
func (f *Facade[T]) ToBe(target T, opts ...Option) *Future[T] {
	return f.ToBeSource(constant[T]{value: target}, opts...)
}

// ToBeSource waits until the value equals the current contents of target,
// read at every evaluation. When target is Watchable its changes also
// trigger an evaluation.
func (f *Facade[T]) ToBeSource(target Source[T], opts ...Option) *Future[T] {
	cfg := newConfig(opts)
	return f.start(&condition[T]{kind: kindEquality, target: target, deep: cfg.deep}, cfg)
}

// ToBeTruthy waits until the value is not nil, NaN or the zero value.
func (f *Facade[T]) ToBeTruthy(opts ...Option) *Future[T] {
	return f.start(&condition[T]{kind: kindTruthy}, newConfig(opts))
}

// ToBeNull waits until the value is a nil pointer, map, slice, chan, func
// or interface. It never matches types that cannot be nil.
func (f *Facade[T]) ToBeNull(opts ...Option) *Future[T] {
	return f.start(&condition[T]{kind: kindNull}, newConfig(opts))
}

// ToBeNaN waits until the value is a floating-point NaN.
func (f *Facade[T]) ToBeNaN(opts ...Option) *Future[T] {
	return f.start(&condition[T]{kind: kindNaN}, newConfig(opts))
}

// ToBeUndefined waits until the value is the zero value of T.
func (f *Facade[T]) ToBeUndefined(opts ...Option) *Future[T] {
	return f.start(&condition[T]{kind: kindUndefined}, newConfig(opts))
}

// Changed waits for the next change event, whatever the value.
func (f *Facade[T]) Changed(opts ...Option) *Future[T] {
	return f.ChangedTimes(1, opts...)
}

// ChangedTimes waits for the nth change event and settles with the value at
// that event. Values of n below 1 are treated as 1. Change counting never
// matches the current value.
//
// Negation does not invert the count: Not().ChangedTimes(n) still waits for
// n changes instead of settling on the immediate check. Use Not with a value
// condition to wait for a value to move away from a target.
func (f *Facade[T]) ChangedTimes(n int, opts ...Option) *Future[T] {
	if n < 1 {
		n = 1
	}
	return f.start(&condition[T]{kind: kindChangeCount, times: n}, newConfig(opts))
}

// SliceFacade is a Facade over a slice that adds membership conditions.
type SliceFacade[E any] struct {
	*Facade[[]E]
}

// ForSlice returns a SliceFacade over source.
func ForSlice[E any](source Watchable[[]E]) *SliceFacade[E] {
	return &SliceFacade[E]{Facade: For(source)}
}

// ForSliceContext returns a SliceFacade whose waits are abandoned when ctx
// is done.
func ForSliceContext[E any](ctx context.Context, source Watchable[[]E]) *SliceFacade[E] {
	return &SliceFacade[E]{Facade: ForContext(ctx, source)}
}

// Not returns a new SliceFacade with inverted conditions.
func (f *SliceFacade[E]) Not() *SliceFacade[E] {
	return &SliceFacade[E]{Facade: f.Facade.Not()}
}

// ToContains waits until the slice contains elem and settles with the whole
// slice. Elements are compared by identity unless WithDeep is given.
func (f *SliceFacade[E]) ToContains(elem E, opts ...Option) *Future[[]E] {
	cfg := newConfig(opts)
	c := &condition[[]E]{
		kind: kindContains,
		deep: cfg.deep,
		contains: func(values []E, deep bool) bool {
			return sliceContains(values, elem, deep)
		},
	}
	return f.start(c, cfg)
}
