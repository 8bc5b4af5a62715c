package until

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce is the default debounce duration for change processing.
const DefaultDebounce = 100 * time.Millisecond

// Validator may be implemented by values decoded by a Capacitor to provide
// custom validation. Struct values that do not implement it are validated
// with go-playground/validator tags.
type Validator interface {
	Validate() error
}

// Capacitor is a Watchable fed by a byte Watcher. It decodes and validates
// every change and only publishes values that pass, keeping the previous
// valid value on failure.
//
// Subscribers are notified with the new and previous value each time a
// value is applied, which makes a Capacitor a natural target for waits:
//
//	c := until.NewCapacitor[Config](until.NewFileWatcher("config.yaml"), nil)
//	_ = c.Start(ctx)
//	cfg, err := until.For[Config](c).ToMatch(func(cfg Config) bool {
//	    return cfg.Ready
//	}, until.WithTimeout(30*time.Second), until.WithThrowOnTimeout()).Wait(ctx)
type Capacitor[T any] struct {
	watcher        Watcher
	apply          func(ctx context.Context, prev, curr T) error
	debounce       time.Duration
	startupTimeout time.Duration
	syncMode       bool
	clock          clockz.Clock
	codec          Codec
	metrics        MetricsProvider
	onStop         func(State)

	states       *Ref[State]
	current      atomic.Pointer[T]
	lastError    atomic.Pointer[error]
	errorHistory *errorRing
	subs         subscribers[T]

	mu      sync.Mutex
	started bool

	// For sync mode: channel to receive changes
	changes <-chan []byte
}

// NewCapacitor creates a Capacitor that watches a byte source.
//
// Each emission is decoded to T with the configured codec (auto-detected
// JSON or YAML by default) and validated. apply, if non-nil, is called with
// the previous and new value and may reject the change by returning an
// error. Instance configuration uses chainable methods before Start().
func NewCapacitor[T any](watcher Watcher, apply func(ctx context.Context, prev, curr T) error) *Capacitor[T] {
	return &Capacitor[T]{
		watcher:      watcher,
		apply:        apply,
		debounce:     DefaultDebounce,
		clock:        clockz.RealClock,
		codec:        AutoCodec{},
		states:       NewRef(StateLoading),
		errorHistory: newErrorRing(0),
	}
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Debounce sets the debounce duration for change processing.
// Changes arriving within this duration are coalesced into a single update.
// Default: 100ms. Must be called before Start().
func (c *Capacitor[T]) Debounce(d time.Duration) *Capacitor[T] {
	c.debounce = d
	return c
}

// SyncMode enables synchronous processing for testing.
// In sync mode, changes are processed only through Process(), without
// debouncing or goroutines. Must be called before Start().
func (c *Capacitor[T]) SyncMode() *Capacitor[T] {
	c.syncMode = true
	return c
}

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic debounce testing.
// Must be called before Start().
func (c *Capacitor[T]) Clock(clock clockz.Clock) *Capacitor[T] {
	c.clock = clock
	return c
}

// Codec sets the codec for decoding values.
// Default: AutoCodec. Must be called before Start().
func (c *Capacitor[T]) Codec(codec Codec) *Capacitor[T] {
	c.codec = codec
	return c
}

// StartupTimeout sets the maximum duration to wait for the initial value
// from the watcher. Default: no timeout. Must be called before Start().
func (c *Capacitor[T]) StartupTimeout(d time.Duration) *Capacitor[T] {
	c.startupTimeout = d
	return c
}

// Metrics sets a metrics provider for observability integration.
// Must be called before Start().
func (c *Capacitor[T]) Metrics(provider MetricsProvider) *Capacitor[T] {
	c.metrics = provider
	return c
}

// OnStop sets a callback that is invoked when the capacitor stops watching.
// The callback receives the final state. Must be called before Start().
func (c *Capacitor[T]) OnStop(fn func(State)) *Capacitor[T] {
	c.onStop = fn
	return c
}

// ErrorHistorySize sets the number of recent errors to retain.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before Start().
func (c *Capacitor[T]) ErrorHistorySize(n int) *Capacitor[T] {
	c.errorHistory = newErrorRing(n)
	return c
}

// -----------------------------------------------------------------------------
// Watchable
// -----------------------------------------------------------------------------

// Get returns the current valid value, or the zero value if none has been
// applied.
func (c *Capacitor[T]) Get() T {
	v, _ := c.Current()
	return v
}

// Subscribe registers fn to be called each time a value is applied.
func (c *Capacitor[T]) Subscribe(fn func(value, old T)) func() {
	return c.subs.add(fn)
}

// State returns the current state of the Capacitor.
func (c *Capacitor[T]) State() State {
	return c.states.Get()
}

// States returns the capacitor state as a Watchable, for example to wait
// until it becomes healthy.
func (c *Capacitor[T]) States() Watchable[State] {
	return c.states
}

// Current returns the current valid value and true, or the zero value and
// false if no valid value has been applied.
func (c *Capacitor[T]) Current() (T, bool) {
	ptr := c.current.Load()
	if ptr == nil {
		var zero T
		return zero, false
	}
	return *ptr, true
}

// LastError returns the last error encountered, or nil if no error occurred.
func (c *Capacitor[T]) LastError() error {
	ptr := c.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the recent error history, oldest first.
// Returns nil if error history is not enabled (see ErrorHistorySize).
func (c *Capacitor[T]) ErrorHistory() []error {
	return c.errorHistory.all()
}

// Start begins watching for changes. It blocks until the first value is
// processed (success or failure), then continues watching asynchronously.
//
// If the initial value fails, Start returns the error but continues
// watching in the background for valid updates.
//
// In sync mode, Start only processes the initial value. Use Process() to
// manually trigger processing of subsequent values.
//
// Start can only be called once. Subsequent calls return an error.
func (c *Capacitor[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return fmt.Errorf("capacitor already started")
	}
	c.started = true
	c.mu.Unlock()

	capitan.Emit(ctx, CapacitorStarted,
		KeyDebounce.Field(c.debounce),
		KeyContentType.Field(c.codec.ContentType()),
	)

	changes, err := c.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	startupCtx := ctx
	if c.startupTimeout > 0 {
		var cancel context.CancelFunc
		startupCtx, cancel = c.clock.WithTimeout(ctx, c.startupTimeout)
		defer cancel()
	}

	var initialErr error
	select {
	case <-startupCtx.Done():
		if c.startupTimeout > 0 && startupCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("startup timeout: watcher did not emit initial value within %v", c.startupTimeout)
		}
		return startupCtx.Err()
	case raw, ok := <-changes:
		if !ok {
			return fmt.Errorf("watcher closed before emitting initial value")
		}
		c.received(ctx)
		initialErr = c.process(ctx, raw)
	}

	if c.syncMode {
		c.changes = changes
		return initialErr
	}

	go c.watch(ctx, changes)

	return initialErr
}

// Process reads and processes the next value from the watcher.
// This is only available in sync mode and is used for deterministic testing.
// Returns false if no value is available or the channel is closed.
func (c *Capacitor[T]) Process(ctx context.Context) bool {
	if !c.syncMode {
		return false
	}

	select {
	case raw, ok := <-c.changes:
		if !ok {
			return false
		}
		c.received(ctx)
		_ = c.process(ctx, raw) //nolint:errcheck // Errors stored via setError
		return true
	default:
		return false
	}
}

// received reports a raw change.
func (c *Capacitor[T]) received(ctx context.Context) {
	capitan.Emit(ctx, CapacitorChangeReceived)
	if c.metrics != nil {
		c.metrics.OnChangeReceived()
	}
}

// process decodes, validates, applies and publishes a single update.
func (c *Capacitor[T]) process(ctx context.Context, raw []byte) error {
	start := c.clock.Now()

	var result T
	if err := c.codec.Unmarshal(raw, &result); err != nil {
		c.fail(ctx, "decode", start, err)
		return fmt.Errorf("decode failed: %w", err)
	}

	if err := validateValue(result); err != nil {
		c.fail(ctx, "validate", start, err)
		return fmt.Errorf("validation failed: %w", err)
	}

	prev, _ := c.Current()
	if c.apply != nil {
		if err := c.apply(ctx, prev, result); err != nil {
			c.fail(ctx, "apply", start, err)
			return fmt.Errorf("apply failed: %w", err)
		}
	}

	c.current.Store(&result)
	c.lastError.Store(nil)
	c.errorHistory.clear()
	c.transitionState(ctx, StateHealthy)
	capitan.Emit(ctx, CapacitorApplySucceeded)
	if c.metrics != nil {
		c.metrics.OnProcessSuccess(c.clock.Since(start))
	}

	c.subs.notify(result, prev)
	return nil
}

// fail records a processing failure at the given stage.
func (c *Capacitor[T]) fail(ctx context.Context, stage string, start time.Time, err error) {
	c.setError(err)
	c.transitionState(ctx, c.failureState())
	switch stage {
	case "decode":
		capitan.Emit(ctx, CapacitorDecodeFailed, KeyError.Field(err.Error()))
	case "validate":
		capitan.Emit(ctx, CapacitorValidationFailed, KeyError.Field(err.Error()))
	default:
		capitan.Emit(ctx, CapacitorApplyFailed, KeyError.Field(err.Error()))
	}
	if c.metrics != nil {
		c.metrics.OnProcessFailure(stage, c.clock.Since(start))
	}
}

// validateValue runs Validate when implemented, otherwise struct tag
// validation for struct values.
func validateValue(v any) error {
	if val, ok := v.(Validator); ok {
		return val.Validate()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(v)
}

// failureState returns the appropriate failure state based on whether
// a valid value has ever been applied.
func (c *Capacitor[T]) failureState() State {
	if c.current.Load() == nil {
		return StateEmpty
	}
	return StateDegraded
}

// transitionState updates the state and emits a state change event if changed.
func (c *Capacitor[T]) transitionState(ctx context.Context, newState State) {
	oldState := c.states.Get()
	if oldState == newState {
		return
	}
	c.states.Set(newState)
	capitan.Emit(ctx, CapacitorStateChanged,
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	if c.metrics != nil {
		c.metrics.OnStateChange(oldState, newState)
	}
}

// setError stores an error atomically and adds it to the error history.
func (c *Capacitor[T]) setError(err error) {
	e := err
	c.lastError.Store(&e)
	c.errorHistory.push(err)
}

// watch processes changes from the watcher channel with debouncing.
func (c *Capacitor[T]) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		finalState := c.State()
		capitan.Emit(context.WithoutCancel(ctx), CapacitorStopped,
			KeyState.Field(finalState.String()),
		)
		if c.onStop != nil {
			c.onStop(finalState)
		}
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				if hasPending {
					_ = c.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				}
				return
			}

			c.received(ctx)
			pending = raw
			hasPending = true

			if timer == nil {
				timer = c.clock.NewTimer(c.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(c.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = c.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				hasPending = false
			}
		}
	}
}

var _ Watchable[int] = (*Capacitor[int])(nil)
