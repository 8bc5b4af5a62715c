package until

import (
	"context"
	"fmt"
	"sync"

	"github.com/zoobzio/capitan"
)

// Extracted republishes the emissions of a stream derived from a watched
// value. Whenever the source changes, the previous stream is released and,
// unless the new value is nil, a stream is extracted from it and subscribed.
// At most one stream is active at a time.
//
// Extracted is itself Watchable, so it can be waited on:
//
//	latest := until.Extract(path, func(p, _ string) until.Watcher {
//	    return until.NewFileWatcher(p)
//	})
//	if err := latest.Start(ctx); err != nil {
//	    return err
//	}
//	data, err := until.For[[]byte](latest).ToBeTruthy().Wait(ctx)
type Extracted[S, E any] struct {
	source     Watchable[S]
	extractor  func(value, old S) Stream[E]
	onError    func(error)
	onComplete func()
	out        *Ref[E]

	mu        sync.Mutex
	scope     context.Context
	events    context.Context
	started   bool
	closed    bool
	gen       uint64
	cancel    context.CancelFunc
	unsub     func()
	stopScope func() bool
}

// Extract creates a bridge from source to the streams produced by extractor.
// Configure it with the chainable methods, then call Start.
func Extract[S, E any](source Watchable[S], extractor func(value, old S) Stream[E]) *Extracted[S, E] {
	return &Extracted[S, E]{
		source:    source,
		extractor: extractor,
		out:       NewRef(*new(E)),
	}
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Initial sets the value reported before any stream emits.
// Must be called before Start().
func (x *Extracted[S, E]) Initial(value E) *Extracted[S, E] {
	x.out.Set(value)
	return x
}

// OnError sets a callback invoked when subscribing to a stream fails, or
// when an active stream implementing FailingStream closes with an error.
// Must be called before Start().
func (x *Extracted[S, E]) OnError(fn func(error)) *Extracted[S, E] {
	x.onError = fn
	return x
}

// OnComplete sets a callback invoked when the active stream completes
// without error.
// Must be called before Start().
func (x *Extracted[S, E]) OnComplete(fn func()) *Extracted[S, E] {
	x.onComplete = fn
	return x
}

// Start subscribes to the source and extracts a stream from its current
// value. The bridge is closed when ctx is done.
//
// Start can only be called once. Subsequent calls return an error.
func (x *Extracted[S, E]) Start(ctx context.Context) error {
	x.mu.Lock()
	if x.started {
		x.mu.Unlock()
		return fmt.Errorf("extract already started")
	}
	x.started = true
	x.scope = ctx
	x.events = context.WithoutCancel(ctx)
	x.mu.Unlock()

	unsub := x.source.Subscribe(x.switchTo)

	x.mu.Lock()
	x.unsub = unsub
	x.stopScope = context.AfterFunc(ctx, x.Close)
	x.mu.Unlock()

	var zero S
	x.switchTo(x.source.Get(), zero)
	return nil
}

// Get returns the latest emission, or the initial value.
func (x *Extracted[S, E]) Get() E {
	return x.out.Get()
}

// Subscribe implements Watchable.
func (x *Extracted[S, E]) Subscribe(fn func(value, old E)) func() {
	return x.out.Subscribe(fn)
}

// Close releases the active stream and the source subscription.
// The last emission remains readable.
func (x *Extracted[S, E]) Close() {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return
	}
	x.closed = true
	x.gen++
	cancel, unsub, stop := x.cancel, x.unsub, x.stopScope
	x.cancel, x.unsub, x.stopScope = nil, nil, nil
	events := x.events
	x.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsub != nil {
		unsub()
	}
	if stop != nil {
		stop()
	}
	if events != nil {
		capitan.Emit(events, ExtractClosed)
	}
}

// switchTo replaces the active stream with one extracted from value.
func (x *Extracted[S, E]) switchTo(value, old S) {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return
	}
	if x.cancel != nil {
		x.cancel()
		x.cancel = nil
	}
	x.gen++
	gen := x.gen
	if isNil(value) {
		x.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(x.scope)
	x.cancel = cancel
	x.mu.Unlock()

	stream := x.extractor(value, old)
	if stream == nil {
		return
	}

	ch, err := stream.Watch(ctx)
	if err != nil {
		if !x.current(gen) {
			return
		}
		x.fail(err)
		return
	}

	capitan.Emit(x.events, ExtractSubscribed)
	go x.forward(ctx, gen, stream, ch)
}

// fail reports a stream error.
func (x *Extracted[S, E]) fail(err error) {
	capitan.Emit(x.events, ExtractFailed, KeyError.Field(err.Error()))
	if x.onError != nil {
		x.onError(err)
	}
}

// forward republishes emissions of one stream generation.
func (x *Extracted[S, E]) forward(ctx context.Context, gen uint64, stream Stream[E], ch <-chan E) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-ch:
			if !ok {
				if x.current(gen) {
					x.finish(stream)
				}
				return
			}
			if !x.current(gen) {
				return
			}
			x.out.Set(v)
		}
	}
}

// finish reports the end of the active stream as a failure or a completion.
func (x *Extracted[S, E]) finish(stream Stream[E]) {
	if fs, ok := stream.(FailingStream); ok {
		if err := fs.Err(); err != nil {
			x.fail(err)
			return
		}
	}
	capitan.Emit(x.events, ExtractCompleted)
	if x.onComplete != nil {
		x.onComplete()
	}
}

// current reports whether gen is the active stream generation.
func (x *Extracted[S, E]) current(gen uint64) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return !x.closed && x.gen == gen
}

var _ Watchable[int] = (*Extracted[string, int])(nil)
