package until

import (
	"sync"
	"sync/atomic"
)

// Source is anything that can report its current value.
type Source[T any] interface {
	// Get returns the current value.
	Get() T
}

// Watchable is a value that changes over time and notifies subscribers of
// every transition.
//
// Implementations must update the value before invoking callbacks, notify
// subscribers in registration order, and never invoke a callback after its
// unsubscribe function has returned.
type Watchable[T any] interface {
	Source[T]

	// Subscribe registers fn to be called with the new and previous value
	// on every change. The returned function removes the subscription and
	// is safe to call more than once, including from inside fn.
	Subscribe(fn func(value, old T)) (unsubscribe func())
}

// Ref is a mutable value container implementing Watchable.
// It is safe for concurrent use. Notifications are delivered synchronously
// on the goroutine that changed the value.
type Ref[T any] struct {
	mu    sync.RWMutex
	value T
	subs  subscribers[T]
}

// NewRef creates a Ref holding the given initial value.
func NewRef[T any](initial T) *Ref[T] {
	return &Ref[T]{value: initial}
}

// Get returns the current value.
func (r *Ref[T]) Get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set replaces the value and notifies subscribers.
// Setting a value that is identical to the current one is not a change
// and does not notify. NaN is considered identical to NaN.
func (r *Ref[T]) Set(value T) {
	r.mu.Lock()
	old := r.value
	if sameValue(old, value) {
		r.mu.Unlock()
		return
	}
	r.value = value
	r.mu.Unlock()

	r.subs.notify(value, old)
}

// Update applies fn to the current value, stores the result and always
// notifies subscribers. Use it for in-place mutations such as appending to a
// slice, where identity comparison cannot detect the change.
func (r *Ref[T]) Update(fn func(T) T) {
	r.mu.Lock()
	old := r.value
	r.value = fn(old)
	value := r.value
	r.mu.Unlock()

	r.subs.notify(value, old)
}

// Subscribe implements Watchable.
func (r *Ref[T]) Subscribe(fn func(value, old T)) func() {
	return r.subs.add(fn)
}

// SubscriberCount returns the number of active subscriptions.
func (r *Ref[T]) SubscriberCount() int {
	return r.subs.len()
}

var _ Watchable[int] = (*Ref[int])(nil)

// subscription is a single registered callback.
type subscription[T any] struct {
	fn     func(value, old T)
	active atomic.Bool
}

// subscribers is an ordered, concurrency-safe callback registry shared by
// every Watchable in the package. The zero value is ready to use.
type subscribers[T any] struct {
	mu      sync.Mutex
	entries []*subscription[T]
}

// add registers fn and returns an idempotent unsubscribe function.
func (s *subscribers[T]) add(fn func(value, old T)) func() {
	sub := &subscription[T]{fn: fn}
	sub.active.Store(true)

	s.mu.Lock()
	s.entries = append(s.entries, sub)
	s.mu.Unlock()

	return func() {
		if !sub.active.CompareAndSwap(true, false) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.entries {
			if e == sub {
				s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
				break
			}
		}
	}
}

// notify calls every active subscriber in registration order. Callbacks run
// without the registry lock held so they may subscribe, unsubscribe or
// change the value that triggered them.
func (s *subscribers[T]) notify(value, old T) {
	s.mu.Lock()
	snapshot := make([]*subscription[T], len(s.entries))
	copy(snapshot, s.entries)
	s.mu.Unlock()

	for _, sub := range snapshot {
		if !sub.active.Load() {
			continue
		}
		sub.fn(value, old)
	}
}

// len returns the number of active subscribers.
func (s *subscribers[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
