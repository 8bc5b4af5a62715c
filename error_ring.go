package until

import "sync"

// ring is a fixed-capacity, concurrency-safe buffer that keeps the most
// recent items. A nil ring is valid and stores nothing.
type ring[T any] struct {
	mu    sync.RWMutex
	items []T
	head  int
	count int
}

// errorRing keeps recent processing errors.
type errorRing = ring[error]

// newErrorRing creates an error ring with the given capacity, or nil when
// size is not positive.
func newErrorRing(size int) *errorRing {
	return newRing[error](size)
}

func newRing[T any](size int) *ring[T] {
	if size <= 0 {
		return nil
	}
	return &ring[T]{items: make([]T, size)}
}

// push adds an item, overwriting the oldest when full.
func (r *ring[T]) push(item T) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.head] = item
	r.head = (r.head + 1) % len(r.items)
	if r.count < len(r.items) {
		r.count++
	}
}

// clear removes all items.
func (r *ring[T]) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.items)
	r.head = 0
	r.count = 0
}

// all returns the stored items, oldest first, or nil when empty.
func (r *ring[T]) all() []T {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}

	size := len(r.items)
	out := make([]T, r.count)
	start := (r.head - r.count + size) % size
	for i := range out {
		out[i] = r.items[(start+i)%size]
	}
	return out
}
