package until

import "context"

// ChannelStream wraps an existing channel as a Stream.
// Useful for testing and custom sources that already produce values.
type ChannelStream[E any] struct {
	ch   <-chan E
	sync bool
}

// NewChannelStream creates a ChannelStream that forwards values from the
// given channel through an internal goroutine.
func NewChannelStream[E any](ch <-chan E) *ChannelStream[E] {
	return &ChannelStream[E]{ch: ch, sync: false}
}

// NewSyncChannelStream creates a ChannelStream that returns the source
// channel directly without an intermediate goroutine.
// Use with Capacitor.SyncMode() for deterministic testing.
func NewSyncChannelStream[E any](ch <-chan E) *ChannelStream[E] {
	return &ChannelStream[E]{ch: ch, sync: true}
}

// Watch returns a channel that emits values from the wrapped channel.
func (w *ChannelStream[E]) Watch(ctx context.Context) (<-chan E, error) {
	if w.sync {
		return w.ch, nil
	}

	out := make(chan E)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-w.ch:
				if !ok {
					return
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
