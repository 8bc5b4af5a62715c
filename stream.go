package until

import "context"

// Stream is a push source of values.
//
// Watch subscribes and returns a channel of emissions. The channel is closed
// when the stream completes or ctx is canceled; canceling ctx is how a
// subscriber unsubscribes. An error means the subscription could not be
// established.
type Stream[E any] interface {
	Watch(ctx context.Context) (<-chan E, error)
}

// FailingStream is implemented by streams that can fail after Watch has
// returned. Err is read once the emission channel closes: a non-nil error
// means the stream failed rather than completed. It reports the outcome of
// the most recent Watch.
type FailingStream interface {
	Err() error
}

// Watcher is a Stream of raw bytes, such as the contents of a file.
// Implementations should emit the current contents immediately so that
// consumers can load an initial value.
type Watcher = Stream[[]byte]

// StreamFunc adapts a function to the Stream interface.
type StreamFunc[E any] func(ctx context.Context) (<-chan E, error)

// Watch calls f.
func (f StreamFunc[E]) Watch(ctx context.Context) (<-chan E, error) {
	return f(ctx)
}
