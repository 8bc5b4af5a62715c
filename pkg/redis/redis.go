// Package redis provides an until.Watcher for Redis keys using keyspace
// notifications.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/zoobzio/until"
)

// Watcher watches a Redis key for changes using keyspace notifications.
// Requires Redis to have keyspace notifications enabled:
//
//	CONFIG SET notify-keyspace-events KEA
//
// Or in redis.conf:
//
//	notify-keyspace-events KEA
type Watcher struct {
	client redis.UniversalClient
	key    string
	db     int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDB sets the database index whose keyspace channel is subscribed.
// Defaults to 0.
func WithDB(db int) Option {
	return func(w *Watcher) {
		w.db = db
	}
}

// New creates a new Watcher for the given Redis key.
func New(client redis.UniversalClient, key string, opts ...Option) *Watcher {
	w := &Watcher{
		client: client,
		key:    key,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Channel returns the keyspace notification channel for the watched key.
func (w *Watcher) Channel() string {
	return fmt.Sprintf("__keyspace@%d__:%s", w.db, w.key)
}

// Watch begins watching the Redis key and returns a channel that emits
// the key's value whenever it is written. The current value is emitted
// immediately if the key exists.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	pubsub := w.client.Subscribe(ctx, w.Channel())

	// Verify subscription worked
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to keyspace notifications: %w", err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer pubsub.Close()

		emit := func() bool {
			val, err := w.client.Get(ctx, w.key).Bytes()
			if errors.Is(err, redis.Nil) {
				return true
			}
			if err != nil {
				return ctx.Err() == nil
			}
			select {
			case out <- val:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if !isWrite(msg.Payload) {
					continue
				}
				if !emit() {
					return
				}
			}
		}
	}()

	return out, nil
}

// isWrite reports whether a keyspace event replaces the key's string value.
func isWrite(event string) bool {
	switch event {
	case "set", "mset", "setex", "psetex", "setnx", "setrange", "append", "incrby", "incrbyfloat", "getset":
		return true
	}
	return false
}

var _ until.Watcher = (*Watcher)(nil)
