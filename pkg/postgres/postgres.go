// Package postgres provides an until.Watcher for PostgreSQL using
// LISTEN/NOTIFY with a backing table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zoobzio/until"
)

// Watcher watches a PostgreSQL table row for changes using LISTEN/NOTIFY.
// Requires a trigger on the table that notifies with the row key:
//
//	CREATE OR REPLACE FUNCTION notify_config_change() RETURNS trigger AS $$
//	BEGIN
//	    PERFORM pg_notify('config_changed', NEW.key);
//	    RETURN NEW;
//	END;
//	$$ LANGUAGE plpgsql;
//
//	CREATE TRIGGER config_change_trigger
//	    AFTER INSERT OR UPDATE ON config
//	    FOR EACH ROW EXECUTE FUNCTION notify_config_change();
type Watcher struct {
	pool    *pgxpool.Pool
	channel string
	key     string
	table   string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithTable sets the table name to query for values.
// Defaults to "config".
func WithTable(table string) Option {
	return func(w *Watcher) {
		w.table = table
	}
}

// New creates a new Watcher for the given notification channel and key.
// The channel should match the channel used in pg_notify.
// The key identifies which row to fetch from the table.
func New(pool *pgxpool.Pool, channel, key string, opts ...Option) *Watcher {
	w := &Watcher{
		pool:    pool,
		channel: channel,
		key:     key,
		table:   "config",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// listenSQL returns the LISTEN statement with the channel quoted.
func (w *Watcher) listenSQL() string {
	return "LISTEN " + pgx.Identifier{w.channel}.Sanitize()
}

// selectSQL returns the value query with the table quoted.
func (w *Watcher) selectSQL() string {
	return fmt.Sprintf("SELECT value FROM %s WHERE key = $1", pgx.Identifier{w.table}.Sanitize())
}

// Watch begins listening for notifications and returns a channel that emits
// the row's value whenever it changes. The current value is emitted
// immediately if the row exists.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, w.listenSQL()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on channel %s: %w", w.channel, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer conn.Release()

		emit := func() bool {
			value, err := w.fetchValue(ctx)
			if err != nil || value == nil {
				return ctx.Err() == nil
			}
			select {
			case out <- value:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if notification.Payload != w.key {
				continue
			}
			if !emit() {
				return
			}
		}
	}()

	return out, nil
}

// fetchValue retrieves the current value, or nil if the row is missing.
func (w *Watcher) fetchValue(ctx context.Context) ([]byte, error) {
	var value []byte
	err := w.pool.QueryRow(ctx, w.selectSQL(), w.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

var _ until.Watcher = (*Watcher)(nil)
