package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zoobzio/until"
)

func TestWatcher_Channel(t *testing.T) {
	if ch := New(nil, "config:app").Channel(); ch != "__keyspace@0__:config:app" {
		t.Errorf("unexpected channel %q", ch)
	}
	if ch := New(nil, "flags", WithDB(3)).Channel(); ch != "__keyspace@3__:flags" {
		t.Errorf("unexpected channel %q", ch)
	}
}

func TestIsWrite(t *testing.T) {
	for _, ev := range []string{"set", "setex", "append", "incrby"} {
		if !isWrite(ev) {
			t.Errorf("expected %q to be a write", ev)
		}
	}
	for _, ev := range []string{"del", "expire", "expired", "hset", "rename_from"} {
		if isWrite(ev) {
			t.Errorf("expected %q to be ignored", ev)
		}
	}
}

// setupRedis connects to the server named by UNTIL_REDIS_URL, skipping the
// test when it is unset.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("UNTIL_REDIS_URL")
	if url == "" {
		t.Skip("UNTIL_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("invalid UNTIL_REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	if err := client.ConfigSet(ctx, "notify-keyspace-events", "KEA").Err(); err != nil {
		t.Fatalf("failed to enable keyspace notifications: %v", err)
	}
	return client
}

func TestWatcher_EmitsInitialAndUpdatedValue(t *testing.T) {
	client := setupRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := "until:test:" + t.Name()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	if err := client.Set(ctx, key, `{"port": 8080}`, 0).Err(); err != nil {
		t.Fatalf("failed to set initial value: %v", err)
	}

	ch, err := New(client, key).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	select {
	case v := <-ch:
		if string(v) != `{"port": 8080}` {
			t.Errorf("unexpected initial value %q", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for initial value")
	}

	if err := client.Set(ctx, key, `{"port": 9090}`, 0).Err(); err != nil {
		t.Fatalf("failed to update value: %v", err)
	}

	select {
	case v := <-ch:
		if string(v) != `{"port": 9090}` {
			t.Errorf("unexpected updated value %q", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for update")
	}
}

func TestWatcher_WithCapacitor(t *testing.T) {
	client := setupRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := "until:test:" + t.Name()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	if err := client.Set(ctx, key, `{"ready": false}`, 0).Err(); err != nil {
		t.Fatalf("failed to set initial value: %v", err)
	}

	type flags struct {
		Ready bool `json:"ready"`
	}

	c := until.NewCapacitor[flags](New(client, key), nil).Debounce(10 * time.Millisecond)
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ready := until.ForContext[flags](ctx, c).ToMatch(func(f flags) bool { return f.Ready },
		until.WithTimeout(5*time.Second), until.WithThrowOnTimeout())

	if err := client.Set(ctx, key, `{"ready": true}`, 0).Err(); err != nil {
		t.Fatalf("failed to update value: %v", err)
	}

	if _, err := ready.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}
