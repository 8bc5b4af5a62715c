// Package testing provides test utilities and helpers for code built on until.
package testing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/until"
)

// TestConfig is a standard configuration type for testing capacitors.
// It implements until.Validator.
type TestConfig struct {
	Port    int    `yaml:"port" json:"port"`
	Host    string `yaml:"host" json:"host"`
	Timeout int    `yaml:"timeout" json:"timeout"`
}

// Validate implements until.Validator.
func (c TestConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
//
// Prefer Await or WaitForValue when the condition depends on a Watchable.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// Await waits up to timeout for f to settle and returns its result.
// The test fails if f does not settle in time.
func Await[T any](t *testing.T, f *until.Future[T], timeout time.Duration) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	v, err := f.Wait(ctx)
	if ctx.Err() != nil {
		f.Abandon()
		t.Fatalf("wait did not settle within %v", timeout)
	}
	return v, err
}

// WaitForValue waits until source satisfies match, failing the test on
// timeout. Unlike WaitFor it reacts to changes instead of polling.
func WaitForValue[T any](t *testing.T, source until.Watchable[T], match func(T) bool, timeout time.Duration) T {
	t.Helper()
	f := until.For(source).ToMatch(match,
		until.WithTimeout(timeout),
		until.WithThrowOnTimeout(),
	)
	v, err := Await(t, f, timeout+time.Second)
	if err != nil {
		t.Fatalf("value not matched within %v: %v", timeout, err)
	}
	return v
}

// WaitForState waits until the capacitor reaches the expected state or
// timeout occurs.
func WaitForState[T any](t *testing.T, c *until.Capacitor[T], expected until.State, timeout time.Duration) bool {
	t.Helper()
	f := until.For(c.States()).ToBe(expected, until.WithTimeout(timeout))
	ctx, cancel := context.WithTimeout(context.Background(), timeout+time.Second)
	defer cancel()
	res, err := f.Wait(ctx)
	return err == nil && res == expected && f.Outcome() == until.OutcomeMatched
}

// RequireState fails the test immediately if the capacitor is not in the expected state.
func RequireState[T any](t *testing.T, c *until.Capacitor[T], expected until.State) {
	t.Helper()
	if got := c.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// RequireConfig fails the test if Current() returns false or the config doesn't match.
func RequireConfig[T any](t *testing.T, c *until.Capacitor[T], check func(T) bool) {
	t.Helper()
	cfg, ok := c.Current()
	if !ok {
		t.Fatal("expected config to be present, got none")
	}
	if !check(cfg) {
		t.Fatalf("config check failed: %+v", cfg)
	}
}

// RequireOutcome fails the test if f has not settled with the expected outcome.
func RequireOutcome[T any](t *testing.T, f *until.Future[T], expected until.Outcome) {
	t.Helper()
	if got := f.Outcome(); got != expected {
		t.Fatalf("expected outcome %s, got %s", expected, got)
	}
}

// NewTestCapacitor creates a capacitor with a sync channel stream for testing.
// Returns the capacitor and a channel for sending test data.
func NewTestCapacitor(t *testing.T, callback func(context.Context, TestConfig, TestConfig) error) (*until.Capacitor[TestConfig], chan<- []byte) {
	t.Helper()
	ch := make(chan []byte, 10)
	c := until.NewCapacitor[TestConfig](
		until.NewSyncChannelStream(ch),
		callback,
	).SyncMode()
	return c, ch
}
