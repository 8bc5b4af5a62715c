package until

import (
	"context"
	"testing"
	"time"
)

func TestChannelStream_ForwardsValues(t *testing.T) {
	source := make(chan []byte, 3)
	source <- []byte("one")
	source <- []byte("two")
	source <- []byte("three")

	stream := NewChannelStream(source)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := stream.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	expected := []string{"one", "two", "three"}
	for i, exp := range expected {
		select {
		case v := <-out:
			if string(v) != exp {
				t.Errorf("expected %s, got %s", exp, string(v))
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timeout waiting for value %d", i)
		}
	}
}

func TestChannelStream_Generic(t *testing.T) {
	source := make(chan int, 2)
	source <- 1
	source <- 2
	close(source)

	out, err := NewChannelStream(source).Watch(context.Background())
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	var got []int
	for v := range out {
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestChannelStream_ClosesOnSourceClose(t *testing.T) {
	source := make(chan []byte, 1)
	source <- []byte("value")
	close(source)

	stream := NewChannelStream(source)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := stream.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Drain the value
	<-out

	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected channel to be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for channel close")
	}
}

func TestChannelStream_ClosesOnContextCancel(t *testing.T) {
	source := make(chan []byte) // unbuffered, will block

	stream := NewChannelStream(source)

	ctx, cancel := context.WithCancel(context.Background())

	out, err := stream.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	cancel()

	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected channel to be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for channel close")
	}
}

func TestChannelStream_CancelWhileBlockedOnSend(t *testing.T) {
	source := make(chan []byte)

	stream := NewChannelStream(source)

	ctx, cancel := context.WithCancel(context.Background())

	watchOut, err := stream.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	go func() {
		source <- []byte("test")
	}()

	// The forwarding goroutine is now blocked sending to watchOut.
	time.Sleep(20 * time.Millisecond)

	cancel()

	select {
	case <-watchOut:
	case <-time.After(100 * time.Millisecond):
		t.Error("channel did not close after context cancel")
	}
}

func TestSyncChannelStream_ReturnsSourceDirectly(t *testing.T) {
	source := make(chan string, 1)
	source <- "direct"

	out, err := NewSyncChannelStream(source).Watch(context.Background())
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Same channel, so the buffered value is readable without a goroutine.
	select {
	case v := <-out:
		if v != "direct" {
			t.Errorf("expected 'direct', got %q", v)
		}
	default:
		t.Error("expected value to be immediately available")
	}
}
