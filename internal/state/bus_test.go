package state

import (
	"testing"
	"time"
)

func TestChangeBus(t *testing.T) {
	bus := NewChangeBus(10)

	// Subscribe
	ch := bus.Subscribe()

	// Publish change
	change := Change{
		Kind:      ChangeKernel,
		Timestamp: time.Now(),
	}
	bus.Publish(change)

	// Receive change
	select {
	case received := <-ch:
		if received.Kind != ChangeKernel {
			t.Errorf("expected kind=%s, got %s", ChangeKernel, received.Kind)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for change")
	}

	// Unsubscribe
	bus.Unsubscribe(ch)

	// Channel should be closed
	_, ok := <-ch
	if ok {
		t.Error("expected channel to be closed")
	}
}

func TestChangeBusMultipleSubscribers(t *testing.T) {
	bus := NewChangeBus(10)

	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()

	bus.Publish(Change{Kind: ChangeEvents, Timestamp: time.Now()})

	// Both should receive
	select {
	case <-ch1:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch1 timeout")
	}

	select {
	case <-ch2:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch2 timeout")
	}

	bus.Close()
}

func TestChangeBusNonBlocking(t *testing.T) {
	bus := NewChangeBus(1)
	ch := bus.Subscribe()

	for len(ch) < cap(ch) {
		bus.Publish(Change{Kind: ChangeTasks})
	}

	// This should not block (change dropped)
	done := make(chan bool)
	go func() {
		bus.Publish(Change{Kind: ChangeTasks})
		done <- true
	}()

	select {
	case <-done:
		// Good, didn't block
	case <-time.After(100 * time.Millisecond):
		t.Fatal("publish blocked")
	}

	// Drain the buffer
	<-ch
	bus.Close()
}
