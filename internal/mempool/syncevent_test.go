package mempool

import (
	"context"
	"testing"
	"time"
)

func TestSyncEvent_PulseWakesWaiter(t *testing.T) {
	e := NewSyncEvent()
	done := make(chan error, 1)
	go func() {
		done <- e.Wait(context.Background())
	}()

	// Give the waiter a moment to block before pulsing.
	time.Sleep(10 * time.Millisecond)
	e.Pulse()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Pulse")
	}
}

func TestSyncEvent_WaitReturnsOnContextCancel(t *testing.T) {
	e := NewSyncEvent()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := e.Wait(ctx); err == nil {
		t.Fatal("expected Wait to return an error for a cancelled context")
	}
}

func TestSyncEvent_MultipleWaitersAllWake(t *testing.T) {
	e := NewSyncEvent()
	const waiters = 3
	done := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		go func() { done <- e.Wait(context.Background()) }()
	}

	time.Sleep(10 * time.Millisecond)
	e.Pulse()

	for i := 0; i < waiters; i++ {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("waiter returned error: %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("not all waiters woke after Pulse")
		}
	}
}
