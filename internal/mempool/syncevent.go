package mempool

import (
	"context"
	"sync"
)

// SyncEvent is a one-shot edge signal: Pulse wakes every current waiter
// exactly once and then resets, mirroring the source's
// `synchronized.set(); synchronized.clear()` pattern (§5, §9) without an
// asyncio.Event analogue in Go.
type SyncEvent struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewSyncEvent returns a ready-to-use SyncEvent.
func NewSyncEvent() *SyncEvent {
	return &SyncEvent{ch: make(chan struct{})}
}

// Pulse signals every goroutine currently blocked in Wait and arms the
// event for the next edge.
func (e *SyncEvent) Pulse() {
	e.mu.Lock()
	defer e.mu.Unlock()
	close(e.ch)
	e.ch = make(chan struct{})
}

// Wait blocks until the next Pulse or until ctx is done.
func (e *SyncEvent) Wait(ctx context.Context) error {
	e.mu.Lock()
	ch := e.ch
	e.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
