package mempool

import (
	"context"
	"log"
	"time"
)

// HistogramEngine implements the periodic half of C7: it rebuilds the
// compact fee histogram and publishes it to the Core every time the
// reconciler's synchronized signal fires, then sleeps a chain-specific
// interval before waiting for the next edge (§4.7 step 1, step 5).
type HistogramEngine struct {
	core     *Core
	interval time.Duration
	sync     *SyncEvent
}

// NewHistogramEngine builds a HistogramEngine gated on sync, sleeping
// interval between rebuilds.
func NewHistogramEngine(core *Core, interval time.Duration, sync *SyncEvent) *HistogramEngine {
	return &HistogramEngine{core: core, interval: interval, sync: sync}
}

// Run waits for the synchronized signal, rebuilds the histogram, sleeps
// interval, and repeats until ctx is cancelled.
func (h *HistogramEngine) Run(ctx context.Context) error {
	log.Println("[Histogram] starting")
	for {
		if err := h.sync.Wait(ctx); err != nil {
			log.Println("[Histogram] stopping")
			return nil
		}
		h.core.refreshHistogram()

		select {
		case <-ctx.Done():
			log.Println("[Histogram] stopping")
			return nil
		case <-time.After(h.interval):
		}
	}
}
