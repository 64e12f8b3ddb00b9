package mempool

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// loggerInterval is the sleep between status lines once the logger task
// has woken on the synchronized signal (§10.1, mirroring the source's
// log_status_secs).
const loggerInterval = 30 * time.Second

// Supervisor implements C9: it composes the reconciler, the histogram
// engine, and a periodic logger task around a shared SyncEvent and
// coordinates their shutdown. Any one task's collaborator failure
// cancels the other two (§5, §7).
type Supervisor struct {
	core       *Core
	reconciler *Reconciler
	histogram  *HistogramEngine
	syncSignal *SyncEvent
}

// NewSupervisor wires a reconciler and histogram engine around core,
// sharing a single SyncEvent.
func NewSupervisor(core *Core, api API, refreshInterval, histogramInterval time.Duration) *Supervisor {
	sync := NewSyncEvent()
	return &Supervisor{
		core:       core,
		reconciler: NewReconciler(core, api, sync, refreshInterval),
		histogram:  NewHistogramEngine(core, histogramInterval, sync),
		syncSignal: sync,
	}
}

// Run starts the reconciler, histogram engine, and logger task and
// blocks until one fails or ctx is cancelled, at which point it cancels
// the remaining tasks and waits for them to exit.
func (s *Supervisor) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.reconciler.Run(gctx) })
	g.Go(func() error { return s.histogram.Run(gctx) })
	g.Go(func() error { return s.loggerTask(gctx) })
	return g.Wait()
}

// loggerTask prints a periodic status line, mirroring the source's
// _logging coroutine (§10.1): it waits for the synchronized signal
// before each log line, then sleeps loggerInterval before waiting for
// the next edge.
func (s *Supervisor) loggerTask(ctx context.Context) error {
	log.Println("[Mempool] beginning processing of daemon mempool. This can take some time...")
	for {
		if err := s.syncSignal.Wait(ctx); err != nil {
			return nil
		}
		stats := s.core.Stats()
		log.Printf("[Mempool] %d txs %.2f MB touching %d scripthashes",
			stats.TxCount, float64(stats.TotalSize)/1_000_000, stats.ScriptHashCount)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(loggerInterval):
		}
	}
}
