package mempool

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/google/uuid"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
	"golang.org/x/sync/errgroup"
)

// ingestChunkSize bounds how many newly-observed hashes are digested and
// resolved concurrently per chunk, mirroring the source's 200-per-batch
// aiorpcx.TaskGroup dispatch (§4.6 step 5).
const ingestChunkSize = 200

// ErrDBHeightMismatch is returned (and logged, not propagated) when the
// mempool's height doesn't yet match the persistent store's flushed
// height. The cycle is retried next tick with accumulators preserved.
var ErrDBHeightMismatch = errors.New("mempool: mempool height does not match persisted db height")

// Reconciler implements C6: the periodic diff-fetch-accept-publish loop
// that is the sole mutator of a Core's indices.
type Reconciler struct {
	core  *Core
	api   API
	sync  *SyncEvent
	every time.Duration

	// touched and assetsTouched persist across retried cycles (DBSyncError,
	// height skew) and reset only after a successful publish (§4.6).
	touched       map[mempooltypes.ScriptHash]struct{}
	assetsTouched map[string]struct{}
}

// NewReconciler builds a Reconciler driving core via api, ticking every
// `every` and pulsing sync after each successful publish.
func NewReconciler(core *Core, api API, sync *SyncEvent, every time.Duration) *Reconciler {
	return &Reconciler{
		core:          core,
		api:           api,
		sync:          sync,
		every:         every,
		touched:       make(map[mempooltypes.ScriptHash]struct{}),
		assetsTouched: make(map[string]struct{}),
	}
}

// Run drives the reconciliation loop until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()

	log.Println("[Reconciler] starting")
	for {
		select {
		case <-ctx.Done():
			log.Println("[Reconciler] stopping")
			return nil
		case <-ticker.C:
			if err := r.runCycle(ctx); err != nil {
				return err
			}
		}
	}
}

// runCycle executes one reconciliation cycle. A returned error is a
// collaborator failure (§7): the supervisor cancels sibling tasks and
// terminates the core. DBSyncError and height skew are handled inline
// and never reach the caller.
func (r *Reconciler) runCycle(ctx context.Context) error {
	cycleID := uuid.NewString()

	before := r.api.CachedHeight()
	hashes, err := r.api.MempoolHashes(ctx)
	if err != nil {
		return err
	}
	after, err := r.api.Height(ctx)
	if err != nil {
		return err
	}
	if before != after {
		log.Printf("[Reconciler %s] node height moved %d -> %d mid-cycle, retrying", cycleID, before, after)
		return nil
	}

	allHashes := make(map[chainhash.Hash]struct{}, len(hashes))
	for _, h := range hashes {
		allHashes[h] = struct{}{}
	}

	r.core.mu.Lock()
	err = r.processMempool(ctx, after, allHashes)
	r.core.mu.Unlock()

	if err != nil {
		if errors.Is(err, ErrDBHeightMismatch) {
			log.Printf("[Reconciler %s] %v, waiting for db to catch up", cycleID, err)
			return nil
		}
		return err
	}

	r.sync.Pulse()
	if err := r.api.OnMempool(ctx, r.touched, after, r.assetsTouched); err != nil {
		return err
	}
	r.touched = make(map[mempooltypes.ScriptHash]struct{})
	r.assetsTouched = make(map[string]struct{})
	return nil
}

// processMempool implements the body of §4.6 step 5: DB-height interlock,
// eviction, chunked ingestion, and fixed-point acceptance. Callers hold
// r.core.mu for writing.
func (r *Reconciler) processMempool(ctx context.Context, height int32, allHashes map[chainhash.Hash]struct{}) error {
	dbHeight, err := r.api.DBHeight(ctx)
	if err != nil {
		return err
	}
	if dbHeight != height {
		return ErrDBHeightMismatch
	}

	for txHash := range r.core.txs {
		if _, ok := allHashes[txHash]; ok {
			continue
		}
		for sh := range r.core.evictTx(txHash) {
			r.touched[sh] = struct{}{}
		}
		for name := range r.core.assets.RemoveTx(txHash) {
			r.assetsTouched[name] = struct{}{}
		}
	}

	var newHashes []chainhash.Hash
	for h := range allHashes {
		if _, ok := r.core.txs[h]; !ok {
			newHashes = append(newHashes, h)
		}
	}

	pending, utxoMap, err := r.ingest(ctx, newHashes, allHashes)
	if err != nil {
		return err
	}

	residue := r.core.acceptFixedPoint(pending, utxoMap, r.touched, r.assetsTouched)
	if len(residue) > 0 {
		names := make([]string, 0, len(residue))
		for h := range residue {
			names = append(names, h.String())
		}
		log.Printf("[Reconciler] dropping %d unresolvable tx(s) after fixed-point convergence: %v", len(residue), names)
	}
	return nil
}

// ingest digests and resolves newHashes concurrently in
// ingestChunkSize-sized chunks, returning the combined pending-tx map and
// externally-resolved prevout map for the fixed-point acceptance pass.
func (r *Reconciler) ingest(ctx context.Context, newHashes []chainhash.Hash, allHashes map[chainhash.Hash]struct{}) (map[chainhash.Hash]*digestResult, map[mempooltypes.Prevout]mempooltypes.Pair, error) {
	pending := make(map[chainhash.Hash]*digestResult, len(newHashes))
	utxoMap := make(map[mempooltypes.Prevout]mempooltypes.Pair)
	if len(newHashes) == 0 {
		return pending, utxoMap, nil
	}

	chunks := chunkHashes(newHashes, ingestChunkSize)
	results := make([]chunkResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			out, err := r.ingestChunk(gctx, chunk, allHashes)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, res := range results {
		for hash, dr := range res.pending {
			pending[hash] = dr
		}
		for prevout, pair := range res.utxos {
			utxoMap[prevout] = pair
		}
	}
	return pending, utxoMap, nil
}

type chunkResult struct {
	pending map[chainhash.Hash]*digestResult
	utxos   map[mempooltypes.Prevout]mempooltypes.Pair
}

// ingestChunk implements C3+C4 for one chunk: fetch raw bytes, digest
// each tx (dropping any evicted before fetch, per §7), then resolve
// every external prevout the chunk's txs reference.
func (r *Reconciler) ingestChunk(ctx context.Context, chunk []chainhash.Hash, allHashes map[chainhash.Hash]struct{}) (chunkResult, error) {
	raw, err := r.api.RawTransactions(ctx, chunk)
	if err != nil {
		return chunkResult{}, err
	}

	pending := make(map[chainhash.Hash]*digestResult, len(chunk))
	var allPrevouts []mempooltypes.Prevout

	for i, txHash := range chunk {
		if i >= len(raw) || raw[i] == nil {
			continue
		}
		dr, err := digest(r.core.chain, txHash, raw[i])
		if err != nil {
			log.Printf("[Reconciler] failed to digest %s: %v", txHash, err)
			continue
		}
		pending[txHash] = dr
		allPrevouts = append(allPrevouts, dr.tx.Prevouts...)
	}

	_, external := partitionPrevouts(allPrevouts, allHashes)
	utxoMap, err := resolveExternal(ctx, r.api, external)
	if err != nil {
		return chunkResult{}, err
	}

	return chunkResult{pending: pending, utxos: utxoMap}, nil
}

func chunkHashes(hashes []chainhash.Hash, size int) [][]chainhash.Hash {
	var chunks [][]chainhash.Hash
	for i := 0; i < len(hashes); i += size {
		end := i + size
		if end > len(hashes) {
			end = len(hashes)
		}
		chunks = append(chunks, hashes[i:end])
	}
	return chunks
}
