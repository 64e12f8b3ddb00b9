// Package mempool implements the unconfirmed-transaction indexing core:
// the script-template matcher's consumer (digester), the prevout
// resolver, the fixed-point acceptance engine, the periodic reconciler,
// the fee histogram engine, the query surface, and the supervisor tying
// them together.
//
// Grounded on internal/mempool/poller.go's poll-diff-fetch-index-publish
// shape from the teacher repo, reworked around the source's exact
// mempool.py semantics (original_source/electrumx/server/mempool.py)
// instead of the teacher's CoinJoin-forensics payload.
package mempool

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/chainparams"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// Core owns the in-memory mempool indices described in §3. It is the
// single process-local owner of mempool state; the reconciler is the only
// mutator of its indices, the histogram engine only replaces the cached
// compact histogram, and the query surface reads it under RLock (§5).
type Core struct {
	mu sync.RWMutex

	chain chainparams.Params

	txs    map[chainhash.Hash]*mempooltypes.MemPoolTx
	hashXs map[mempooltypes.ScriptHash]map[chainhash.Hash]struct{}
	assets *AssetIndex

	histogram []mempooltypes.HistogramEntry
}

// NewCore builds an empty indexing core for the given chain
// configuration collaborator.
func NewCore(chain chainparams.Params) *Core {
	return &Core{
		chain:  chain,
		txs:    make(map[chainhash.Hash]*mempooltypes.MemPoolTx),
		hashXs: make(map[mempooltypes.ScriptHash]map[chainhash.Hash]struct{}),
		assets: newAssetIndex(),
	}
}

// indexScriptHash records tx_hash under sh in hashXs, creating the set if
// absent. Callers hold the write lock.
func (c *Core) indexScriptHash(sh mempooltypes.ScriptHash, txHash chainhash.Hash) {
	if c.hashXs[sh] == nil {
		c.hashXs[sh] = make(map[chainhash.Hash]struct{})
	}
	c.hashXs[sh][txHash] = struct{}{}
}

// evictTx removes txHash from txs and hashXs and returns the scripthashes
// it touched, so the caller can union them into the cycle's touched
// accumulator. Asset records are not touched here; the caller removes
// them with AssetIndex.RemoveTx. Callers hold the write lock.
func (c *Core) evictTx(txHash chainhash.Hash) map[mempooltypes.ScriptHash]struct{} {
	tx, ok := c.txs[txHash]
	if !ok {
		return nil
	}
	delete(c.txs, txHash)

	touched := make(map[mempooltypes.ScriptHash]struct{})
	unindex := func(pairs []mempooltypes.Pair) {
		for _, p := range pairs {
			touched[p.ScriptHash] = struct{}{}
			set := c.hashXs[p.ScriptHash]
			if set == nil {
				continue
			}
			delete(set, txHash)
			if len(set) == 0 {
				delete(c.hashXs, p.ScriptHash)
			}
		}
	}
	unindex(tx.InPairs)
	unindex(tx.OutPairs)
	return touched
}
