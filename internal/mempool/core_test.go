package mempool

import (
	"reflect"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

func TestEvictTx_RoundTripRestoresPriorState(t *testing.T) {
	// Digest+accept of a tx followed by an immediate evict must return
	// all indices to their prior state byte-for-byte.
	var sh mempooltypes.ScriptHash
	sh[0] = 0x42
	var hash chainhash.Hash
	hash[0] = 0x01

	core := NewCore(nil)
	beforeTxs := snapshotTxs(core)
	beforeHashXs := snapshotHashXs(core)

	dr := &digestResult{
		hash: hash,
		tx: &mempooltypes.MemPoolTx{
			OutPairs: []mempooltypes.Pair{mempooltypes.CoinPair(sh, 1000)},
			Size:     200,
		},
	}
	pending := map[chainhash.Hash]*digestResult{hash: dr}
	touched := make(map[mempooltypes.ScriptHash]struct{})
	core.acceptFixedPoint(pending, map[mempooltypes.Prevout]mempooltypes.Pair{}, touched, make(map[string]struct{}))

	if _, ok := core.txs[hash]; !ok {
		t.Fatalf("tx should be committed before evicting")
	}

	core.evictTx(hash)

	if !reflect.DeepEqual(beforeTxs, snapshotTxs(core)) {
		t.Errorf("txs not restored to prior state: %+v", core.txs)
	}
	if !reflect.DeepEqual(beforeHashXs, snapshotHashXs(core)) {
		t.Errorf("hashXs not restored to prior state: %+v", core.hashXs)
	}
}

func TestEvictTx_NeverLeavesEmptyScriptHashSet(t *testing.T) {
	var sh mempooltypes.ScriptHash
	sh[0] = 0x77
	var hash chainhash.Hash
	hash[0] = 0x09

	core := NewCore(nil)
	dr := &digestResult{
		hash: hash,
		tx: &mempooltypes.MemPoolTx{
			OutPairs: []mempooltypes.Pair{mempooltypes.CoinPair(sh, 1)},
			Size:     100,
		},
	}
	core.acceptFixedPoint(map[chainhash.Hash]*digestResult{hash: dr}, map[mempooltypes.Prevout]mempooltypes.Pair{}, make(map[mempooltypes.ScriptHash]struct{}), make(map[string]struct{}))
	core.evictTx(hash)

	if set, ok := core.hashXs[sh]; ok {
		t.Errorf("expected sh removed from hashXs entirely, found set %+v", set)
	}
}

func snapshotTxs(c *Core) map[chainhash.Hash]*mempooltypes.MemPoolTx {
	out := make(map[chainhash.Hash]*mempooltypes.MemPoolTx, len(c.txs))
	for k, v := range c.txs {
		out[k] = v
	}
	return out
}

func snapshotHashXs(c *Core) map[mempooltypes.ScriptHash]map[chainhash.Hash]struct{} {
	out := make(map[mempooltypes.ScriptHash]map[chainhash.Hash]struct{}, len(c.hashXs))
	for k, v := range c.hashXs {
		out[k] = v
	}
	return out
}
