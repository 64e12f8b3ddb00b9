package mempool

import (
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// BalanceDelta implements the native-coin half of C8: the sum of
// native-output values paying sh minus native-input values spent from
// sh, across every tx touching sh.
func (c *Core) BalanceDelta(sh mempooltypes.ScriptHash) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var delta int64
	for txHash := range c.hashXs[sh] {
		tx := c.txs[txHash]
		for _, p := range tx.OutPairs {
			if p.ScriptHash == sh && !p.IsAsset() {
				delta += p.Value
			}
		}
		for _, p := range tx.InPairs {
			if p.ScriptHash == sh && !p.IsAsset() {
				delta -= p.Value
			}
		}
	}
	return delta
}

// AssetBalanceDelta mirrors BalanceDelta per asset name.
func (c *Core) AssetBalanceDelta(sh mempooltypes.ScriptHash) map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	deltas := make(map[string]int64)
	for txHash := range c.hashXs[sh] {
		tx := c.txs[txHash]
		for _, p := range tx.OutPairs {
			if p.ScriptHash == sh && p.IsAsset() {
				deltas[p.AssetName] += p.Value
			}
		}
		for _, p := range tx.InPairs {
			if p.ScriptHash == sh && p.IsAsset() {
				deltas[p.AssetName] -= p.Value
			}
		}
	}
	return deltas
}

// PotentialSpends returns the union of prevouts over every tx touching
// sh. It is a superset of actual spends — the caller reconciles against
// its own UTXO view.
func (c *Core) PotentialSpends(sh mempooltypes.ScriptHash) []mempooltypes.Prevout {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[mempooltypes.Prevout]struct{})
	var out []mempooltypes.Prevout
	for txHash := range c.hashXs[sh] {
		for _, prevout := range c.txs[txHash].Prevouts {
			if _, ok := seen[prevout]; ok {
				continue
			}
			seen[prevout] = struct{}{}
			out = append(out, prevout)
		}
	}
	return out
}

// TransactionSummaries returns one summary per tx touching sh.
func (c *Core) TransactionSummaries(sh mempooltypes.ScriptHash) []mempooltypes.MemPoolTxSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]mempooltypes.MemPoolTxSummary, 0, len(c.hashXs[sh]))
	for txHash := range c.hashXs[sh] {
		tx := c.txs[txHash]
		summary := mempooltypes.MemPoolTxSummary{Hash: txHash, Fee: tx.Fee}
		for _, prevout := range tx.Prevouts {
			if _, ok := c.txs[prevout.Hash]; ok {
				summary.HasUnconfirmedInputs = true
				break
			}
		}
		out = append(out, summary)
	}
	return out
}

// UnorderedUTXOs returns every native-coin output paying sh, tagged with
// its owning tx hash and output index. It does not subtract spends
// within the mempool — the caller reconciles.
func (c *Core) UnorderedUTXOs(sh mempooltypes.ScriptHash) []mempooltypes.UTXO {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []mempooltypes.UTXO
	for txHash := range c.hashXs[sh] {
		tx := c.txs[txHash]
		for idx, p := range tx.OutPairs {
			if p.ScriptHash == sh && !p.IsAsset() {
				out = append(out, mempooltypes.UTXO{TxHash: txHash, TxPos: idx, Value: p.Value, Height: -1})
			}
		}
	}
	return out
}

// UnorderedAssets mirrors UnorderedUTXOs for asset outputs.
func (c *Core) UnorderedAssets(sh mempooltypes.ScriptHash) []mempooltypes.AssetUTXO {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []mempooltypes.AssetUTXO
	for txHash := range c.hashXs[sh] {
		tx := c.txs[txHash]
		for idx, p := range tx.OutPairs {
			if p.ScriptHash == sh && p.IsAsset() {
				out = append(out, mempooltypes.AssetUTXO{TxHash: txHash, TxPos: idx, Name: p.AssetName, Value: p.Value, Height: -1})
			}
		}
	}
	return out
}

// CompactFeeHistogram returns the current cached compact histogram.
func (c *Core) CompactFeeHistogram() []mempooltypes.HistogramEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]mempooltypes.HistogramEntry, len(c.histogram))
	copy(out, c.histogram)
	return out
}

// AssetCreation looks up the creation record for name, if present.
func (c *Core) AssetCreation(name string) (mempooltypes.AssetIssuance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.assets.Creation(name)
}

// AssetReissuance looks up the reissuance record for name, if present.
func (c *Core) AssetReissuance(name string) (mempooltypes.AssetIssuance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.assets.Reissuance(name)
}

// Stats is a cheap snapshot for the supervisor's periodic status line.
type Stats struct {
	TxCount         int
	TotalSize       int64
	ScriptHashCount int
}

// Stats reports the current size of the mempool index.
func (c *Core) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalSize int64
	for _, tx := range c.txs {
		totalSize += int64(tx.Size)
	}
	return Stats{
		TxCount:         len(c.txs),
		TotalSize:       totalSize,
		ScriptHashCount: len(c.hashXs),
	}
}
