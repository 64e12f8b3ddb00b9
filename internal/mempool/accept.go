package mempool

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// acceptFixedPoint implements C5. Callers hold c.mu for writing. It
// repeatedly walks pending, committing any tx whose every prevout
// resolves (from utxoMap or from a tx already committed to c.txs,
// including ones committed earlier in this same pass) until a full pass
// commits nothing further, then returns the still-deferred residue.
//
// touched and assetsTouched are cycle-scoped accumulators the caller
// supplies and unions results into; they persist across retried cycles
// per §4.6, so acceptFixedPoint never resets them itself.
func (c *Core) acceptFixedPoint(
	pending map[chainhash.Hash]*digestResult,
	utxoMap map[mempooltypes.Prevout]mempooltypes.Pair,
	touched map[mempooltypes.ScriptHash]struct{},
	assetsTouched map[string]struct{},
) map[chainhash.Hash]*digestResult {
	deferred := pending
	for {
		next := make(map[chainhash.Hash]*digestResult)
		acceptedAny := false

		for hash, dr := range deferred {
			inPairs := make([]mempooltypes.Pair, 0, len(dr.tx.Prevouts))
			resolved := true
			for _, prevout := range dr.tx.Prevouts {
				pair, ok := c.resolvePrevout(prevout, utxoMap)
				if !ok {
					resolved = false
					break
				}
				inPairs = append(inPairs, pair)
			}
			if !resolved {
				next[hash] = dr
				continue
			}

			acceptedAny = true
			for _, prevout := range dr.tx.Prevouts {
				delete(utxoMap, prevout)
			}

			dr.tx.InPairs = inPairs
			dr.tx.Fee = computeFee(inPairs, dr.tx.OutPairs)
			c.txs[hash] = dr.tx

			for _, p := range inPairs {
				c.indexScriptHash(p.ScriptHash, hash)
				touched[p.ScriptHash] = struct{}{}
			}
			for _, p := range dr.tx.OutPairs {
				c.indexScriptHash(p.ScriptHash, hash)
				touched[p.ScriptHash] = struct{}{}
			}
			for name, issuance := range dr.creates {
				c.assets.InsertCreate(hash, name, issuance)
				assetsTouched[name] = struct{}{}
			}
			for name, issuance := range dr.reissues {
				c.assets.InsertReissue(hash, name, issuance)
				assetsTouched[name] = struct{}{}
			}
		}

		if !acceptedAny {
			return next
		}
		deferred = next
		if len(deferred) == 0 {
			return deferred
		}
	}
}

// resolvePrevout materializes one prevout's input pair from the batch's
// external resolutions or from a transaction already committed to the
// mempool (possibly earlier in this same fixed-point pass).
func (c *Core) resolvePrevout(prevout mempooltypes.Prevout, utxoMap map[mempooltypes.Prevout]mempooltypes.Pair) (mempooltypes.Pair, bool) {
	if pair, ok := utxoMap[prevout]; ok {
		return pair, true
	}
	if tx, ok := c.txs[prevout.Hash]; ok {
		idx := int(prevout.Index)
		if idx >= 0 && idx < len(tx.OutPairs) {
			return tx.OutPairs[idx], true
		}
	}
	return mempooltypes.Pair{}, false
}

// computeFee sums native-coin values only, excluding asset pairs, and
// clamps to zero — incomplete resolution of generation-like inputs must
// never produce a negative fee.
func computeFee(inPairs, outPairs []mempooltypes.Pair) int64 {
	var in, out int64
	for _, p := range inPairs {
		if !p.IsAsset() {
			in += p.Value
		}
	}
	for _, p := range outPairs {
		if !p.IsAsset() {
			out += p.Value
		}
	}
	fee := in - out
	if fee < 0 {
		return 0
	}
	return fee
}
