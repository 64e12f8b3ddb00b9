package mempool

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// resolveExternal implements the external half of C4: for every prevout
// not resolvable in-mempool, ask the collaborator for both its
// native-coin and asset projections and compose a single prevout → Pair
// map. A prevout absent from both lookups is left out of the map — the
// acceptance engine treats that as "not yet resolvable" and defers the
// owning tx.
func resolveExternal(ctx context.Context, api API, prevouts []mempooltypes.Prevout) (map[mempooltypes.Prevout]mempooltypes.Pair, error) {
	out := make(map[mempooltypes.Prevout]mempooltypes.Pair, len(prevouts))
	if len(prevouts) == 0 {
		return out, nil
	}

	utxos, err := api.LookupUTXOs(ctx, prevouts)
	if err != nil {
		return nil, fmt.Errorf("lookup utxos: %w", err)
	}
	assets, err := api.LookupAssets(ctx, prevouts)
	if err != nil {
		return nil, fmt.Errorf("lookup assets: %w", err)
	}

	for i, prevout := range prevouts {
		if i < len(assets) && assets[i] != nil {
			a := assets[i]
			out[prevout] = mempooltypes.AssetPair(a.ScriptHash, a.Value, a.AssetName)
			continue
		}
		if i < len(utxos) && utxos[i] != nil {
			u := utxos[i]
			out[prevout] = mempooltypes.CoinPair(u.ScriptHash, u.Value)
		}
	}
	return out, nil
}

// partitionPrevouts splits prevouts into those whose owning tx is part of
// this cycle's reported hash set (resolved in-acceptance against the
// mempool itself) and those that must be resolved externally.
func partitionPrevouts(prevouts []mempooltypes.Prevout, allHashes map[chainhash.Hash]struct{}) (inMempool, external []mempooltypes.Prevout) {
	for _, p := range prevouts {
		if _, ok := allHashes[p.Hash]; ok {
			inMempool = append(inMempool, p)
		} else {
			external = append(external, p)
		}
	}
	return inMempool, external
}
