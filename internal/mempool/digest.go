package mempool

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/assetparse"
	"github.com/moontreeapp/electrumx-evr/internal/chainparams"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// digestResult is everything Digest extracts from one raw transaction:
// the pending MemPoolTx (in_pairs still nil) plus any asset issuance
// metadata its outputs introduced, filed by whether it's a creation
// ('o'/'q') or a reissuance ('r').
type digestResult struct {
	hash     chainhash.Hash
	tx       *mempooltypes.MemPoolTx
	creates  map[string]mempooltypes.AssetIssuance
	reissues map[string]mempooltypes.AssetIssuance
}

// digest implements C3: deserialize a raw transaction, drop
// generation-like inputs from its prevout list, and run C2 over every
// output. CPU-bound; callers dispatch this off the reconciler's
// sequential critical path (§4.3, §5).
func digest(chain chainparams.Params, txHash chainhash.Hash, raw []byte) (*digestResult, error) {
	parsed, err := chain.ReadTx(raw)
	if err != nil {
		return nil, fmt.Errorf("digest %s: read tx: %w", txHash, err)
	}

	prevouts := make([]mempooltypes.Prevout, 0, len(parsed.Inputs))
	for _, in := range parsed.Inputs {
		if in.IsGeneration {
			continue
		}
		prevouts = append(prevouts, mempooltypes.Prevout{Hash: in.PrevHash, Index: in.PrevIndex})
	}

	outPairs := make([]mempooltypes.Pair, len(parsed.Outputs))
	var creates, reissues map[string]mempooltypes.AssetIssuance

	for i, out := range parsed.Outputs {
		pair, issuance := assetparse.ParseOutput(out.PkScript, out.Value, chain, chain.HashXFromScript)
		outPairs[i] = pair
		if issuance == nil {
			continue
		}
		record := mempooltypes.AssetIssuance{
			SatsInCirculation: issuance.SatsInCirculation,
			Divisions:         issuance.Divisions,
			Reissuable:        issuance.Reissuable,
			HasIPFS:           issuance.HasIPFS,
			IPFS:              issuance.IPFS,
			Source: mempooltypes.AssetSource{
				TxHash: txHash.String(),
				TxPos:  i,
				Height: -1,
			},
		}
		if issuance.IsReissue {
			if reissues == nil {
				reissues = make(map[string]mempooltypes.AssetIssuance)
			}
			reissues[issuance.AssetName] = record
		} else {
			if creates == nil {
				creates = make(map[string]mempooltypes.AssetIssuance)
			}
			creates[issuance.AssetName] = record
		}
	}

	return &digestResult{
		hash: txHash,
		tx: &mempooltypes.MemPoolTx{
			Prevouts: prevouts,
			OutPairs: outPairs,
			Size:     parsed.Size,
		},
		creates:  creates,
		reissues: reissues,
	}, nil
}
