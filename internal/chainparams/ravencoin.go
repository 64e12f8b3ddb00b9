package chainparams

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// opRVNAsset is Ravencoin's asset-namespace marker opcode.
const opRVNAsset = 0xc0

// Ravencoin is the default chain-configuration collaborator for the
// Ravencoin asset-aware UTXO chain this core targets.
type Ravencoin struct {
	// HistogramRefreshSecs overrides the default histogram refresh
	// interval when non-zero; set from RAVENCOIN_HISTOGRAM_REFRESH_SECS
	// at startup (see cmd/mempoolcore).
	HistogramRefreshSecs int
}

var _ Params = (*Ravencoin)(nil)

// AssetMarkerOpcode implements Params.
func (Ravencoin) AssetMarkerOpcode() byte { return opRVNAsset }

// HistogramRefreshInterval implements Params.
func (r Ravencoin) HistogramRefreshInterval() time.Duration {
	if r.HistogramRefreshSecs > 0 {
		return time.Duration(r.HistogramRefreshSecs) * time.Second
	}
	return 2 * time.Minute
}

// HashXFromScript implements Params using the Electrum scripthash
// convention: sha256(script), byte-reversed. Script-to-scripthash hashing
// is named out of scope by §1 (an external collaborator concern); this is
// the reference implementation that makes the tree runnable.
func (Ravencoin) HashXFromScript(script []byte) mempooltypes.ScriptHash {
	sum := sha256.Sum256(script)
	var out mempooltypes.ScriptHash
	for i := range sum {
		out[i] = sum[len(sum)-1-i]
	}
	return out
}

// ReadTx implements Params over btcsuite/btcd's wire.MsgTx, the same
// library the node-RPC collaborator (internal/bitcoind) already depends
// on for everything else tx-shaped.
func (Ravencoin) ReadTx(raw []byte) (*ParsedTx, error) {
	msgTx := &wire.MsgTx{}
	if err := msgTx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("deserialize tx: %w", err)
	}

	inputs := make([]TxInput, len(msgTx.TxIn))
	for i, txIn := range msgTx.TxIn {
		inputs[i] = TxInput{
			PrevHash:     txIn.PreviousOutPoint.Hash,
			PrevIndex:    txIn.PreviousOutPoint.Index,
			IsGeneration: isGenerationInput(txIn),
		}
	}

	outputs := make([]TxOutput, len(msgTx.TxOut))
	for i, txOut := range msgTx.TxOut {
		outputs[i] = TxOutput{Value: txOut.Value, PkScript: txOut.PkScript}
	}

	// BIP141 virtual size: ceil(weight / 4), weight = stripped*3 + full.
	weight := msgTx.SerializeSizeStripped()*3 + msgTx.SerializeSize()
	vsize := (weight + 3) / 4

	return &ParsedTx{
		Hash:        msgTx.TxHash(),
		WitnessHash: msgTx.WitnessHash(),
		Size:        vsize,
		Inputs:      inputs,
		Outputs:     outputs,
	}, nil
}

func isGenerationInput(txIn *wire.TxIn) bool {
	var zero chainhash.Hash
	return txIn.PreviousOutPoint.Hash == zero && txIn.PreviousOutPoint.Index == math.MaxUint32
}
