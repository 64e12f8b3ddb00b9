// Package chainparams defines the chain-configuration collaborator (§6):
// the scripthash-hashing function, the asset marker opcode, the raw-tx
// reader, and the histogram refresh interval. The core treats these as
// externally supplied, but a concrete Ravencoin-flavored default lives
// here so the rest of the tree is runnable end to end (see SPEC_FULL.md
// §10.4).
package chainparams

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// TxInput is one deserialized transaction input.
type TxInput struct {
	PrevHash     chainhash.Hash
	PrevIndex    uint32
	IsGeneration bool
}

// TxOutput is one deserialized transaction output.
type TxOutput struct {
	Value    int64
	PkScript []byte
}

// ParsedTx is the result of reading a raw transaction: its hash, virtual
// size, witness hash, and inputs/outputs.
type ParsedTx struct {
	Hash        chainhash.Hash
	WitnessHash chainhash.Hash
	Size        int // virtual size in bytes
	Inputs      []TxInput
	Outputs     []TxOutput
}

// Params is the chain-configuration collaborator the core consumes.
type Params interface {
	// AssetMarkerOpcode is the chain-specific byte that tags an asset
	// payload push in an output script (Ravencoin: OP_RVN_ASSET, 0xc0).
	AssetMarkerOpcode() byte
	// HashXFromScript computes the scripthash of a script.
	HashXFromScript(script []byte) mempooltypes.ScriptHash
	// ReadTx deserializes a raw transaction.
	ReadTx(raw []byte) (*ParsedTx, error)
	// HistogramRefreshInterval is how often the histogram engine
	// rebuilds the compact fee histogram.
	HistogramRefreshInterval() time.Duration
}
