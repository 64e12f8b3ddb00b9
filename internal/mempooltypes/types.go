// Package mempooltypes holds the plain data shapes shared by the mempool
// reconciliation core: the tagged (scripthash, value) pair that replaces a
// dynamically-typed 4-tuple, the pending/accepted transaction record, and
// the asset-issuance metadata recorded for in-mempool asset creates and
// reissues.
package mempooltypes

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// ScriptHash is the chain-defined fixed-width hash of an output script,
// used as the unit of light-client subscription.
type ScriptHash [32]byte

// Prevout names a previous transaction output consumed as an input.
type Prevout struct {
	Hash  chainhash.Hash
	Index uint32
}

// PairKind distinguishes a native-coin pair from an asset pair. Using a
// tagged variant instead of a (value, is_asset, asset_name) tuple with a
// nullable field keeps "is this an asset" and "what asset" in one place.
type PairKind uint8

const (
	KindCoin PairKind = iota
	KindAsset
)

// Pair is the (scripthash, value, is_asset, asset_name?) tuple from the
// mempool data model, represented as a tagged record.
type Pair struct {
	ScriptHash ScriptHash
	Value      int64
	Kind       PairKind
	AssetName  string // only meaningful when Kind == KindAsset
}

// CoinPair builds a native-coin pair.
func CoinPair(sh ScriptHash, value int64) Pair {
	return Pair{ScriptHash: sh, Value: value, Kind: KindCoin}
}

// AssetPair builds an asset pair.
func AssetPair(sh ScriptHash, value int64, assetName string) Pair {
	return Pair{ScriptHash: sh, Value: value, Kind: KindAsset, AssetName: assetName}
}

// IsAsset reports whether the pair carries an asset value rather than a
// native-coin value.
func (p Pair) IsAsset() bool { return p.Kind == KindAsset }

// MemPoolTx is a unit of pending or accepted mempool work.
type MemPoolTx struct {
	// Prevouts names the retained inputs, in order, excluding
	// generation-like inputs.
	Prevouts []Prevout
	// InPairs mirrors Prevouts one-for-one; nil until the tx is
	// accepted (see the acceptance engine).
	InPairs []Pair
	// OutPairs has one entry per output, always populated at digest
	// time.
	OutPairs []Pair
	// Fee is the non-negative native-coin fee, clamped to zero when
	// inputs appear incomplete (generation-like transactions).
	Fee int64
	// Size is the transaction's virtual size in bytes.
	Size int
}

// MemPoolTxSummary is the read-only projection returned to clients.
type MemPoolTxSummary struct {
	Hash                 chainhash.Hash
	Fee                  int64
	HasUnconfirmedInputs bool
}

// AssetSource records where an asset issuance/reissuance originated.
type AssetSource struct {
	TxHash string
	TxPos  int
	// Height is -1 for mempool-origin issuances; the core never
	// produces anything else since it has no notion of confirmed
	// height for assets it hasn't seen land in a block.
	Height int
}

// AssetIssuance is the metadata for a newly-created or reissued asset.
type AssetIssuance struct {
	SatsInCirculation int64
	Divisions         int
	Reissuable        bool
	HasIPFS           bool
	IPFS              string // base58-encoded 34-byte blob; empty when !HasIPFS
	Source            AssetSource
}

// UTXO is an unconfirmed native-coin output paying a scripthash.
type UTXO struct {
	TxHash chainhash.Hash
	TxPos  int
	Value  int64
	Height int // always -1: unconfirmed
}

// AssetUTXO is an unconfirmed asset output paying a scripthash.
type AssetUTXO struct {
	TxHash chainhash.Hash
	TxPos  int
	Name   string
	Value  int64
	Height int // always -1: unconfirmed
}

// HistogramEntry is one (fee_rate, cumulative_size) bucket of the compact
// fee histogram, in descending fee-rate order.
type HistogramEntry struct {
	FeeRate float64
	Size    int64
}
