package mempool

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// UTXOResolution is the result of looking up one prevout's native-coin
// output. A nil entry in a LookupUTXOs result means the output is
// already spent or not yet visible to the store.
type UTXOResolution struct {
	ScriptHash mempooltypes.ScriptHash
	Value      int64
}

// AssetResolution is the result of looking up one prevout's asset output.
type AssetResolution struct {
	ScriptHash mempooltypes.ScriptHash
	Value      int64
	AssetName  string
}

// API is the single external collaborator the core consumes (§6): the
// node RPC surface, the persistent UTXO/asset store, and the publish
// hook that hands touched scripthashes/assets to the outward transport.
type API interface {
	// Height fetches the node's current tip height; it may suspend.
	Height(ctx context.Context) (int32, error)
	// CachedHeight returns the last height observed by Height, without a
	// fresh call.
	CachedHeight() int32
	// DBHeight is the height the persistent UTXO/asset store is flushed
	// to.
	DBHeight(ctx context.Context) (int32, error)
	// MempoolHashes lists every tx hash the node currently has in its
	// mempool.
	MempoolHashes(ctx context.Context) ([]chainhash.Hash, error)
	// RawTransactions fetches raw tx bytes for each hash, aligned with
	// the input slice; a nil entry means the tx was evicted before it
	// could be fetched.
	RawTransactions(ctx context.Context, hashes []chainhash.Hash) ([][]byte, error)
	// LookupUTXOs resolves a batch of prevouts against the persistent
	// store's native-coin outputs, aligned with the input slice.
	LookupUTXOs(ctx context.Context, prevouts []mempooltypes.Prevout) ([]*UTXOResolution, error)
	// LookupAssets resolves a batch of prevouts against the persistent
	// store's asset outputs, aligned with the input slice.
	LookupAssets(ctx context.Context, prevouts []mempooltypes.Prevout) ([]*AssetResolution, error)
	// OnMempool publishes the set of scripthashes/assets touched since
	// the last successful cycle; invoked exactly once per successful
	// reconciliation cycle.
	OnMempool(ctx context.Context, touched map[mempooltypes.ScriptHash]struct{}, height int32, assetsTouched map[string]struct{}) error
}
