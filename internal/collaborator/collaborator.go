// Package collaborator composes the node-RPC client (internal/bitcoind),
// the persistent store (internal/utxostore), and the HTTP/WebSocket hub
// (internal/api) into the single mempool.API the reconciliation core
// consumes (§6). internal/mempool never imports any of these adapter
// packages directly; this is the one place they meet.
package collaborator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/api"
	"github.com/moontreeapp/electrumx-evr/internal/bitcoind"
	"github.com/moontreeapp/electrumx-evr/internal/mempool"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
	"github.com/moontreeapp/electrumx-evr/internal/utxostore"
)

// Collaborator implements mempool.API over a node RPC client, a
// persistent UTXO/asset store, and a websocket publish hub.
type Collaborator struct {
	Node  *bitcoind.Client
	Store *utxostore.Store
	Hub   *api.Hub
}

// New builds a Collaborator from its three parts.
func New(node *bitcoind.Client, store *utxostore.Store, hub *api.Hub) *Collaborator {
	return &Collaborator{Node: node, Store: store, Hub: hub}
}

// Height fetches the node's current tip height.
func (c *Collaborator) Height(ctx context.Context) (int32, error) {
	return c.Node.Height()
}

// CachedHeight returns the last height observed by Height.
func (c *Collaborator) CachedHeight() int32 {
	return c.Node.CachedHeight()
}

// DBHeight is the height the persistent store is flushed to.
func (c *Collaborator) DBHeight(ctx context.Context) (int32, error) {
	return c.Store.DBHeight(ctx)
}

// MempoolHashes lists every tx hash the node currently has in its
// mempool.
func (c *Collaborator) MempoolHashes(ctx context.Context) ([]chainhash.Hash, error) {
	return c.Node.MempoolHashes()
}

// RawTransactions fetches raw tx bytes for each hash. The teacher's node
// client has no native batch-fetch RPC, so this is a per-hash loop,
// matching the style of the rest of internal/bitcoind.
func (c *Collaborator) RawTransactions(ctx context.Context, hashes []chainhash.Hash) ([][]byte, error) {
	out := make([][]byte, len(hashes))
	for i, h := range hashes {
		raw, err := c.Node.RawTransaction(h)
		if err != nil {
			return nil, fmt.Errorf("raw transaction %s: %w", h, err)
		}
		out[i] = raw
	}
	return out, nil
}

// LookupUTXOs resolves a batch of prevouts against the persistent
// store's native-coin outputs.
func (c *Collaborator) LookupUTXOs(ctx context.Context, prevouts []mempooltypes.Prevout) ([]*mempool.UTXOResolution, error) {
	return c.Store.LookupUTXOs(ctx, prevouts)
}

// LookupAssets resolves a batch of prevouts against the persistent
// store's asset outputs.
func (c *Collaborator) LookupAssets(ctx context.Context, prevouts []mempooltypes.Prevout) ([]*mempool.AssetResolution, error) {
	return c.Store.LookupAssets(ctx, prevouts)
}

// mempoolNotification is the JSON payload pushed to every subscribed
// websocket client after a successful reconciliation cycle.
type mempoolNotification struct {
	Height        int32    `json:"height"`
	Touched       []string `json:"touched"`
	AssetsTouched []string `json:"assets_touched"`
}

// OnMempool publishes the touched scripthashes/assets over the
// websocket hub and latches the durable synced flag GET /healthz
// reads.
func (c *Collaborator) OnMempool(ctx context.Context, touched map[mempooltypes.ScriptHash]struct{}, height int32, assetsTouched map[string]struct{}) error {
	notification := mempoolNotification{
		Height:        height,
		Touched:       make([]string, 0, len(touched)),
		AssetsTouched: make([]string, 0, len(assetsTouched)),
	}
	for sh := range touched {
		notification.Touched = append(notification.Touched, hex.EncodeToString(sh[:]))
	}
	for name := range assetsTouched {
		notification.AssetsTouched = append(notification.AssetsTouched, name)
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal mempool notification: %w", err)
	}
	c.Hub.Broadcast(data)
	c.Hub.MarkSynced()
	return nil
}
