// Package bitcoind is the node-RPC half of the reference collaborator
// adapter (C10, §10.4): a thin wrapper over btcsuite/btcd/rpcclient
// exposing exactly the calls the reconciler needs (tip height, mempool
// hash listing, raw transaction bytes).
//
// Adapted from the teacher's internal/bitcoin/client.go: the
// wallet-management surface (CreateWallet/ImportAddress/ListUnspent/
// ScanTxOutset/EstimateSmartFee/...) is dropped — this core has no
// wallet concept, see DESIGN.md — and GetRawTransaction now returns raw
// bytes instead of the verbose JSON shape, since the digester (C3) reads
// directly off the wire format via chainparams.Params.ReadTx.
package bitcoind

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
)

// Config names the node RPC endpoint and credentials.
type Config struct {
	Host string
	User string
	Pass string
}

// Client wraps an rpcclient.Client and caches the last height observed,
// matching the teacher's NewClient/Shutdown/RPC-field convention.
type Client struct {
	RPC    *rpcclient.Client
	Config Config

	cachedHeight atomic.Int64
}

// NewClient dials the node and verifies connectivity, logging the same
// way internal/bitcoin/client.go does.
func NewClient(cfg Config) (*Client, error) {
	connCfg := &rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		HTTPPostMode: true,
		DisableTLS:   true,
	}

	log.Printf("[Bitcoind] Connecting to node RPC at %s...", cfg.Host)
	rpc, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, err
	}

	blockCount, err := rpc.GetBlockCount()
	if err != nil {
		rpc.Shutdown()
		return nil, err
	}
	log.Printf("[Bitcoind] Connected. Current block height: %d", blockCount)

	c := &Client{RPC: rpc, Config: cfg}
	c.cachedHeight.Store(blockCount)
	return c, nil
}

// Shutdown closes the RPC connection.
func (c *Client) Shutdown() {
	c.RPC.Shutdown()
}

// Height fetches the node's current tip height and updates the cache.
func (c *Client) Height() (int32, error) {
	count, err := c.RPC.GetBlockCount()
	if err != nil {
		return 0, fmt.Errorf("getblockcount: %w", err)
	}
	c.cachedHeight.Store(count)
	return int32(count), nil
}

// CachedHeight returns the last height observed by Height, without a
// fresh RPC round trip.
func (c *Client) CachedHeight() int32 {
	return int32(c.cachedHeight.Load())
}

// MempoolHashes returns every tx hash currently in the node's mempool.
func (c *Client) MempoolHashes() ([]chainhash.Hash, error) {
	hashes, err := c.RPC.GetRawMempool()
	if err != nil {
		return nil, fmt.Errorf("getrawmempool: %w", err)
	}
	out := make([]chainhash.Hash, len(hashes))
	for i, h := range hashes {
		out[i] = *h
	}
	return out, nil
}

// RawTransaction fetches one transaction's raw serialized bytes. A nil
// result (with nil error) means the tx was evicted before it could be
// fetched — §7 specifies this is handled silently, not as a failure.
func (c *Client) RawTransaction(hash chainhash.Hash) ([]byte, error) {
	raw, err := c.RPC.GetRawTransaction(&hash)
	if err != nil {
		if isMissingTxErr(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("getrawtransaction %s: %w", hash, err)
	}
	var buf bytes.Buffer
	if err := raw.MsgTx().Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// isMissingTxErr reports whether err is bitcoind's "no such mempool or
// blockchain transaction" response (RPC code -5), which §7 says to
// handle silently rather than propagate.
func isMissingTxErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "-5:") || strings.Contains(msg, "No such mempool")
}

// HashFromHex is a small convenience for callers that receive
// display-order hex tx ids from outside this package (e.g. HTTP query
// parameters).
func HashFromHex(s string) (chainhash.Hash, error) {
	return chainhash.NewHashFromStr(s)
}
