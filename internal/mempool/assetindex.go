package mempool

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

// AssetIndex bundles the forward (name → issuance) and reverse
// (tx_hash → names) asset-metadata indices and keeps them in lockstep,
// per the §9 design note calling for a single abstraction over this
// duality instead of four maps updated independently.
type AssetIndex struct {
	creates  map[string]*mempooltypes.AssetIssuance
	reissues map[string]*mempooltypes.AssetIssuance

	txToCreate  map[chainhash.Hash]map[string]struct{}
	txToReissue map[chainhash.Hash]map[string]struct{}
}

func newAssetIndex() *AssetIndex {
	return &AssetIndex{
		creates:     make(map[string]*mempooltypes.AssetIssuance),
		reissues:    make(map[string]*mempooltypes.AssetIssuance),
		txToCreate:  make(map[chainhash.Hash]map[string]struct{}),
		txToReissue: make(map[chainhash.Hash]map[string]struct{}),
	}
}

// InsertCreate records a new-issuance or owner-token AssetIssuance
// originating from txHash.
func (a *AssetIndex) InsertCreate(txHash chainhash.Hash, name string, issuance mempooltypes.AssetIssuance) {
	a.creates[name] = &issuance
	if a.txToCreate[txHash] == nil {
		a.txToCreate[txHash] = make(map[string]struct{})
	}
	a.txToCreate[txHash][name] = struct{}{}
}

// InsertReissue records a reissuance AssetIssuance originating from
// txHash. At most one reissuance per asset name is ever stored — reissue
// chaining within the mempool is explicitly out of scope.
func (a *AssetIndex) InsertReissue(txHash chainhash.Hash, name string, issuance mempooltypes.AssetIssuance) {
	a.reissues[name] = &issuance
	if a.txToReissue[txHash] == nil {
		a.txToReissue[txHash] = make(map[string]struct{})
	}
	a.txToReissue[txHash][name] = struct{}{}
}

// RemoveTx pops every create/reissue record that originated from txHash
// and returns the set of asset names that were removed, so the caller
// can union them into the cycle's assets-touched accumulator.
func (a *AssetIndex) RemoveTx(txHash chainhash.Hash) map[string]struct{} {
	removed := make(map[string]struct{})

	for name := range a.txToCreate[txHash] {
		delete(a.creates, name)
		removed[name] = struct{}{}
	}
	delete(a.txToCreate, txHash)

	for name := range a.txToReissue[txHash] {
		delete(a.reissues, name)
		removed[name] = struct{}{}
	}
	delete(a.txToReissue, txHash)

	return removed
}

// Creation returns the creation record for name, if any.
func (a *AssetIndex) Creation(name string) (mempooltypes.AssetIssuance, bool) {
	v, ok := a.creates[name]
	if !ok {
		return mempooltypes.AssetIssuance{}, false
	}
	return *v, true
}

// Reissuance returns the reissuance record for name, if any.
func (a *AssetIndex) Reissuance(name string) (mempooltypes.AssetIssuance, bool) {
	v, ok := a.reissues[name]
	if !ok {
		return mempooltypes.AssetIssuance{}, false
	}
	return *v, true
}
