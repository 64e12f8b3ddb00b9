package mempool

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

func TestAssetIndex_InsertAndRemoveTx(t *testing.T) {
	idx := newAssetIndex()
	var tx chainhash.Hash
	tx[0] = 0x01

	idx.InsertCreate(tx, "FOO", mempooltypes.AssetIssuance{SatsInCirculation: 500, Divisions: 2, Reissuable: true})
	idx.InsertReissue(tx, "BAR", mempooltypes.AssetIssuance{SatsInCirculation: 10, Reissuable: false})

	if _, ok := idx.Creation("FOO"); !ok {
		t.Fatalf("expected FOO creation to be present")
	}
	if _, ok := idx.Reissuance("BAR"); !ok {
		t.Fatalf("expected BAR reissuance to be present")
	}

	removed := idx.RemoveTx(tx)
	if _, ok := removed["FOO"]; !ok {
		t.Errorf("expected FOO in removed set")
	}
	if _, ok := removed["BAR"]; !ok {
		t.Errorf("expected BAR in removed set")
	}
	if _, ok := idx.Creation("FOO"); ok {
		t.Errorf("FOO creation should be gone after RemoveTx")
	}
	if _, ok := idx.Reissuance("BAR"); ok {
		t.Errorf("BAR reissuance should be gone after RemoveTx")
	}
}

func TestAssetIndex_AtMostOneReissuePerAsset(t *testing.T) {
	// Reissue chaining is an explicit non-feature: a second reissue of
	// the same asset name within the index simply replaces the first.
	idx := newAssetIndex()
	var tx1, tx2 chainhash.Hash
	tx1[0], tx2[0] = 0x01, 0x02

	idx.InsertReissue(tx1, "FOO", mempooltypes.AssetIssuance{Divisions: 1})
	idx.InsertReissue(tx2, "FOO", mempooltypes.AssetIssuance{Divisions: 5})

	got, ok := idx.Reissuance("FOO")
	if !ok {
		t.Fatalf("expected a reissuance record for FOO")
	}
	if got.Divisions != 5 {
		t.Errorf("divisions = %d, want 5 (last writer wins)", got.Divisions)
	}
}
