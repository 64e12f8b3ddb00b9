package mempool

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
)

func TestAcceptFixedPoint_ChainedParentChild(t *testing.T) {
	// Scenario 2 from the testable-properties list: tx A spends an
	// external prevout resolved via utxoMap; tx B spends A's output 0.
	// Both must be accepted by one acceptFixedPoint call (B may need a
	// second pass if it is visited before A), and B's summary
	// must report an unconfirmed parent.
	var shX, shA, shB mempooltypes.ScriptHash
	shX[0], shA[0], shB[0] = 0xAA, 0xBB, 0xCC

	var hashA, hashB chainhash.Hash
	hashA[0] = 0x01
	hashB[0] = 0x02

	externalPrevout := mempooltypes.Prevout{Hash: chainhash.Hash{0xFE}, Index: 0}

	drA := &digestResult{
		hash: hashA,
		tx: &mempooltypes.MemPoolTx{
			Prevouts: []mempooltypes.Prevout{externalPrevout},
			OutPairs: []mempooltypes.Pair{mempooltypes.CoinPair(shA, 900)},
			Size:     250,
		},
	}
	drB := &digestResult{
		hash: hashB,
		tx: &mempooltypes.MemPoolTx{
			Prevouts: []mempooltypes.Prevout{{Hash: hashA, Index: 0}},
			OutPairs: []mempooltypes.Pair{mempooltypes.CoinPair(shB, 800)},
			Size:     200,
		},
	}

	pending := map[chainhash.Hash]*digestResult{hashA: drA, hashB: drB}
	utxoMap := map[mempooltypes.Prevout]mempooltypes.Pair{
		externalPrevout: mempooltypes.CoinPair(shX, 1000),
	}
	touched := make(map[mempooltypes.ScriptHash]struct{})
	assetsTouched := make(map[string]struct{})

	core := NewCore(nil)
	residue := core.acceptFixedPoint(pending, utxoMap, touched, assetsTouched)

	if len(residue) != 0 {
		t.Fatalf("expected no residue, got %d: %+v", len(residue), residue)
	}

	txA, ok := core.txs[hashA]
	if !ok {
		t.Fatalf("tx A not committed")
	}
	if txA.Fee != 100 {
		t.Errorf("tx A fee = %d, want 100", txA.Fee)
	}

	if _, ok := core.txs[hashB]; !ok {
		t.Fatalf("tx B not committed")
	}

	if _, ok := core.hashXs[shX][hashA]; !ok {
		t.Errorf("hashXs[shX] does not contain tx A")
	}

	summaries := core.TransactionSummaries(shB)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary for shB, got %d", len(summaries))
	}
	if !summaries[0].HasUnconfirmedInputs {
		t.Errorf("expected HasUnconfirmedInputs=true for B (parent A still in mempool)")
	}
}

func TestAcceptFixedPoint_UnresolvableResidue(t *testing.T) {
	var hashA chainhash.Hash
	hashA[0] = 0x03

	drA := &digestResult{
		hash: hashA,
		tx: &mempooltypes.MemPoolTx{
			Prevouts: []mempooltypes.Prevout{{Hash: chainhash.Hash{0xFF}, Index: 0}},
			OutPairs: nil,
			Size:     100,
		},
	}

	pending := map[chainhash.Hash]*digestResult{hashA: drA}
	utxoMap := map[mempooltypes.Prevout]mempooltypes.Pair{}
	touched := make(map[mempooltypes.ScriptHash]struct{})
	assetsTouched := make(map[string]struct{})

	core := NewCore(nil)
	residue := core.acceptFixedPoint(pending, utxoMap, touched, assetsTouched)

	if len(residue) != 1 {
		t.Fatalf("expected 1 residual tx, got %d", len(residue))
	}
	if _, ok := core.txs[hashA]; ok {
		t.Errorf("unresolvable tx should not be committed")
	}
}

func TestAcceptFixedPoint_GenerationOnlyTxHasZeroFeeAndNoPrevouts(t *testing.T) {
	var hashA chainhash.Hash
	hashA[0] = 0x04
	var shA mempooltypes.ScriptHash
	shA[0] = 0x10

	drA := &digestResult{
		hash: hashA,
		tx: &mempooltypes.MemPoolTx{
			Prevouts: nil, // generation-like input already dropped by the digester
			OutPairs: []mempooltypes.Pair{mempooltypes.CoinPair(shA, 5_000_000_000)},
			Size:     150,
		},
	}

	pending := map[chainhash.Hash]*digestResult{hashA: drA}
	core := NewCore(nil)
	residue := core.acceptFixedPoint(pending, map[mempooltypes.Prevout]mempooltypes.Pair{}, make(map[mempooltypes.ScriptHash]struct{}), make(map[string]struct{}))

	if len(residue) != 0 {
		t.Fatalf("expected generation-only tx to be accepted immediately, got residue %+v", residue)
	}
	if core.txs[hashA].Fee != 0 {
		t.Errorf("fee = %d, want 0", core.txs[hashA].Fee)
	}
}
