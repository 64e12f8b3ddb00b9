package assetparse_test

import (
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/moontreeapp/electrumx-evr/internal/assetparse"
	"github.com/moontreeapp/electrumx-evr/internal/chainparams"
)

func varInt(n int) []byte {
	if n < 0xfd {
		return []byte{byte(n)}
	}
	return []byte{0xfd, byte(n), byte(n >> 8)}
}

func assetPayload(assetType byte, name string, fields ...byte) []byte {
	buf := append([]byte{}, []byte("rvn")...)
	buf = append(buf, assetType)
	buf = append(buf, varInt(len(name))...)
	buf = append(buf, []byte(name)...)
	buf = append(buf, fields...)
	return buf
}

func le64(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

func buildScript(t *testing.T, payload []byte) []byte {
	t.Helper()
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_DUP)
	b.AddOp(txscript.OP_HASH160)
	b.AddData(make([]byte, 20))
	b.AddOp(txscript.OP_EQUALVERIFY)
	b.AddOp(txscript.OP_CHECKSIG)
	b.AddOp(0xc0) // OP_RVN_ASSET
	b.AddData(payload)
	script, err := b.Script()
	if err != nil {
		t.Fatalf("build script: %v", err)
	}
	return script
}

func TestParseOutput_OwnerToken(t *testing.T) {
	chain := chainparams.Ravencoin{}
	payload := assetPayload(byte('o'), "MYASSET!")
	script := buildScript(t, payload)

	pair, issuance := assetparse.ParseOutput(script, 0, chain, chain.HashXFromScript)

	if !pair.IsAsset() {
		t.Fatalf("expected asset pair, got coin pair")
	}
	if pair.AssetName != "MYASSET!" {
		t.Fatalf("asset name = %q, want MYASSET!", pair.AssetName)
	}
	if pair.Value != 100_000_000 {
		t.Fatalf("owner token value = %d, want 100000000", pair.Value)
	}
	if issuance == nil || issuance.Reissuable || issuance.HasIPFS || issuance.Divisions != 0 {
		t.Fatalf("unexpected owner issuance record: %+v", issuance)
	}
}

func TestParseOutput_NewIssuanceNoMeta(t *testing.T) {
	chain := chainparams.Ravencoin{}
	payload := assetPayload(byte('q'), "FOO", le64(21_000_000)...)
	payload = append(payload, 8, 1, 0) // divisions=8, reissuable=true, has_meta=false
	script := buildScript(t, payload)

	pair, issuance := assetparse.ParseOutput(script, 0, chain, chain.HashXFromScript)

	if !pair.IsAsset() || pair.AssetName != "FOO" || pair.Value != 21_000_000 {
		t.Fatalf("unexpected pair: %+v", pair)
	}
	if issuance == nil {
		t.Fatalf("expected issuance record")
	}
	if issuance.Divisions != 8 || !issuance.Reissuable || issuance.HasIPFS {
		t.Fatalf("unexpected issuance: %+v", issuance)
	}
}

func TestParseOutput_NewIssuanceWithIPFS(t *testing.T) {
	chain := chainparams.Ravencoin{}
	ipfs := make([]byte, 34)
	for i := range ipfs {
		ipfs[i] = byte(i)
	}
	payload := assetPayload(byte('q'), "BAR", le64(1)...)
	payload = append(payload, 0, 0, 1)
	payload = append(payload, ipfs...)
	script := buildScript(t, payload)

	pair, issuance := assetparse.ParseOutput(script, 0, chain, chain.HashXFromScript)

	if !pair.IsAsset() {
		t.Fatalf("expected asset pair")
	}
	if issuance == nil || !issuance.HasIPFS || issuance.IPFS == "" {
		t.Fatalf("expected ipfs-bearing issuance, got %+v", issuance)
	}
}

func TestParseOutput_Reissuance(t *testing.T) {
	chain := chainparams.Ravencoin{}
	payload := assetPayload(byte('r'), "FOO", le64(5_000_000)...)
	payload = append(payload, 8, 0) // divisions unchanged, reissuable=false
	script := buildScript(t, payload)

	pair, issuance := assetparse.ParseOutput(script, 0, chain, chain.HashXFromScript)

	if !pair.IsAsset() || pair.Value != 5_000_000 {
		t.Fatalf("unexpected reissue pair: %+v", pair)
	}
	if issuance == nil || issuance.Reissuable {
		t.Fatalf("unexpected reissue issuance: %+v", issuance)
	}
	if issuance.HasIPFS {
		t.Fatalf("expected no ipfs when payload is short")
	}
}

func TestParseOutput_UnknownAssetTypeNoMetadata(t *testing.T) {
	chain := chainparams.Ravencoin{}
	payload := assetPayload(byte('t'), "TRANSFER", le64(42)...)
	script := buildScript(t, payload)

	pair, issuance := assetparse.ParseOutput(script, 0, chain, chain.HashXFromScript)

	if !pair.IsAsset() || pair.Value != 42 || pair.AssetName != "TRANSFER" {
		t.Fatalf("unexpected transfer pair: %+v", pair)
	}
	if issuance != nil {
		t.Fatalf("expected no issuance metadata for transfer type, got %+v", issuance)
	}
}

func TestParseOutput_TruncatedPayloadDegradesToPlain(t *testing.T) {
	chain := chainparams.Ravencoin{}
	// "rvn" header plus asset_type but nothing else: too short for a name.
	payload := []byte{'r', 'v', 'n', 'q'}
	script := buildScript(t, payload)

	pair, issuance := assetparse.ParseOutput(script, 12345, chain, chain.HashXFromScript)

	if pair.IsAsset() {
		t.Fatalf("expected degrade to plain pair, got asset pair")
	}
	if pair.Value != 12345 {
		t.Fatalf("degraded pair value = %d, want original output value 12345", pair.Value)
	}
	if issuance != nil {
		t.Fatalf("expected no issuance on degrade path")
	}
}

func TestParseOutput_MarkerAtScriptStartDegradesToPlain(t *testing.T) {
	chain := chainparams.Ravencoin{}
	b := txscript.NewScriptBuilder()
	b.AddOp(0xc0) // OP_RVN_ASSET with no preceding pay-to-address prefix
	b.AddData(assetPayload(byte('o'), "MYASSET!"))
	script, err := b.Script()
	if err != nil {
		t.Fatalf("build script: %v", err)
	}

	pair, issuance := assetparse.ParseOutput(script, 777, chain, chain.HashXFromScript)

	if pair.IsAsset() {
		t.Fatalf("expected plain pair when marker has no prefix, got asset pair")
	}
	if pair.Value != 777 {
		t.Fatalf("pair value = %d, want 777", pair.Value)
	}
	if pair.ScriptHash != chain.HashXFromScript(script) {
		t.Fatalf("expected scripthash over the full script, not a prefix")
	}
	if issuance != nil {
		t.Fatalf("expected no issuance")
	}
}

func TestParseOutput_NoMarkerIsPlainPair(t *testing.T) {
	chain := chainparams.Ravencoin{}
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_DUP)
	b.AddOp(txscript.OP_HASH160)
	b.AddData(make([]byte, 20))
	b.AddOp(txscript.OP_EQUALVERIFY)
	b.AddOp(txscript.OP_CHECKSIG)
	script, err := b.Script()
	if err != nil {
		t.Fatalf("build script: %v", err)
	}

	pair, issuance := assetparse.ParseOutput(script, 500, chain, chain.HashXFromScript)

	if pair.IsAsset() {
		t.Fatalf("expected plain pair for ordinary P2PKH script")
	}
	if pair.Value != 500 {
		t.Fatalf("pair value = %d, want 500", pair.Value)
	}
	if issuance != nil {
		t.Fatalf("expected no issuance")
	}
}
