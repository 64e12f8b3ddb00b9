// Package assetparse implements the asset-output parser (C2): given one
// output script and its parsed opcodes, locate an asset-namespace payload
// (if any) and decode it into a tagged Pair plus, for new issuances and
// reissuances, an Issuance record.
//
// Grounded on the asset-decoding block of deserialize_txs in
// original_source/electrumx/server/mempool.py, which wraps the whole
// per-output decode in a broad try/except and falls back to a plain
// output on any failure. assetparse reproduces that with an internal
// decoder returning (Pair, *Issuance, error); ParseOutput turns any such
// error into the plain-output fallback itself, so callers always get a
// valid Pair.
package assetparse

import (
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/moontreeapp/electrumx-evr/internal/mempooltypes"
	"github.com/moontreeapp/electrumx-evr/internal/scripttemplate"
)

// assetHeaderLen is the length of the chain-namespace marker bytes (e.g.
// ASCII "rvn") that precede the asset_type byte in the tag's payload.
const assetHeaderLen = 3

// ipfsLen is the fixed length of an embedded IPFS hash blob.
const ipfsLen = 34

// ownerTokenQuantity is the fixed quantity an owner-token output always
// carries, in the chain's smallest asset unit.
const ownerTokenQuantity = 100_000_000

const (
	assetTypeOwner   = 'o'
	assetTypeNew     = 'q'
	assetTypeReissue = 'r'
)

// Issuance is the asset-creation/reissuance metadata produced while
// parsing a 'q' or 'r' output.
type Issuance struct {
	AssetName         string
	SatsInCirculation int64
	Divisions         int
	Reissuable        bool
	HasIPFS           bool
	IPFS              string
	// IsReissue distinguishes a reissuance ('r') record from a creation
	// record ('o' owner token or 'q' new issuance), so callers can file
	// it into the right one of the two per-batch maps (§3, §4.2).
	IsReissue bool
}

// AssetMarker reports the chain's asset-namespace opcode and lets
// ParseOutput build the script-template independent of chainparams,
// avoiding an import cycle between assetparse and chainparams.
type AssetMarker interface {
	AssetMarkerOpcode() byte
}

// HashXFunc computes a scripthash from a script prefix.
type HashXFunc func(script []byte) mempooltypes.ScriptHash

// ParseOutput implements C2. It always returns a usable Pair: any parse
// failure past the marker opcode degrades to a plain, non-asset pair over
// the output's effective scripthash (the pay-to-address prefix ahead of the
// marker) carrying the original output value, per SPEC_FULL.md §4.2 step 4.
func ParseOutput(script []byte, value int64, marker AssetMarker, hashX HashXFunc) (mempooltypes.Pair, *Issuance) {
	plain := func() mempooltypes.Pair {
		return mempooltypes.CoinPair(hashX(script), value)
	}

	ops, _ := scripttemplate.Parse(script)
	if len(ops) == 0 {
		return plain(), nil
	}

	markerOp := marker.AssetMarkerOpcode()
	k := -1
	for i, op := range ops {
		if op.Opcode == markerOp {
			k = i
			break
		}
	}
	if k < 0 {
		return plain(), nil
	}

	if k == 0 {
		// No pay-to-address prefix ahead of the marker: per §4.2 step 2,
		// the full script is hashed and the output is indexed as plain.
		return plain(), nil
	}

	sh := hashX(script[:ops[k-1].EndOffset])

	if k >= len(ops)-1 {
		// Marker present with no following data push: index as plain.
		return mempooltypes.CoinPair(sh, value), nil
	}

	payload := ops[k+1].Data
	pair, issuance, err := decodeAssetPayload(payload, sh)
	if err != nil {
		return mempooltypes.CoinPair(sh, value), nil
	}
	return pair, issuance
}

func decodeAssetPayload(payload []byte, sh mempooltypes.ScriptHash) (mempooltypes.Pair, *Issuance, error) {
	r := newByteReader(payload)

	if _, err := r.readBytes(assetHeaderLen); err != nil {
		return mempooltypes.Pair{}, nil, err
	}
	assetType, err := r.readByte()
	if err != nil {
		return mempooltypes.Pair{}, nil, err
	}
	nameBytes, err := r.readVarBytes()
	if err != nil {
		return mempooltypes.Pair{}, nil, err
	}
	name := string(nameBytes)

	if assetType == assetTypeOwner {
		pair := mempooltypes.AssetPair(sh, ownerTokenQuantity, name)
		issuance := &Issuance{
			AssetName:         name,
			SatsInCirculation: ownerTokenQuantity,
			Divisions:         0,
			Reissuable:        false,
			HasIPFS:           false,
		}
		return pair, issuance, nil
	}

	value, err := r.readUint64LE()
	if err != nil {
		return mempooltypes.Pair{}, nil, err
	}
	pair := mempooltypes.AssetPair(sh, int64(value), name)

	switch assetType {
	case assetTypeNew:
		issuance, err := decodeNewIssuance(r, name, int64(value))
		if err != nil {
			return mempooltypes.Pair{}, nil, err
		}
		return pair, issuance, nil
	case assetTypeReissue:
		issuance, err := decodeReissuance(r, name, int64(value))
		if err != nil {
			return mempooltypes.Pair{}, nil, err
		}
		return pair, issuance, nil
	default:
		// Unrecognized asset type: still an asset output, no metadata.
		return pair, nil, nil
	}
}

func decodeNewIssuance(r *byteReader, name string, value int64) (*Issuance, error) {
	divisions, err := r.readByte()
	if err != nil {
		return nil, err
	}
	reissuableFlag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	hasMeta, err := r.readByte()
	if err != nil {
		return nil, err
	}
	issuance := &Issuance{
		AssetName:         name,
		SatsInCirculation: value,
		Divisions:         int(divisions),
		Reissuable:        reissuableFlag != 0,
	}
	if hasMeta != 0 {
		ipfsRaw, err := r.readBytes(ipfsLen)
		if err != nil {
			return nil, err
		}
		issuance.HasIPFS = true
		issuance.IPFS = base58.Encode(ipfsRaw)
	}
	return issuance, nil
}

func decodeReissuance(r *byteReader, name string, value int64) (*Issuance, error) {
	divisions, err := r.readByte()
	if err != nil {
		return nil, err
	}
	reissuableFlag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	issuance := &Issuance{
		AssetName:         name,
		SatsInCirculation: value,
		Divisions:         int(divisions),
		Reissuable:        reissuableFlag != 0,
		IsReissue:         true,
	}
	if r.remaining() >= ipfsLen {
		ipfsRaw, err := r.readBytes(ipfsLen)
		if err != nil {
			return nil, err
		}
		issuance.HasIPFS = true
		issuance.IPFS = base58.Encode(ipfsRaw)
	}
	return issuance, nil
}
