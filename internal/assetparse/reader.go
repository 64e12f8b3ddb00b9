package assetparse

import (
	"encoding/binary"
	"errors"
)

// errShortRead is returned by every reader method when the payload runs
// out before the field being read. The asset parser turns this (and any
// other parse error) into the degrade-to-plain-output fallback described
// by SPEC_FULL.md §4.2 step 4 — it never propagates past ParseOutput.
var errShortRead = errors.New("assetparse: short read")

// byteReader is a minimal bounds-checked cursor over an asset payload.
// The source catches a broad exception anywhere in its field-by-field
// parse and falls through to the plain-output case; byteReader gives the
// same "any field read can fail, caller degrades" shape without relying
// on panic/recover for control flow.
type byteReader struct {
	buf []byte
	pos int
}

func newByteReader(buf []byte) *byteReader { return &byteReader{buf: buf} }

func (r *byteReader) remaining() int { return len(r.buf) - r.pos }

func (r *byteReader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errShortRead
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *byteReader) readByte() (byte, error) {
	b, err := r.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) readUint64LE() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readVarInt reads a Bitcoin-style CompactSize integer.
func (r *byteReader) readVarInt() (uint64, error) {
	prefix, err := r.readByte()
	if err != nil {
		return 0, err
	}
	switch prefix {
	case 0xfd:
		b, err := r.readBytes(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 0xfe:
		b, err := r.readBytes(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case 0xff:
		b, err := r.readBytes(8)
		if err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(b), nil
	default:
		return uint64(prefix), nil
	}
}

// readVarBytes reads a CompactSize-length-prefixed byte string.
func (r *byteReader) readVarBytes() ([]byte, error) {
	n, err := r.readVarInt()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.remaining()) {
		return nil, errShortRead
	}
	return r.readBytes(int(n))
}
