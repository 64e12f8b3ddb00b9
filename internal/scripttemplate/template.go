// Package scripttemplate implements the script-template matcher (C1): a
// small primitive for classifying output scripts against a declarative
// sequence of literal opcodes and generic pushdata predicates.
//
// Grounded on the source's match_script_against_template /
// OPPushDataGeneric pair (original_source/electrumx/server/mempool.py),
// reimplemented over btcd's txscript opcode tokenizer instead of a
// hand-rolled opcode walk.
package scripttemplate

import "github.com/btcsuite/btcd/txscript"

// PushLenOK reports whether a data-push opcode's payload length is
// acceptable at this template position.
type PushLenOK func(dataLen int) bool

// Elem is one template position: either a literal opcode or a generic
// pushdata predicate.
type Elem struct {
	isPush    bool
	opcode    byte
	pushLenOK PushLenOK
}

// Literal returns a template element matching exactly one opcode byte.
func Literal(opcode byte) Elem { return Elem{opcode: opcode} }

// PushData returns a template element matching any data-push opcode whose
// push length satisfies pred.
func PushData(pred PushLenOK) Elem { return Elem{isPush: true, pushLenOK: pred} }

// P2PK is the canonical template instance: a 33- or 65-byte public key
// push followed by OP_CHECKSIG.
var P2PK = []Elem{
	PushData(func(n int) bool { return n == 33 || n == 65 }),
	Literal(txscript.OP_CHECKSIG),
}

// Op is one parsed opcode from a script: its code, any pushed data, and
// the byte offset in the original script immediately after it.
type Op struct {
	Opcode    byte
	Data      []byte
	EndOffset int
}

// IsDataPush reports whether this opcode pushed data onto the stack
// (as opposed to being a plain operator).
func (o Op) IsDataPush() bool {
	return o.Opcode <= txscript.OP_PUSHDATA4 && o.Opcode != txscript.OP_RESERVED
}

// Parse walks script into its constituent opcodes. A malformed script
// (truncated pushdata length, etc.) yields the opcodes decoded so far and
// a non-nil error; callers that only need a best-effort prefix (as the
// asset parser does for locating the asset marker) may use the partial
// result.
func Parse(script []byte) ([]Op, error) {
	var ops []Op
	tok := txscript.MakeScriptTokenizer(0, script)
	for tok.Next() {
		ops = append(ops, Op{
			Opcode:    tok.Opcode(),
			Data:      tok.Data(),
			EndOffset: tok.ByteIndex(),
		})
	}
	return ops, tok.Err()
}

// Match reports the count of opcodes template consumes starting at the
// beginning of ops, or -1 if ops doesn't match template.
func Match(ops []Op, template []Elem) int {
	if len(ops) < len(template) {
		return -1
	}
	for i, elem := range template {
		op := ops[i]
		if elem.isPush {
			if !op.IsDataPush() || !elem.pushLenOK(len(op.Data)) {
				return -1
			}
			continue
		}
		if op.Opcode != elem.opcode {
			return -1
		}
	}
	return len(template)
}
