package ordinals

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/txscript"
)

// PushScriptBuilder builds scripts made of raw opcodes and canonical data
// pushes. Unlike txscript.ScriptBuilder it has no total-size limit, so it can
// assemble reveal scripts whose body exceeds the standard script size.
type PushScriptBuilder struct {
	script []byte
}

func NewPushScriptBuilder() *PushScriptBuilder {
	return &PushScriptBuilder{}
}

func (b *PushScriptBuilder) AddOp(op byte) *PushScriptBuilder {
	b.script = append(b.script, op)
	return b
}

// AddData appends data using the smallest canonical push for its length. An
// empty slice is encoded as OP_0.
func (b *PushScriptBuilder) AddData(data []byte) *PushScriptBuilder {
	switch n := len(data); {
	case n == 0:
		b.script = append(b.script, txscript.OP_0)
	case n <= 75:
		b.script = append(b.script, byte(n))
		b.script = append(b.script, data...)
	case n <= 0xff:
		b.script = append(b.script, txscript.OP_PUSHDATA1, byte(n))
		b.script = append(b.script, data...)
	case n <= 0xffff:
		b.script = append(b.script, txscript.OP_PUSHDATA2)
		b.script = binary.LittleEndian.AppendUint16(b.script, uint16(n))
		b.script = append(b.script, data...)
	default:
		b.script = append(b.script, txscript.OP_PUSHDATA4)
		b.script = binary.LittleEndian.AppendUint32(b.script, uint32(n))
		b.script = append(b.script, data...)
	}
	return b
}

func (b *PushScriptBuilder) Script() []byte {
	return b.script
}
