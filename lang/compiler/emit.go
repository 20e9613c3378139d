package compiler

import "github.com/loxlang/loxvm/lang/object"

func (c *compiler) emitByte(b byte) {
	c.chunk().Write(b, c.p.previous.Line)
}

func (c *compiler) emitOp(op Opcode) {
	c.emitByte(byte(op))
}

func (c *compiler) emitBytes(op Opcode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *compiler) emitReturn() {
	if c.kind == object.KindInitializer {
		// `init()` always returns `this`, found in slot 0, per spec.md §4.2.
		c.emitBytes(GET_LOCAL, 0)
	} else {
		c.emitOp(NIL)
	}
	c.emitOp(RETURN)
}

// emitConstant adds value to the current chunk's constant pool and emits a
// CONSTANT instruction loading it.
func (c *compiler) emitConstant(value object.Value) {
	c.emitBytes(CONSTANT, c.makeConstant(value))
}

func (c *compiler) makeConstant(value object.Value) byte {
	idx := c.chunk().AddConstant(value)
	if idx > 0xff {
		c.p.error("too many constants in one chunk")
		return 0
	}
	return byte(idx)
}

// identifierConstant interns name and adds it to the constant pool,
// returning its index — used by every opcode that names a global or a
// property by string rather than by slot.
func (c *compiler) identifierConstant(name string) byte {
	return c.makeConstant(c.p.hp.InternString(name))
}

// emitJump emits a two-operand-byte jump instruction with a placeholder
// offset and returns the offset of its first operand byte, to be patched
// once the jump target is known.
func (c *compiler) emitJump(op Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

// patchJump backfills the jump instruction starting at offset so it lands
// on the current end of the chunk.
func (c *compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.p.error("too much code to jump over")
	}
	c.chunk().Code[offset] = byte(jump>>8) & 0xff
	c.chunk().Code[offset+1] = byte(jump) & 0xff
}

// emitLoop emits a backward LOOP instruction returning to loopStart.
func (c *compiler) emitLoop(loopStart int) {
	c.emitOp(LOOP)

	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.p.error("loop body too large")
	}
	c.emitByte(byte(offset>>8) & 0xff)
	c.emitByte(byte(offset) & 0xff)
}
