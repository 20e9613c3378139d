package compiler

import (
	"fmt"
	"strings"

	"github.com/loxlang/loxvm/lang/object"
)

// Disassemble renders every instruction in chunk as text, one per line,
// prefixed with name — used by the CLI's --disassemble flag and by the
// compiler tests, which assert on its text instead of on raw bytecode.
func Disassemble(chunk *object.Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = disassembleInstruction(&b, chunk, offset)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, chunk *object.Chunk, offset int) int {
	fmt.Fprintf(b, "%04d ", offset)
	line := chunk.LineAt(offset)
	if offset > 0 && line == chunk.LineAt(offset-1) {
		fmt.Fprint(b, "   | ")
	} else {
		fmt.Fprintf(b, "%4d ", line)
	}

	op := Opcode(chunk.Code[offset])
	switch op {
	case CONSTANT, GET_GLOBAL, SET_GLOBAL, DEFINE_GLOBAL, GET_PROPERTY, SET_PROPERTY, GET_SUPER, CLASS, METHOD:
		return constantInstruction(b, op, chunk, offset)
	case GET_LOCAL, SET_LOCAL, GET_UPVALUE, SET_UPVALUE, CALL:
		return byteInstruction(b, op, chunk, offset)
	case INVOKE, SUPER_INVOKE:
		return invokeInstruction(b, op, chunk, offset)
	case JUMP, JUMP_IF_FALSE:
		return jumpInstruction(b, op, chunk, offset, 1)
	case LOOP:
		return jumpInstruction(b, op, chunk, offset, -1)
	case CLOSURE:
		return closureInstruction(b, chunk, offset)
	default:
		fmt.Fprintf(b, "%s\n", op)
		return offset + 1
	}
}

func constantInstruction(b *strings.Builder, op Opcode, chunk *object.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d '%s'\n", op, idx, chunk.Constants[idx].String())
	return offset + 2
}

func byteInstruction(b *strings.Builder, op Opcode, chunk *object.Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d\n", op, slot)
	return offset + 2
}

func invokeInstruction(b *strings.Builder, op Opcode, chunk *object.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	argc := chunk.Code[offset+2]
	fmt.Fprintf(b, "%-16s (%d args) %4d '%s'\n", op, argc, idx, chunk.Constants[idx].String())
	return offset + 3
}

func jumpInstruction(b *strings.Builder, op Opcode, chunk *object.Chunk, offset int, sign int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Fprintf(b, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func closureInstruction(b *strings.Builder, chunk *object.Chunk, offset int) int {
	offset++
	idx := chunk.Code[offset]
	offset++
	fmt.Fprintf(b, "%-16s %4d '%s'\n", CLOSURE, idx, chunk.Constants[idx].String())

	fn, ok := chunk.Constants[idx].(*object.Function)
	if !ok {
		return offset
	}
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		offset += 2
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(b, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
