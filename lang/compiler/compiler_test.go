package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/loxvm/lang/compiler"
	"github.com/loxlang/loxvm/lang/object"
)

func compile(t *testing.T, src string) *object.Function {
	t.Helper()
	fn, err := compiler.Compile(object.NewHeap(), []byte(src))
	require.NoError(t, err)
	return fn
}

func TestCompileArithmeticEmitsExpectedOpcodes(t *testing.T) {
	fn := compile(t, "print 1 + 2 * 3;")
	dis := compiler.Disassemble(fn.Chunk, "script")

	assert.Contains(t, dis, "CONSTANT")
	assert.Contains(t, dis, "MULTIPLY")
	assert.Contains(t, dis, "ADD")
	assert.Contains(t, dis, "PRINT")
}

func TestCompileGlobalVarRoundTrip(t *testing.T) {
	fn := compile(t, "var a = 1; a = a + 1;")
	dis := compiler.Disassemble(fn.Chunk, "script")

	assert.Contains(t, dis, "DEFINE_GLOBAL")
	assert.Contains(t, dis, "SET_GLOBAL")
	assert.Contains(t, dis, "GET_GLOBAL")
}

func TestCompileLocalsUseSlotsNotGlobals(t *testing.T) {
	fn := compile(t, "{ var a = 1; var b = a + 1; print b; }")
	dis := compiler.Disassemble(fn.Chunk, "script")

	assert.Contains(t, dis, "GET_LOCAL")
	assert.NotContains(t, dis, "GET_GLOBAL")
}

func TestCompileIfElseEmitsJumps(t *testing.T) {
	fn := compile(t, `if (true) { print 1; } else { print 2; }`)
	dis := compiler.Disassemble(fn.Chunk, "script")

	assert.Contains(t, dis, "JUMP_IF_FALSE")
	assert.Contains(t, dis, "JUMP")
}

func TestCompileWhileLoopEmitsLoop(t *testing.T) {
	fn := compile(t, `while (false) { print 1; }`)
	dis := compiler.Disassemble(fn.Chunk, "script")

	assert.Contains(t, dis, "LOOP")
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	fn := compile(t, `
fun outer() {
  var x = 1;
  fun inner() { return x; }
  return inner;
}
`)
	dis := compiler.Disassemble(fn.Chunk, "script")
	assert.Contains(t, dis, "CLOSURE")
}

func TestCompileClassEmitsMethodAndInherit(t *testing.T) {
	fn := compile(t, `
class A { greet() { print "hi"; } }
class B < A {}
`)
	dis := compiler.Disassemble(fn.Chunk, "script")
	assert.Contains(t, dis, "CLASS")
	assert.Contains(t, dis, "METHOD")
	assert.Contains(t, dis, "INHERIT")
}

func TestCompileReportsErrorAtCorrectLine(t *testing.T) {
	_, err := compiler.Compile(object.NewHeap(), []byte("var;\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[line 1]")
}

func TestCompileSynchronizesAfterError(t *testing.T) {
	// Both statements are malformed (missing identifier); the compiler must
	// resynchronize at the first ';' and report the second mistake
	// separately rather than cascading into one confused error, per
	// spec.md §7.
	_, err := compiler.Compile(object.NewHeap(), []byte("var; var;"))
	require.Error(t, err)
	el, ok := err.(compiler.ErrorList)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(el), 2)
}
