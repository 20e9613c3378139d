package vm_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/loxvm/internal/filetest"
	"github.com/loxlang/loxvm/lang/object"
	"github.com/loxlang/loxvm/lang/vm"
)

var testUpdateVMTests = flag.Bool("test.update-vm-tests", false, "If set, replace expected vm golden-file results with actual results.")

func run(t *testing.T, source string) (string, vm.InterpretResult, error) {
	t.Helper()
	var out bytes.Buffer
	m := vm.New(object.NewHeap())
	m.Stdout = &out
	result, err := m.Interpret([]byte(source))
	return out.String(), result, err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, result, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	assert.Equal(t, vm.OK, result)
	assert.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, _, err := run(t, `var a = "he"; var b = "llo"; print a + b;`)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestForLoopAccumulator(t *testing.T) {
	out, _, err := run(t, `var x = 0; for (var i = 0; i < 5; i = i + 1) x = x + i; print x;`)
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)
}

func TestClosureCapturesByReference(t *testing.T) {
	out, _, err := run(t, `
fun make(n) {
  fun inc() {
    n = n + 1;
    return n;
  }
  return inc;
}
var c = make(41);
c();
print c();
`)
	require.NoError(t, err)
	assert.Equal(t, "43\n", out)
}

func TestSingleInheritanceMethodLookup(t *testing.T) {
	out, _, err := run(t, `
class A {
  greet() { print "hi"; }
}
class B < A {}
B().greet();
`)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

func TestInitializerSetsField(t *testing.T) {
	out, _, err := run(t, `
class C {
  init(v) { this.v = v; }
}
print C(7).v;
`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestRuntimeErrorOnBadSubtractOperands(t *testing.T) {
	_, result, err := run(t, `print "a" - 1;`)
	assert.Equal(t, vm.RuntimeErr, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operands must be numbers")
}

func TestRuntimeErrorOnUndefinedVariable(t *testing.T) {
	_, result, err := run(t, `print undefined_var;`)
	assert.Equal(t, vm.RuntimeErr, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable")
}

func TestRuntimeErrorOnStackOverflow(t *testing.T) {
	_, result, err := run(t, `fun f() { f(); } f();`)
	assert.Equal(t, vm.RuntimeErr, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stack overflow")
}

func TestCompileErrorIsReported(t *testing.T) {
	_, result, err := run(t, `print ;`)
	assert.Equal(t, vm.CompileError, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error")
}

func TestStackIsEmptyAfterSuccessfulRun(t *testing.T) {
	var out bytes.Buffer
	m := vm.New(object.NewHeap())
	m.Stdout = &out
	_, err := m.Interpret([]byte(`var a = 1; { var b = 2; print a + b; }`))
	require.NoError(t, err)
	assert.Equal(t, "3\n", out.String())

	// A second, independent program on the same VM must start clean: no
	// leftover stack slots or frames from the previous Interpret call.
	_, err = m.Interpret([]byte(`print "still alive";`))
	require.NoError(t, err)
	assert.True(t, strings.Contains(out.String(), "still alive"))
}

func TestGCStressDoesNotCorruptLiveValues(t *testing.T) {
	hp := object.NewHeap()
	hp.Stress = true
	m := vm.New(hp)
	var out bytes.Buffer
	m.Stdout = &out

	_, err := m.Interpret([]byte(`
class Node {
  init(v) { this.v = v; this.next = nil; }
}
var head = nil;
for (var i = 0; i < 50; i = i + 1) {
  var n = Node(i);
  n.next = head;
  head = n;
}
var sum = 0;
var cur = head;
while (cur != nil) {
  sum = sum + cur.v;
  cur = cur.next;
}
print sum;
`))
	require.NoError(t, err)
	assert.Equal(t, "1225\n", out.String())
}

// TestGoldenPrograms runs every .lox fixture under testdata/in and diffs
// its stdout against the matching testdata/out/*.lox.want golden file,
// the same harness shape as the teacher's scanner/parser/resolver golden
// tests (internal/filetest).
func TestGoldenPrograms(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lox") {
		t.Run(fi.Name(), func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)

			var out bytes.Buffer
			m := vm.New(object.NewHeap())
			m.Stdout = &out
			_, err = m.Interpret(source)
			require.NoError(t, err)

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateVMTests)
		})
	}
}
