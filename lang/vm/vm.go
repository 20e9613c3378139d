// Package vm implements the stack-based bytecode interpreter described in
// spec.md §4.5: a fixed-size value stack, a call-frame stack, an
// open-upvalues list, globals, and the dispatch loop that executes every
// opcode lang/compiler emits.
package vm

import (
	"fmt"
	"io"
	"os"

	swiss "github.com/dolthub/swiss"

	"github.com/loxlang/loxvm/lang/compiler"
	"github.com/loxlang/loxvm/lang/object"
)

const (
	framesMax = 64
	stackMax  = framesMax * 256
)

// frame is one active call: the closure being executed, its instruction
// pointer into that closure's chunk, and the base stack slot its locals
// start at.
type frame struct {
	closure *object.Closure
	ip      int
	slots   int
}

// openUpvalue pairs a still-open Upvalue with the stack slot it points
// into, so the VM can find and close every upvalue at or above a given
// slot without comparing raw pointers (spec.md §4.3).
type openUpvalue struct {
	slot int
	uv   *object.Upvalue
}

// VM is one instance of the interpreter. It owns its own stack, frames,
// globals and heap, so multiple VMs (e.g. in tests) never share state.
type VM struct {
	stack    [stackMax]object.Value
	stackTop int

	frames     [framesMax]frame
	frameCount int

	openUpvalues []openUpvalue // sorted by descending slot

	globals *object.Table
	heap    *object.Heap

	natives *swiss.Map[string, *object.Native]

	// Stdout receives `print` output. Nil means os.Stdout. Tests set this to
	// a buffer to capture program output.
	Stdout io.Writer

	// MaxSteps, if non-zero, aborts the run with a runtime error once this
	// many instructions have been dispatched, guarding against a runaway
	// script (LOXVM_MAX_STEPS, spec.md §9).
	MaxSteps int64
	steps    int64
}

func (vm *VM) stdout() io.Writer {
	if vm.Stdout != nil {
		return vm.Stdout
	}
	return os.Stdout
}

// New returns a VM with its globals table, heap, and native-function
// registry initialized and the standard library natives installed.
func New(hp *object.Heap) *VM {
	vm := &VM{
		globals: object.NewTable(),
		heap:    hp,
		natives: swiss.NewMap[string, *object.Native](8),
	}
	hp.Register(vm)
	defineStandardNatives(vm)
	return vm
}

// MarkRoots implements object.RootProvider: the VM's own stack, call
// frames (via their closures), open upvalues, and globals must all be
// seen as GC roots, per spec.md §4.6.
func (vm *VM) MarkRoots(mark func(object.Value)) {
	for i := 0; i < vm.stackTop; i++ {
		mark(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		mark(vm.frames[i].closure)
	}
	for _, ou := range vm.openUpvalues {
		mark(ou.uv)
	}
	vm.globals.TraceRoots(mark)
}

func (vm *VM) push(v object.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() object.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) object.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = vm.openUpvalues[:0]
}

// Interpret compiles source and runs it to completion, per spec.md §6.
func (vm *VM) Interpret(source []byte) (InterpretResult, error) {
	fn, err := compiler.Compile(vm.heap, source)
	if err != nil {
		return CompileError, err
	}

	closure := vm.heap.NewClosure(fn)
	vm.push(closure)
	if err := vm.call(closure, 0); err != nil {
		return RuntimeErr, err
	}

	if err := vm.run(); err != nil {
		vm.resetStack()
		return RuntimeErr, err
	}
	return OK, nil
}

// runtimeError builds a RuntimeError carrying the current call-stack
// trace, per spec.md §7.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	re := &RuntimeError{Message: fmt.Sprintf(format, args...)}
	for i := vm.frameCount - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		fn := fr.closure.Function
		line := fn.Chunk.LineAt(fr.ip - 1)
		name := "script"
		if fn.Name != nil {
			name = fn.Name.Chars + "()"
		}
		re.Trace = append(re.Trace, fmt.Sprintf("[line %d] in %s", line, name))
	}
	return re
}
