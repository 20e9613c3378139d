package vm

import (
	"fmt"
	"time"

	"github.com/loxlang/loxvm/lang/object"
)

// defineNative installs a native function both in the swiss-backed native
// registry (kept for introspection through Native) and as a global
// variable, so compiled GET_GLOBAL/CALL
// instructions can resolve and invoke it exactly like a user-defined
// function, per spec.md §6.
func (vm *VM) defineNative(name string, arity int, fn func(args []object.Value) (object.Value, error)) {
	n := vm.heap.NewNative(name, arity, fn)
	vm.natives.Put(name, n)
	vm.globals.Set(vm.heap.InternString(name), n)
}

// Native looks up a registered native function by name, for diagnostics.
func (vm *VM) Native(name string) (*object.Native, bool) {
	return vm.natives.Get(name)
}

// defineStandardNatives installs the small standard library: `clock`
// (seconds since the Unix epoch, for benchmarking loops), `str` and `type`
// (a value's printed form and type name, as strings), and `panic` (raises
// a runtime error with its argument as the message).
func defineStandardNatives(vm *VM) {
	vm.defineNative("clock", 0, func(args []object.Value) (object.Value, error) {
		return object.Number(float64(time.Now().UnixNano()) / 1e9), nil
	})
	vm.defineNative("str", 1, func(args []object.Value) (object.Value, error) {
		return vm.heap.InternString(args[0].String()), nil
	})
	vm.defineNative("type", 1, func(args []object.Value) (object.Value, error) {
		return vm.heap.InternString(args[0].Type()), nil
	})
	vm.defineNative("panic", 1, func(args []object.Value) (object.Value, error) {
		return nil, fmt.Errorf("%s", args[0].String())
	})
}
