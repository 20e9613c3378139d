package vm

import "github.com/loxlang/loxvm/lang/object"

// captureUpvalue returns the open Upvalue for stack slot, reusing one
// already open at that slot so two closures capturing the same variable
// share it, per spec.md §4.3.
func (vm *VM) captureUpvalue(slot int) *object.Upvalue {
	i := 0
	for ; i < len(vm.openUpvalues); i++ {
		if vm.openUpvalues[i].slot == slot {
			return vm.openUpvalues[i].uv
		}
		if vm.openUpvalues[i].slot < slot {
			break
		}
	}

	uv := vm.heap.NewUpvalue(&vm.stack[slot])
	entry := openUpvalue{slot: slot, uv: uv}
	vm.openUpvalues = append(vm.openUpvalues, openUpvalue{})
	copy(vm.openUpvalues[i+1:], vm.openUpvalues[i:])
	vm.openUpvalues[i] = entry
	return uv
}

// closeUpvalues closes (detaches from the stack, copying the value in)
// every open upvalue at or above lastSlot, called when a scope's locals
// are about to be popped, per spec.md §4.3.
func (vm *VM) closeUpvalues(lastSlot int) {
	i := 0
	for ; i < len(vm.openUpvalues) && vm.openUpvalues[i].slot >= lastSlot; i++ {
		vm.openUpvalues[i].uv.Close()
	}
	vm.openUpvalues = vm.openUpvalues[i:]
}
