package vm

import "github.com/loxlang/loxvm/lang/object"

// callValue implements CALL's dispatch over every callable value kind
// spec.md §4.5 lists: a Closure, a Native, a Class (constructs an
// Instance and optionally runs its initializer), or a BoundMethod.
func (vm *VM) callValue(callee object.Value, argCount int) error {
	switch c := callee.(type) {
	case *object.Closure:
		return vm.call(c, argCount)
	case *object.Native:
		return vm.callNative(c, argCount)
	case *object.Class:
		instance := vm.heap.NewInstance(c)
		vm.stack[vm.stackTop-argCount-1] = instance
		if init, ok := c.Methods.Get(vm.heap.InternString("init")); ok {
			return vm.call(init.(*object.Closure), argCount)
		}
		if argCount != 0 {
			return vm.runtimeError("expected 0 arguments but got %d", argCount)
		}
		return nil
	case *object.BoundMethod:
		vm.stack[vm.stackTop-argCount-1] = c.Receiver
		return vm.call(c.Method, argCount)
	default:
		return vm.runtimeError("can only call functions and classes")
	}
}

func (vm *VM) callNative(n *object.Native, argCount int) error {
	if argCount != n.Arity {
		return vm.runtimeError("expected %d arguments but got %d", n.Arity, argCount)
	}
	args := vm.stack[vm.stackTop-argCount : vm.stackTop]
	result, err := n.Fn(args)
	if err != nil {
		return vm.runtimeError("%s", err.Error())
	}
	vm.stackTop -= argCount + 1
	vm.push(result)
	return nil
}

// call pushes a new frame for closure, validating arity and the
// call-stack depth limit (spec.md §4.5's stack-overflow runtime error).
func (vm *VM) call(closure *object.Closure, argCount int) error {
	if argCount != closure.Function.Arity {
		return vm.runtimeError("expected %d arguments but got %d", closure.Function.Arity, argCount)
	}
	if vm.frameCount == framesMax {
		return vm.runtimeError("stack overflow")
	}

	fr := &vm.frames[vm.frameCount]
	vm.frameCount++
	fr.closure = closure
	fr.ip = 0
	fr.slots = vm.stackTop - argCount - 1
	return nil
}

// invoke fuses GET_PROPERTY and CALL for the common `receiver.method(...)`
// shape, avoiding materializing a BoundMethod object, per spec.md §4.5.
func (vm *VM) invoke(name *object.String, argCount int) error {
	receiver, ok := vm.peek(argCount).(*object.Instance)
	if !ok {
		return vm.runtimeError("only instances have methods")
	}

	if field, ok := receiver.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = field
		return vm.callValue(field, argCount)
	}

	return vm.invokeFromClass(receiver.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *object.Class, name *object.String, argCount int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("undefined property '%s'", name.Chars)
	}
	return vm.call(method.(*object.Closure), argCount)
}

// bindMethod looks up name in class's method table and, if found, wraps it
// with the current peek(0) receiver as a BoundMethod, replacing the
// receiver on the stack with it.
func (vm *VM) bindMethod(class *object.Class, name *object.String) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("undefined property '%s'", name.Chars)
	}

	bound := vm.heap.NewBoundMethod(vm.peek(0), method.(*object.Closure))
	vm.pop()
	vm.push(bound)
	return nil
}
