package vm

import (
	"fmt"

	"github.com/loxlang/loxvm/lang/compiler"
	"github.com/loxlang/loxvm/lang/object"
)

// run executes bytecode starting from the topmost call frame until it
// returns to frame zero (the implicit script function) or a runtime error
// occurs, per spec.md §4.5.
func (vm *VM) run() error {
	fr := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := fr.closure.Function.Chunk.Code[fr.ip]
		fr.ip++
		return b
	}
	readShort := func() int {
		hi := fr.closure.Function.Chunk.Code[fr.ip]
		lo := fr.closure.Function.Chunk.Code[fr.ip+1]
		fr.ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() object.Value {
		return fr.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *object.String {
		return readConstant().(*object.String)
	}

	for {
		vm.steps++
		if vm.MaxSteps > 0 && vm.steps > vm.MaxSteps {
			return vm.runtimeError("too many steps (exceeded %d)", vm.MaxSteps)
		}

		op := compiler.Opcode(readByte())

		switch op {
		case compiler.CONSTANT:
			vm.push(readConstant())

		case compiler.NIL:
			vm.push(object.NilValue)
		case compiler.TRUE:
			vm.push(object.True)
		case compiler.FALSE:
			vm.push(object.False)
		case compiler.POP:
			vm.pop()

		case compiler.GET_LOCAL:
			slot := readByte()
			vm.push(vm.stack[fr.slots+int(slot)])
		case compiler.SET_LOCAL:
			slot := readByte()
			vm.stack[fr.slots+int(slot)] = vm.peek(0)

		case compiler.GET_GLOBAL:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("undefined variable '%s'", name.Chars)
			}
			vm.push(v)
		case compiler.SET_GLOBAL:
			name := readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("undefined variable '%s'", name.Chars)
			}
		case compiler.DEFINE_GLOBAL:
			name := readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case compiler.GET_UPVALUE:
			slot := readByte()
			vm.push(*fr.closure.Upvalues[slot].Location)
		case compiler.SET_UPVALUE:
			slot := readByte()
			*fr.closure.Upvalues[slot].Location = vm.peek(0)
		case compiler.CLOSE_UPVALUE:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case compiler.GET_PROPERTY:
			name := readString()
			instance, ok := vm.peek(0).(*object.Instance)
			if !ok {
				return vm.runtimeError("only instances have properties")
			}
			if field, ok := instance.Fields.Get(name); ok {
				vm.pop()
				vm.push(field)
				break
			}
			if err := vm.bindMethod(instance.Class, name); err != nil {
				return err
			}
		case compiler.SET_PROPERTY:
			name := readString()
			instance, ok := vm.peek(1).(*object.Instance)
			if !ok {
				return vm.runtimeError("only instances have fields")
			}
			instance.Fields.Set(name, vm.peek(0))
			value := vm.pop()
			vm.pop()
			vm.push(value)
		case compiler.GET_SUPER:
			name := readString()
			superclass := vm.pop().(*object.Class)
			if err := vm.bindMethod(superclass, name); err != nil {
				return err
			}

		case compiler.EQUAL:
			b := vm.pop()
			a := vm.pop()
			vm.push(object.Bool(object.Equal(a, b)))
		case compiler.GREATER, compiler.LESS:
			if err := vm.numericCompare(op); err != nil {
				return err
			}
		case compiler.ADD:
			if err := vm.add(); err != nil {
				return err
			}
		case compiler.SUBTRACT, compiler.MULTIPLY, compiler.DIVIDE:
			if err := vm.numericBinary(op); err != nil {
				return err
			}
		case compiler.NOT:
			vm.push(object.Bool(!object.Truth(vm.pop())))
		case compiler.NEGATE:
			n, ok := vm.peek(0).(object.Number)
			if !ok {
				return vm.runtimeError("operand must be a number")
			}
			vm.pop()
			vm.push(-n)

		case compiler.PRINT:
			fmt.Fprintln(vm.stdout(), vm.pop().String())

		case compiler.JUMP:
			offset := readShort()
			fr.ip += offset
		case compiler.JUMP_IF_FALSE:
			offset := readShort()
			if !object.Truth(vm.peek(0)) {
				fr.ip += offset
			}
		case compiler.LOOP:
			offset := readShort()
			fr.ip -= offset

		case compiler.CALL:
			argCount := int(readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
			fr = &vm.frames[vm.frameCount-1]

		case compiler.INVOKE:
			name := readString()
			argCount := int(readByte())
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
			fr = &vm.frames[vm.frameCount-1]

		case compiler.SUPER_INVOKE:
			name := readString()
			argCount := int(readByte())
			superclass := vm.pop().(*object.Class)
			if err := vm.invokeFromClass(superclass, name, argCount); err != nil {
				return err
			}
			fr = &vm.frames[vm.frameCount-1]

		case compiler.CLOSURE:
			fn := readConstant().(*object.Function)
			closure := vm.heap.NewClosure(fn)
			vm.push(closure)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(fr.slots + int(index))
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}

		case compiler.RETURN:
			result := vm.pop()
			vm.closeUpvalues(fr.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = fr.slots
			vm.push(result)
			fr = &vm.frames[vm.frameCount-1]

		case compiler.CLASS:
			vm.push(vm.heap.NewClass(readString()))

		case compiler.INHERIT:
			superclass, ok := vm.peek(1).(*object.Class)
			if !ok {
				return vm.runtimeError("superclass must be a class")
			}
			subclass := vm.pop().(*object.Class)
			superclass.Methods.CopyInto(subclass.Methods)

		case compiler.METHOD:
			name := readString()
			method := vm.pop().(*object.Closure)
			class := vm.peek(0).(*object.Class)
			class.Methods.Set(name, method)

		default:
			return vm.runtimeError("unknown opcode %d", op)
		}
	}
}

func (vm *VM) numericCompare(op compiler.Opcode) error {
	b, bok := vm.peek(0).(object.Number)
	a, aok := vm.peek(1).(object.Number)
	if !aok || !bok {
		return vm.runtimeError("operands must be numbers")
	}
	vm.pop()
	vm.pop()
	if op == compiler.GREATER {
		vm.push(object.Bool(a > b))
	} else {
		vm.push(object.Bool(a < b))
	}
	return nil
}

func (vm *VM) numericBinary(op compiler.Opcode) error {
	b, bok := vm.peek(0).(object.Number)
	a, aok := vm.peek(1).(object.Number)
	if !aok || !bok {
		return vm.runtimeError("operands must be numbers")
	}
	vm.pop()
	vm.pop()
	switch op {
	case compiler.SUBTRACT:
		vm.push(a - b)
	case compiler.MULTIPLY:
		vm.push(a * b)
	case compiler.DIVIDE:
		vm.push(a / b)
	}
	return nil
}

// add implements ADD's dual behavior, per spec.md §4.5: numeric addition,
// or string concatenation producing a freshly interned String.
func (vm *VM) add() error {
	bs, bIsStr := vm.peek(0).(*object.String)
	as, aIsStr := vm.peek(1).(*object.String)
	if aIsStr && bIsStr {
		vm.pop()
		vm.pop()
		vm.push(vm.heap.InternString(as.Chars + bs.Chars))
		return nil
	}

	bn, bok := vm.peek(0).(object.Number)
	an, aok := vm.peek(1).(object.Number)
	if aok && bok {
		vm.pop()
		vm.pop()
		vm.push(an + bn)
		return nil
	}

	return vm.runtimeError("operands must be two numbers or two strings")
}
