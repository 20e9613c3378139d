// Package object implements the tagged value representation, the heap
// object model, the bytecode Chunk, the string-interning hash table, and
// the tracing garbage collector described in spec.md §3, §4.3, §4.6 and
// §4.7. It has no dependency on the compiler or the VM so that both can
// depend on it without creating an import cycle.
package object

import "fmt"

// Value is any value the machine can push on its operand stack: nil, a
// bool, a number, or a reference to a heap Obj.
type Value interface {
	// String returns a human-readable representation, used by `print` and
	// error messages.
	String() string
	// Type returns a short, stable name for the value's type, e.g. "number".
	Type() string
}

// Nil is the unique value of nil type.
type Nil struct{}

// NilValue is the single instance of Nil; nil equals nil by identity since
// every nil literal evaluates to this same value.
var NilValue = Nil{}

func (Nil) String() string { return "nil" }
func (Nil) Type() string   { return "nil" }

// Bool is a boolean value.
type Bool bool

const (
	True  = Bool(true)
	False = Bool(false)
)

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Type() string { return "bool" }

// Number is a 64-bit IEEE-754 floating point value, the language's only
// numeric type.
type Number float64

func (n Number) String() string { return formatNumber(float64(n)) }
func (Number) Type() string     { return "number" }

func formatNumber(f float64) string {
	// %g would print "1e+06" for 1000000; the book's number formatting keeps
	// integral floats free of a trailing ".0" suffix but never uses
	// scientific notation for ordinary program output.
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// Truth reports the truthiness of v: nil and false are falsey, everything
// else (including 0 and "") is truthy.
func Truth(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal implements the value-equality rules from spec.md §3: nil equals
// nil, booleans compare by value, numbers by IEEE equality (so NaN != NaN),
// and objects by reference identity — which is correct for strings too,
// since they are interned.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Number:
		nb, ok := b.(Number)
		return ok && a == nb
	default:
		return a == b
	}
}
