package object

// header is embedded in every heap object. It carries the tri-color mark
// bit and the intrusive next-pointer that threads every live allocation
// through the Heap's allocation list, per spec.md §3 "Heap objects share a
// common header".
type header struct {
	marked bool
	next   Obj
}

// Obj is implemented by every heap-allocated value: strings, functions,
// natives, closures, upvalues, classes, instances and bound methods. The
// Heap's mark-sweep collector only ever walks objects through this
// interface.
type Obj interface {
	Value
	objHeader() *header
	// trace invokes mark for every Value directly reachable from this
	// object, turning it from gray to black during the GC mark phase.
	trace(mark func(Value))
}

func (h *header) objHeader() *header { return h }

func isMarked(o Obj) bool { return o.objHeader().marked }
