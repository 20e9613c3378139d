package object

// growFactor is the heap-growth policy from spec.md §4.6: after a
// collection, the next collection triggers once bytesAllocated exceeds
// bytesAllocated-at-last-sweep times this factor.
const growFactor = 2

// RootProvider is implemented by anything the GC must treat as a source of
// roots: the VM (its stack, frames, open upvalues, globals) and, while a
// function is being compiled, the active compiler chain — spec.md §4.6's
// "mark_compiler_roots" hook.
type RootProvider interface {
	MarkRoots(mark func(Value))
}

// Heap owns every object allocation, the string-interning table, and the
// tri-color mark-sweep collector described in spec.md §4.6. The compiler
// and the VM both allocate through the same Heap so that a collection
// triggered mid-compile still sees the objects the compiler is holding.
type Heap struct {
	objects Obj // head of the intrusive allocation list

	strings *Table // weak: entries are purged of unmarked keys before sweep

	bytesAllocated int64
	nextGC         int64

	// GrowFactor overrides growFactor when non-zero, mainly for tests that
	// want to force frequent collections.
	GrowFactor int64
	// Stress, when true, runs a full collection on every single allocation
	// (spec.md §4.6's debug "stress" mode), driven by LOXVM_GC_STRESS.
	Stress bool
	// OnCollect, if set, is called after every completed collection with the
	// number of bytes freed; used for GC logging.
	OnCollect func(freed int64, bytesAllocated int64)

	roots     []RootProvider
	grayStack []Obj
}

// NewHeap returns an empty Heap ready to allocate.
func NewHeap() *Heap {
	return &Heap{
		strings: NewTable(),
		nextGC:  1 << 20, // 1 MiB, an arbitrary but generous initial threshold
	}
}

// Register adds rp as a GC root source. The VM registers itself once;
// the compiler pushes/pops each nested function compiler as it enters and
// leaves it, so that a GC mid-compile sees only the still-active chain.
func (h *Heap) Register(rp RootProvider) {
	h.roots = append(h.roots, rp)
}

// Unregister removes rp, added by Register, from the root set.
func (h *Heap) Unregister(rp RootProvider) {
	for i, r := range h.roots {
		if r == rp {
			h.roots = append(h.roots[:i], h.roots[i+1:]...)
			return
		}
	}
}

// Strings exposes the interning table, e.g. for diagnostics and tests.
func (h *Heap) Strings() *Table { return h.strings }

// BytesAllocated returns the current GC byte accounting, for diagnostics.
func (h *Heap) BytesAllocated() int64 { return h.bytesAllocated }

// InternString returns the canonical *String for s, allocating and
// registering a new one only if an equal string is not already interned.
// This is the single entry point that guarantees spec.md §3's "a String
// occurs at most once in the interning table" invariant.
func (h *Heap) InternString(s string) *String {
	hash := hashString(s)
	if existing := h.strings.FindString(s, hash); existing != nil {
		return existing
	}
	str := &String{Chars: s, Hash: hash}
	h.link(str, len(s))
	h.strings.Set(str, NilValue)
	return str
}

// NewFunction allocates an uninitialized Function object; callers fill in
// its fields before it becomes reachable from a root.
func (h *Heap) NewFunction() *Function {
	fn := &Function{Chunk: &Chunk{}}
	h.link(fn, 64)
	return fn
}

// NewNative allocates a Native wrapping fn.
func (h *Heap) NewNative(name string, arity int, fn func(args []Value) (Value, error)) *Native {
	n := &Native{NameStr: name, Arity: arity, Fn: fn}
	h.link(n, 32)
	return n
}

// NewClosure allocates a Closure over function with slots for its
// upvalues already sized.
func (h *Heap) NewClosure(function *Function) *Closure {
	c := &Closure{Function: function, Upvalues: make([]*Upvalue, function.UpvalueCount)}
	h.link(c, 16+8*function.UpvalueCount)
	return c
}

// NewUpvalue allocates an open Upvalue pointing at location.
func (h *Heap) NewUpvalue(location *Value) *Upvalue {
	uv := &Upvalue{Location: location}
	h.link(uv, 24)
	return uv
}

// NewClass allocates a Class with an empty method table.
func (h *Heap) NewClass(name *String) *Class {
	c := &Class{Name: name, Methods: NewTable()}
	h.link(c, 32)
	return c
}

// NewInstance allocates an Instance of class with an empty field table.
func (h *Heap) NewInstance(class *Class) *Instance {
	i := &Instance{Class: class, Fields: NewTable()}
	h.link(i, 32)
	return i
}

// NewBoundMethod allocates a BoundMethod pairing receiver with method.
func (h *Heap) NewBoundMethod(receiver Value, method *Closure) *BoundMethod {
	b := &BoundMethod{Receiver: receiver, Method: method}
	h.link(b, 24)
	return b
}

// link adds obj to the allocation list and accounts for its approximate
// size, running a collection if warranted. If a collection does run, obj
// is pinned onto the gray worklist first (not merely marked) so that a
// cycle triggered by this very allocation cannot sweep it, or anything it
// already references, before it is reachable from any real root — the
// same problem clox avoids by briefly pushing the new value on the VM
// stack. The pin is not permanent: Collect's sweep phase resets every
// surviving mark (pinned or genuinely traced) back to white, so a later,
// independent collection still evaluates obj's reachability honestly,
// satisfying spec.md §8's "an unreachable object is freed by the next
// full GC".
func (h *Heap) link(obj Obj, size int) {
	obj.objHeader().next = h.objects
	h.objects = obj
	h.bytesAllocated += int64(size)

	if h.Stress || h.bytesAllocated > h.nextGC {
		h.mark(obj)
		h.Collect()
	}
}

// Collect runs one full tri-color mark-sweep cycle: mark every object
// reachable from a registered root, purge unmarked keys from the
// (weak) string table, sweep unreached objects from the allocation list,
// and grow the next trigger threshold, per spec.md §4.6.
func (h *Heap) Collect() {
	before := h.bytesAllocated

	for _, rp := range h.roots {
		rp.MarkRoots(h.mark)
	}
	h.traceGrayStack()

	h.strings.RemoveUnmarked()

	h.sweep()

	factor := h.GrowFactor
	if factor == 0 {
		factor = growFactor
	}
	h.nextGC = h.bytesAllocated * factor
	if h.nextGC < (1 << 16) {
		h.nextGC = 1 << 16
	}

	if h.OnCollect != nil {
		h.OnCollect(before-h.bytesAllocated, h.bytesAllocated)
	}
}

// mark pushes v's object onto the gray worklist if it is a heap object
// that is not already marked. Non-object values (nil, bool, number) need
// no tracing.
func (h *Heap) mark(v Value) {
	obj, ok := v.(Obj)
	if !ok || obj == nil {
		return
	}
	hdr := obj.objHeader()
	if hdr.marked {
		return
	}
	hdr.marked = true
	h.grayStack = append(h.grayStack, obj)
}

// traceGrayStack blackens every gray object by tracing the values it
// directly references, which may turn more objects gray, until the
// worklist is empty.
func (h *Heap) traceGrayStack() {
	for len(h.grayStack) > 0 {
		n := len(h.grayStack) - 1
		obj := h.grayStack[n]
		h.grayStack = h.grayStack[:n]
		obj.trace(h.mark)
	}
}

// sweep unlinks and drops every unmarked object from the allocation list,
// and resets the mark bit of every survivor back to white for the next
// cycle.
func (h *Heap) sweep() {
	var prev Obj
	cur := h.objects
	for cur != nil {
		hdr := cur.objHeader()
		if hdr.marked {
			hdr.marked = false
			prev = cur
			cur = hdr.next
			continue
		}

		unreached := cur
		cur = hdr.next
		if prev == nil {
			h.objects = cur
		} else {
			prev.objHeader().next = cur
		}
		h.bytesAllocated -= sizeOf(unreached)
	}
}

// sizeOf returns the approximate accounted size of obj, mirroring the
// size estimate used when it was allocated via link.
func sizeOf(obj Obj) int64 {
	switch o := obj.(type) {
	case *String:
		return int64(len(o.Chars))
	case *Function:
		return 64
	case *Native:
		return 32
	case *Closure:
		return int64(16 + 8*len(o.Upvalues))
	case *Upvalue:
		return 24
	case *Class:
		return 32
	case *Instance:
		return 32
	case *BoundMethod:
		return 24
	default:
		return 0
	}
}
