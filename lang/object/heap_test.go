package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/loxvm/lang/object"
)

// rootSet is a minimal object.RootProvider for tests: it marks exactly the
// values it was given.
type rootSet struct {
	roots []object.Value
}

func (r *rootSet) MarkRoots(mark func(object.Value)) {
	for _, v := range r.roots {
		mark(v)
	}
}

func TestCollectFreesUnreachableObjects(t *testing.T) {
	hp := object.NewHeap()

	kept := hp.InternString("kept")
	roots := &rootSet{roots: []object.Value{kept}}
	hp.Register(roots)

	// Allocate a string that nothing roots.
	hp.InternString("garbage")

	before := hp.BytesAllocated()
	hp.Collect()
	after := hp.BytesAllocated()

	assert.Less(t, after, before, "collecting an unrooted string frees its bytes")

	// The rooted string must still be interned and readable.
	again := hp.InternString("kept")
	assert.Same(t, kept, again)
}

func TestClosureTraceKeepsUpvalueTargetAlive(t *testing.T) {
	hp := object.NewHeap()

	fn := hp.NewFunction()
	fn.UpvalueCount = 1
	closure := hp.NewClosure(fn)

	captured := hp.InternString("captured-value")
	var slot object.Value = captured
	closure.Upvalues[0] = hp.NewUpvalue(&slot)

	roots := &rootSet{roots: []object.Value{closure}}
	hp.Register(roots)

	hp.Collect()

	// captured is reachable only via closure -> upvalue -> *slot, so a
	// correct tracer must keep its entry in the intern table alive: a fresh
	// InternString for the same content must return the very same object.
	again := hp.InternString("captured-value")
	assert.Same(t, captured, again)
}

func TestInstanceFieldsSurviveCollectionWhileRooted(t *testing.T) {
	hp := object.NewHeap()

	class := hp.NewClass(hp.InternString("Point"))
	instance := hp.NewInstance(class)
	instance.Fields.Set(hp.InternString("x"), object.Number(3))

	roots := &rootSet{roots: []object.Value{instance}}
	hp.Register(roots)

	hp.Collect()

	v, ok := instance.Fields.Get(hp.InternString("x"))
	require.True(t, ok)
	assert.Equal(t, object.Number(3), v)
}

func TestUnregisterStopsRooting(t *testing.T) {
	hp := object.NewHeap()
	roots := &rootSet{roots: []object.Value{hp.InternString("temporary")}}
	hp.Register(roots)
	hp.Unregister(roots)

	hp.Collect()

	// Nothing roots "temporary" content anymore, a fresh intern must
	// allocate a new object rather than somehow resurrecting the old one's
	// identity (we only assert it doesn't panic and still works).
	s := hp.InternString("temporary")
	assert.Equal(t, "temporary", s.Chars)
}
