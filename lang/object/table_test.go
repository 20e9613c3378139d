package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/loxvm/lang/object"
)

func TestTableSetGetDelete(t *testing.T) {
	tbl := object.NewTable()
	hp := object.NewHeap()
	key := hp.InternString("greeting")

	_, ok := tbl.Get(key)
	assert.False(t, ok)

	assert.True(t, tbl.Set(key, object.Number(1)))
	assert.False(t, tbl.Set(key, object.Number(2)), "re-setting an existing key is not new")

	v, ok := tbl.Get(key)
	require.True(t, ok)
	assert.Equal(t, object.Number(2), v)

	assert.True(t, tbl.Delete(key))
	_, ok = tbl.Get(key)
	assert.False(t, ok, "deleted key reads back as absent")

	assert.True(t, tbl.Set(key, object.Number(3)), "probing past a tombstone still finds a fresh slot")
	v, ok = tbl.Get(key)
	require.True(t, ok)
	assert.Equal(t, object.Number(3), v)
}

func TestTableGrowsPastLoadFactor(t *testing.T) {
	tbl := object.NewTable()
	hp := object.NewHeap()

	for i := 0; i < 200; i++ {
		key := hp.InternString(string(rune('a' + i%26)) + string(rune('0'+i%10)) + string(rune(i)))
		tbl.Set(key, object.Number(float64(i)))
	}

	for i := 0; i < 200; i++ {
		key := hp.InternString(string(rune('a' + i%26)) + string(rune('0'+i%10)) + string(rune(i)))
		v, ok := tbl.Get(key)
		require.True(t, ok)
		assert.Equal(t, object.Number(float64(i)), v)
	}
}

func TestFindStringDedupesWithoutAllocatingAKey(t *testing.T) {
	hp := object.NewHeap()
	s1 := hp.InternString("hello")
	s2 := hp.InternString("hello")
	assert.Same(t, s1, s2, "interning the same content twice returns the same *String")

	found := hp.Strings().FindString("hello", s1.Hash)
	assert.Same(t, s1, found)
}

func TestCopyIntoSeedsSubclassMethodTable(t *testing.T) {
	hp := object.NewHeap()
	super := object.NewTable()
	sub := object.NewTable()

	name := hp.InternString("greet")
	super.Set(name, object.True)

	super.CopyInto(sub)
	v, ok := sub.Get(name)
	require.True(t, ok)
	assert.Equal(t, object.True, v)
}
