package object

// maxLoad is the load factor that triggers growth, per spec.md §4.7.
const maxLoad = 0.75

// entry is one slot of a Table. An empty slot has a nil key. A deleted
// slot (a "tombstone", so that probe chains past it are not broken) has a
// nil key and a non-nil value holding tombstoneMarker.
type entry struct {
	key   *String
	value Value
}

var tombstoneMarker Value = Bool(true)

func (e entry) isEmpty() bool     { return e.key == nil && e.value == nil }
func (e entry) isTombstone() bool { return e.key == nil && e.value != nil }

// Table is an open-addressed hash table keyed by interned strings, using
// linear probing and tombstones on delete, per spec.md §4.7. It backs both
// the VM's globals and, via the Heap, the string-interning table itself.
type Table struct {
	count   int // live entries + tombstones
	entries []entry
}

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{} }

// Get returns the value associated with key, if present.
func (t *Table) Get(key *String) (Value, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	e := t.find(key)
	if e.key == nil {
		return nil, false
	}
	return e.value, true
}

// Set associates key with value, growing the table if needed. It reports
// whether key was not already present.
func (t *Table) Set(key *String, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	idx := t.findIndex(key)
	e := &t.entries[idx]
	isNew := e.key == nil
	if isNew && e.value == nil {
		// only a genuinely empty slot (not a reused tombstone) grows the count
		t.count++
	}
	e.key = key
	e.value = value
	return isNew
}

// Delete removes key from the table, leaving a tombstone behind so that
// probe sequences through this slot remain intact.
func (t *Table) Delete(key *String) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := t.findIndex(key)
	e := &t.entries[idx]
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = tombstoneMarker
	return true
}

// FindString looks up an interned string with the given content and hash
// without allocating, used by the compiler and Heap to dedupe strings
// before allocating a new one.
func (t *Table) FindString(chars string, hash uint32) *String {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	idx := hash & mask
	for {
		e := &t.entries[idx]
		if e.isEmpty() {
			return nil
		}
		if e.key != nil && e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		idx = (idx + 1) & mask
	}
}

// CopyInto copies every live entry of t into dst, used by the VM's
// INHERIT handling to seed a subclass's method table from its superclass.
func (t *Table) CopyInto(dst *Table) {
	for _, e := range t.entries {
		if e.key != nil {
			dst.Set(e.key, e.value)
		}
	}
}

// RemoveUnmarked purges entries whose key is not marked, implementing the
// GC's "string table is a weak map" rule from spec.md §4.6: it must run
// between mark and sweep so dead strings can be collected without
// resurrecting them.
func (t *Table) RemoveUnmarked() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && !isMarked(e.key) {
			e.key = nil
			e.value = tombstoneMarker
		}
	}
}

// TraceRoots marks every live key and value in t, exported so VM globals
// (a Table reachable only from the VM, not from another Obj) can be
// marked directly as GC roots.
func (t *Table) TraceRoots(mark func(Value)) { t.trace(mark) }

func (t *Table) trace(mark func(Value)) {
	for _, e := range t.entries {
		if e.key != nil {
			mark(e.key)
			mark(e.value)
		}
	}
}

func (t *Table) find(key *String) entry {
	idx := t.findIndex(key)
	return t.entries[idx]
}

// findIndex returns the slot key belongs in: either an existing entry with
// that key, or the first empty-or-tombstone slot found while probing
// (preferring the first tombstone seen, as clox does, so reused slots
// don't grow probe chains unnecessarily).
func (t *Table) findIndex(key *String) int {
	mask := uint32(len(t.entries) - 1)
	idx := key.Hash & mask
	var tombstone int = -1
	for {
		e := &t.entries[idx]
		if e.key == nil {
			if e.value == nil {
				// empty slot
				if tombstone != -1 {
					return tombstone
				}
				return int(idx)
			}
			if tombstone == -1 {
				tombstone = int(idx)
			}
		} else if e.key == key {
			return int(idx)
		}
		idx = (idx + 1) & mask
	}
}

func (t *Table) adjustCapacity(newCap int) {
	newEntries := make([]entry, newCap)
	newCount := 0
	mask := uint32(newCap - 1)
	for _, e := range t.entries {
		if e.key == nil {
			continue
		}
		idx := e.key.Hash & mask
		for newEntries[idx].key != nil {
			idx = (idx + 1) & mask
		}
		newEntries[idx] = e
		newCount++
	}
	t.entries = newEntries
	t.count = newCount
}

func growCapacity(cap int) int {
	if cap < 8 {
		return 8
	}
	return cap * 2
}
