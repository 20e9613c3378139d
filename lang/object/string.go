package object

import "strconv"

// String is an interned, immutable sequence of bytes. Two Strings with
// equal content are always the same *String (see Heap.InternString), so
// string equality is reference equality, per spec.md §3's invariant.
type String struct {
	header
	Chars string
	Hash  uint32
}

func (s *String) String() string { return s.Chars }
func (s *String) Type() string   { return "string" }
func (s *String) trace(func(Value)) {}

// GoString returns a quoted form suitable for diagnostics.
func (s *String) GoString() string { return strconv.Quote(s.Chars) }

// hashString computes the 32-bit FNV-1a hash used by the interning table,
// per spec.md §3 and §4.7.
func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
