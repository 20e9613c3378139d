package object

import "fmt"

// Class is a runtime class: its name and its method table (name ->
// *Closure), populated by METHOD opcodes and, for a subclass, seeded by
// copying the superclass's table on INHERIT (spec.md §4.2, §4.5).
type Class struct {
	header
	Name    *String
	Methods *Table
}

func (c *Class) String() string { return c.Name.Chars }
func (c *Class) Type() string   { return "class" }
func (c *Class) trace(mark func(Value)) {
	mark(c.Name)
	c.Methods.trace(mark)
}

// Instance is an instance of a Class with its own field table.
type Instance struct {
	header
	Class  *Class
	Fields *Table
}

func (i *Instance) String() string { return fmt.Sprintf("%s instance", i.Class.Name.Chars) }
func (i *Instance) Type() string   { return "instance" }
func (i *Instance) trace(mark func(Value)) {
	mark(i.Class)
	i.Fields.trace(mark)
}

// BoundMethod pairs a receiver with the Closure to invoke on it, produced
// when a method is read off an instance but not immediately called
// (spec.md §4.5 CALL dispatch).
type BoundMethod struct {
	header
	Receiver Value
	Method   *Closure
}

func (b *BoundMethod) String() string { return b.Method.String() }
func (b *BoundMethod) Type() string   { return "bound method" }
func (b *BoundMethod) trace(mark func(Value)) {
	mark(b.Receiver)
	mark(b.Method)
}
