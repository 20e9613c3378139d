package compiler

// beginScope/endScope bracket a block, per spec.md §4.2's lexical scoping.
func (c *compiler) beginScope() { c.scopeDepth++ }

// endScope pops every local declared at the scope being left. A local that
// was captured by a closure is closed on the VM's stack instead of merely
// popped, per spec.md §4.3's upvalue-closing rule.
func (c *compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		if c.locals[len(c.locals)-1].isCaptured {
			c.emitOp(CLOSE_UPVALUE)
		} else {
			c.emitOp(POP)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// declareVariable registers the identifier just consumed (p.previous) as a
// new local in the current scope, or does nothing at global scope where
// variables are looked up by name instead of by slot.
func (c *compiler) declareVariable(name string) {
	if c.scopeDepth == 0 {
		return
	}

	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.p.error("already a variable with this name in this scope")
		}
	}

	c.addLocal(name)
}

func (c *compiler) addLocal(name string) {
	if len(c.locals) >= maxLocals {
		c.p.error("too many local variables in function")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

// markInitialized records that the most recently declared local's
// initializer has now run, making it visible to subsequent reads. Called
// for globals too (at depth 0, where it is a no-op) so callers don't need
// to special-case scope depth.
func (c *compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal returns the stack slot of the nearest-declared local named
// name in c, or -1 if there is none.
func (c *compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.p.error("can't read local variable in its own initializer")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue finds name in an enclosing function, adding an upvalue
// entry to every compiler between c and the one that owns it, or returns
// -1 if name is not a local anywhere in the enclosing chain (so the
// caller should fall back to treating it as a global).
func (c *compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}

	if slot := c.enclosing.resolveLocal(name); slot != -1 {
		c.enclosing.locals[slot].isCaptured = true
		return c.addUpvalue(uint8(slot), true)
	}

	if up := c.enclosing.resolveUpvalue(name); up != -1 {
		return c.addUpvalue(uint8(up), false)
	}

	return -1
}

// addUpvalue records (or dedups) an upvalue referencing either enclosing
// local slot index (isLocal) or enclosing upvalue index index, and returns
// its index within c's own upvalue list.
func (c *compiler) addUpvalue(index uint8, isLocal bool) int {
	for i, up := range c.upvalues {
		if up.index == index && up.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= maxUpvalues {
		c.p.error("too many closure variables in function")
		return 0
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	c.function.UpvalueCount = len(c.upvalues)
	return len(c.upvalues) - 1
}
