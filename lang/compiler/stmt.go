package compiler

import (
	"github.com/loxlang/loxvm/lang/object"
	"github.com/loxlang/loxvm/lang/token"
)

// declaration parses one top-level-or-block item: a var/fun/class
// declaration, or a plain statement. On error it resynchronizes at the
// next statement boundary so one mistake reports once, per spec.md §7.
func (c *compiler) declaration() {
	switch {
	case c.p.match(token.CLASS):
		c.classDeclaration()
	case c.p.match(token.FUN):
		c.funDeclaration()
	case c.p.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}

	if c.p.panicMode {
		c.p.synchronize()
	}
}

func (c *compiler) statement() {
	switch {
	case c.p.match(token.PRINT):
		c.printStatement()
	case c.p.match(token.IF):
		c.ifStatement()
	case c.p.match(token.WHILE):
		c.whileStatement()
	case c.p.match(token.FOR):
		c.forStatement()
	case c.p.match(token.RETURN):
		c.returnStatement()
	case c.p.match(token.LEFT_BRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *compiler) block() {
	for !c.p.check(token.RIGHT_BRACE) && !c.p.check(token.EOF) {
		c.declaration()
	}
	c.p.consume(token.RIGHT_BRACE, "expect '}' after block")
}

func (c *compiler) printStatement() {
	c.expression()
	c.p.consume(token.SEMICOLON, "expect ';' after value")
	c.emitOp(PRINT)
}

func (c *compiler) expressionStatement() {
	c.expression()
	c.p.consume(token.SEMICOLON, "expect ';' after expression")
	c.emitOp(POP)
}

func (c *compiler) ifStatement() {
	c.p.consume(token.LEFT_PAREN, "expect '(' after 'if'")
	c.expression()
	c.p.consume(token.RIGHT_PAREN, "expect ')' after condition")

	thenJump := c.emitJump(JUMP_IF_FALSE)
	c.emitOp(POP)
	c.statement()

	elseJump := c.emitJump(JUMP)
	c.patchJump(thenJump)
	c.emitOp(POP)

	if c.p.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.p.consume(token.LEFT_PAREN, "expect '(' after 'while'")
	c.expression()
	c.p.consume(token.RIGHT_PAREN, "expect ')' after condition")

	exitJump := c.emitJump(JUMP_IF_FALSE)
	c.emitOp(POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(POP)
}

// forStatement desugars to a while loop exactly as spec.md §4.2 prescribes:
// the initializer (if any) runs once in its own scope, the condition
// (default true) gates the loop, and the increment (if any) runs after the
// body but before the condition is re-tested.
func (c *compiler) forStatement() {
	c.beginScope()
	c.p.consume(token.LEFT_PAREN, "expect '(' after 'for'")

	switch {
	case c.p.match(token.SEMICOLON):
		// no initializer
	case c.p.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.p.match(token.SEMICOLON) {
		c.expression()
		c.p.consume(token.SEMICOLON, "expect ';' after loop condition")
		exitJump = c.emitJump(JUMP_IF_FALSE)
		c.emitOp(POP)
	}

	if !c.p.match(token.RIGHT_PAREN) {
		bodyJump := c.emitJump(JUMP)

		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(POP)
		c.p.consume(token.RIGHT_PAREN, "expect ')' after for clauses")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(POP)
	}
	c.endScope()
}

func (c *compiler) returnStatement() {
	if c.kind == object.KindScript {
		c.p.error("can't return from top-level code")
	}

	if c.p.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}

	if c.kind == object.KindInitializer {
		c.p.error("can't return a value from an initializer")
	}

	c.expression()
	c.p.consume(token.SEMICOLON, "expect ';' after return value")
	c.emitOp(RETURN)
}

func (c *compiler) varDeclaration() {
	global := c.parseVariable("expect variable name")

	if c.p.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(NIL)
	}
	c.p.consume(token.SEMICOLON, "expect ';' after variable declaration")

	c.defineVariable(global)
}

// parseVariable consumes an identifier, declares it as a local if we are
// inside a scope, and returns the constant-pool index to use with
// DEFINE_GLOBAL if we are not (the return value is unused, but harmless,
// for a local declaration).
func (c *compiler) parseVariable(errMsg string) byte {
	c.p.consume(token.IDENT, errMsg)

	name := c.p.lexeme(c.p.previous)
	c.declareVariable(name)
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(DEFINE_GLOBAL, global)
}

func (c *compiler) funDeclaration() {
	global := c.parseVariable("expect function name")
	c.markInitialized()
	c.compileFunction(object.KindFunction, c.p.lexeme(c.p.previous))
	c.defineVariable(global)
}

// compileFunction compiles one function body (its name already consumed by
// the caller; compileFunction itself consumes "(" through "}") as a nested
// compiler, emits a CLOSURE instruction for it in c's chunk, and emits its
// per-upvalue capture descriptors as CLOSURE's variable-length operand,
// per spec.md §4.3.
func (c *compiler) compileFunction(kind object.FunctionKind, name string) {
	fc := newCompiler(c.p, c, kind, name)
	defer c.p.hp.Unregister(fc)

	fc.beginScope()
	c.p.consume(token.LEFT_PAREN, "expect '(' after function name")
	if !c.p.check(token.RIGHT_PAREN) {
		for {
			fc.function.Arity++
			if fc.function.Arity > 255 {
				c.p.errorAtCurrent("can't have more than 255 parameters")
			}
			paramConst := fc.parseVariable("expect parameter name")
			fc.defineVariable(paramConst)
			if !c.p.match(token.COMMA) {
				break
			}
		}
	}
	c.p.consume(token.RIGHT_PAREN, "expect ')' after parameters")
	c.p.consume(token.LEFT_BRACE, "expect '{' before function body")
	fc.block()

	fn := fc.endCompiler()

	c.emitBytes(CLOSURE, c.makeConstant(fn))
	for _, up := range fc.upvalues {
		if up.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(up.index)
	}
}

func (c *compiler) classDeclaration() {
	c.p.consume(token.IDENT, "expect class name")
	nameTok := c.p.previous
	className := c.p.lexeme(nameTok)
	nameConstant := c.identifierConstant(className)
	c.declareVariable(className)

	c.emitBytes(CLASS, nameConstant)
	c.defineVariable(nameConstant)

	cs := &classState{enclosing: c.p.class}
	c.p.class = cs

	if c.p.match(token.LESS) {
		c.p.consume(token.IDENT, "expect superclass name")
		c.variable(false) // pushes the superclass

		if className == c.p.lexeme(c.p.previous) {
			c.p.error("a class can't inherit from itself")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)

		c.variableNamed(className, false) // pushes the subclass
		c.emitOp(INHERIT)
		cs.hasSuperclass = true
	}

	c.variableNamed(className, false) // leave the class on the stack for METHOD
	c.p.consume(token.LEFT_BRACE, "expect '{' before class body")
	for !c.p.check(token.RIGHT_BRACE) && !c.p.check(token.EOF) {
		c.method()
	}
	c.p.consume(token.RIGHT_BRACE, "expect '}' after class body")
	c.emitOp(POP) // the class itself

	if cs.hasSuperclass {
		c.endScope()
	}
	c.p.class = cs.enclosing
}

func (c *compiler) method() {
	c.p.consume(token.IDENT, "expect method name")
	name := c.p.lexeme(c.p.previous)
	nameConstant := c.identifierConstant(name)

	kind := object.KindMethod
	if name == "init" {
		kind = object.KindInitializer
	}
	c.compileFunction(kind, name)
	c.emitBytes(METHOD, nameConstant)
}
