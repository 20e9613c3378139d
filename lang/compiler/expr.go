package compiler

import (
	"strconv"

	"github.com/loxlang/loxvm/lang/object"
	"github.com/loxlang/loxvm/lang/token"
)

func (c *compiler) expression() {
	c.parsePrecedence(PREC_ASSIGNMENT)
}

// parsePrecedence is the core Pratt loop, per spec.md §4.2: consume a
// prefix expression, then keep consuming infix operators whose precedence
// is at least minPrec.
func (c *compiler) parsePrecedence(minPrec precedence) {
	c.p.advance()
	prefixRule := getRule(c.p.previous.Kind).prefix
	if prefixRule == nil {
		c.p.error("expect expression")
		return
	}

	canAssign := minPrec <= PREC_ASSIGNMENT
	prefixRule(c, canAssign)

	for minPrec <= getRule(c.p.current.Kind).prec {
		c.p.advance()
		infixRule := getRule(c.p.previous.Kind).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.p.match(token.EQUAL) {
		c.p.error("invalid assignment target")
	}
}

func (c *compiler) grouping(_ bool) {
	c.expression()
	c.p.consume(token.RIGHT_PAREN, "expect ')' after expression")
}

func (c *compiler) number(_ bool) {
	lexeme := c.p.lexeme(c.p.previous)
	v, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		c.p.error("invalid number literal")
		return
	}
	c.emitConstant(object.Number(v))
}

func (c *compiler) string(_ bool) {
	t := c.p.previous
	// Lexeme spans the surrounding quotes; trim them.
	raw := t.Lexeme(c.p.src)
	s := raw[1 : len(raw)-1]
	c.emitConstant(c.p.hp.InternString(s))
}

func (c *compiler) literal(_ bool) {
	switch c.p.previous.Kind {
	case token.FALSE:
		c.emitOp(FALSE)
	case token.TRUE:
		c.emitOp(TRUE)
	case token.NIL:
		c.emitOp(NIL)
	}
}

func (c *compiler) unary(_ bool) {
	kind := c.p.previous.Kind
	c.parsePrecedence(PREC_UNARY)

	switch kind {
	case token.BANG:
		c.emitOp(NOT)
	case token.MINUS:
		c.emitOp(NEGATE)
	}
}

func (c *compiler) binary(_ bool) {
	kind := c.p.previous.Kind
	r := getRule(kind)
	c.parsePrecedence(r.prec + 1)

	switch kind {
	case token.BANG_EQUAL:
		c.emitOp(EQUAL)
		c.emitOp(NOT)
	case token.EQUAL_EQUAL:
		c.emitOp(EQUAL)
	case token.GREATER:
		c.emitOp(GREATER)
	case token.GREATER_EQUAL:
		c.emitOp(LESS)
		c.emitOp(NOT)
	case token.LESS:
		c.emitOp(LESS)
	case token.LESS_EQUAL:
		c.emitOp(GREATER)
		c.emitOp(NOT)
	case token.PLUS:
		c.emitOp(ADD)
	case token.MINUS:
		c.emitOp(SUBTRACT)
	case token.STAR:
		c.emitOp(MULTIPLY)
	case token.SLASH:
		c.emitOp(DIVIDE)
	}
}

// and_ short-circuits: if the left operand is falsey, skip the right
// operand and leave it on the stack as the result.
func (c *compiler) and_(_ bool) {
	endJump := c.emitJump(JUMP_IF_FALSE)
	c.emitOp(POP)
	c.parsePrecedence(PREC_AND)
	c.patchJump(endJump)
}

// or_ short-circuits the opposite way: if the left operand is truthy,
// skip the right operand.
func (c *compiler) or_(_ bool) {
	elseJump := c.emitJump(JUMP_IF_FALSE)
	endJump := c.emitJump(JUMP)

	c.patchJump(elseJump)
	c.emitOp(POP)

	c.parsePrecedence(PREC_OR)
	c.patchJump(endJump)
}

func (c *compiler) call(_ bool) {
	argc := c.argumentList()
	c.emitBytes(CALL, argc)
}

// argumentList parses a parenthesized, comma-separated argument list whose
// opening '(' has already been consumed, per spec.md §4.2's call-arity
// limit.
func (c *compiler) argumentList() byte {
	var argc int
	if !c.p.check(token.RIGHT_PAREN) {
		for {
			c.expression()
			if argc == 255 {
				c.p.error("can't have more than 255 arguments")
			}
			argc++
			if !c.p.match(token.COMMA) {
				break
			}
		}
	}
	c.p.consume(token.RIGHT_PAREN, "expect ')' after arguments")
	return byte(argc)
}

func (c *compiler) dot(canAssign bool) {
	c.p.consume(token.IDENT, "expect property name after '.'")
	name := c.identifierConstant(c.p.lexeme(c.p.previous))

	switch {
	case canAssign && c.p.match(token.EQUAL):
		c.expression()
		c.emitBytes(SET_PROPERTY, name)
	case c.p.match(token.LEFT_PAREN):
		argc := c.argumentList()
		c.emitBytes(INVOKE, name)
		c.emitByte(argc)
	default:
		c.emitBytes(GET_PROPERTY, name)
	}
}

func (c *compiler) this(_ bool) {
	if c.p.class == nil {
		c.p.error("can't use 'this' outside of a class")
		return
	}
	// `this` behaves exactly like reading a local/upvalue named "this".
	c.variableNamed("this", false)
}

func (c *compiler) super(_ bool) {
	switch {
	case c.p.class == nil:
		c.p.error("can't use 'super' outside of a class")
	case !c.p.class.hasSuperclass:
		c.p.error("can't use 'super' in a class with no superclass")
	}

	c.p.consume(token.DOT, "expect '.' after 'super'")
	c.p.consume(token.IDENT, "expect superclass method name")
	name := c.identifierConstant(c.p.lexeme(c.p.previous))

	c.variableNamed("this", false)
	if c.p.match(token.LEFT_PAREN) {
		argc := c.argumentList()
		c.variableNamed("super", false)
		c.emitBytes(SUPER_INVOKE, name)
		c.emitByte(argc)
	} else {
		c.variableNamed("super", false)
		c.emitBytes(GET_SUPER, name)
	}
}

func (c *compiler) variable(canAssign bool) {
	c.variableNamed(c.p.lexeme(c.p.previous), canAssign)
}

// variableNamed emits the load (or, if canAssign and '=' follows, store)
// sequence for name, resolving it as a local, an upvalue, or else a global
// by name, per spec.md §4.2/§4.3.
func (c *compiler) variableNamed(name string, canAssign bool) {
	var getOp, setOp Opcode
	var arg byte

	if slot := c.resolveLocal(name); slot != -1 {
		getOp, setOp, arg = GET_LOCAL, SET_LOCAL, byte(slot)
	} else if up := c.resolveUpvalue(name); up != -1 {
		getOp, setOp, arg = GET_UPVALUE, SET_UPVALUE, byte(up)
	} else {
		getOp, setOp, arg = GET_GLOBAL, SET_GLOBAL, c.identifierConstant(name)
	}

	if canAssign && c.p.match(token.EQUAL) {
		c.expression()
		c.emitBytes(setOp, arg)
	} else {
		c.emitBytes(getOp, arg)
	}
}
