package compiler

import (
	"github.com/loxlang/loxvm/lang/object"
	"github.com/loxlang/loxvm/lang/scanner"
	"github.com/loxlang/loxvm/lang/token"
)

const maxLocals = 256 // one-byte operand, per spec.md §4.2/§9
const maxUpvalues = 256

// parser holds the token stream and error-reporting state shared by every
// nested function compiler during one single-pass compile, mirroring
// spec.md §4.2's "Parser state".
type parser struct {
	src []byte
	sc  *scanner.Scanner
	hp  *object.Heap

	previous, current token.Token
	hadError          bool
	panicMode         bool
	errors            ErrorList

	class *classState // innermost enclosing class, nil at top level
}

// classState tracks whether the class currently being compiled has a
// superclass, needed to validate `super` expressions, per spec.md §4.2.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// local is one entry of a compiler's lexical-scope stack. depth == -1
// means "declared but not yet initialized": reading it in its own
// initializer is an error, per spec.md §4.2.
type local struct {
	name       string
	depth      int
	isCaptured bool
}

// upvalueRef records how a compiled function's Nth upvalue is resolved at
// closure-creation time: either from the immediately enclosing function's
// locals (isLocal) or from that function's own upvalues.
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// compiler is the per-nested-function compilation state described in
// spec.md §4.2. A script, a function, a method and an initializer are all
// compiled by a chain of these, the current one pointing at its enclosing
// parent.
type compiler struct {
	p         *parser
	enclosing *compiler

	function *object.Function
	kind     object.FunctionKind

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int
}

// MarkRoots implements object.RootProvider: while this compiler is active,
// the GC must see the function it is building (and, through it, every
// constant already emitted into its chunk) as a root, per spec.md §4.6 and
// §9's "compiler roots during allocation".
func (c *compiler) MarkRoots(mark func(object.Value)) {
	if c.function != nil {
		mark(c.function)
	}
}

// Compile runs the scanner and single-pass compiler over source and
// returns the top-level script Function, or the accumulated ErrorList if
// any compile error was reported. The returned Function is no longer
// GC-rooted once Compile returns (its compiler unregisters itself): the
// caller is expected to hand it to a VM immediately (e.g. by wrapping it
// in a Closure and calling it), per spec.md §4.2/§6.
func Compile(hp *object.Heap, source []byte) (*object.Function, error) {
	p := &parser{src: source, sc: scanner.New(source), hp: hp}

	c := newCompiler(p, nil, object.KindScript, "")
	defer hp.Unregister(c)

	p.advance()
	for !p.match(token.EOF) {
		c.declaration()
	}

	fn := c.endCompiler()
	if p.hadError {
		return nil, p.errors.Err()
	}
	return fn, nil
}

// newCompiler registers c as a GC root before it allocates the Function it
// is about to build, so a collection triggered by interning its name just
// after finds c.function through c itself. A collection triggered by the
// Function's own allocation runs before c.function is assigned; Heap.link
// pins the new Function for that one.
func newCompiler(p *parser, enclosing *compiler, kind object.FunctionKind, name string) *compiler {
	c := &compiler{p: p, enclosing: enclosing, kind: kind}
	p.hp.Register(c)
	c.function = p.hp.NewFunction()
	if name != "" {
		c.function.Name = p.hp.InternString(name)
	}

	// Slot 0 is reserved: "this" for methods/initializers, unnamed otherwise
	// (so a bare function can never read it by name), per spec.md §4.2.
	slotName := ""
	if kind == object.KindMethod || kind == object.KindInitializer {
		slotName = "this"
	}
	c.locals = append(c.locals, local{name: slotName, depth: 0})
	return c
}

// endCompiler emits the implicit return every function falls off the end
// into, and returns the finished Function.
func (c *compiler) endCompiler() *object.Function {
	c.emitReturn()
	return c.function
}

func (c *compiler) chunk() *object.Chunk { return c.function.Chunk }

// --- token stream -----------------------------------------------------

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.sc.Next()
		if p.current.Kind != token.ILLEGAL {
			break
		}
		p.errorAtCurrentRaw(p.current.Message)
	}
}

func (p *parser) check(k token.Kind) bool { return p.current.Kind == k }

func (p *parser) match(k token.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(k token.Kind, message string) {
	if p.current.Kind == k {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *parser) lexeme(t token.Token) string { return t.Lexeme(p.src) }

// --- error reporting ----------------------------------------------------

func (p *parser) errorAt(t token.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	where := "'" + p.lexeme(t) + "'"
	if t.Kind == token.EOF {
		where = "end"
	}
	p.errors = append(p.errors, &CompileError{Line: t.Line, Where: where, Message: message})
	p.hadError = true
}

// errorAtCurrentRaw reports a scanner ILLEGAL token, whose Message is
// already the full diagnostic and has no associated lexeme to quote.
func (p *parser) errorAtCurrentRaw(message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.errors = append(p.errors, &CompileError{Line: p.current.Line, Message: message})
	p.hadError = true
}

func (p *parser) error(message string)        { p.errorAt(p.previous, message) }
func (p *parser) errorAtCurrent(message string) { p.errorAt(p.current, message) }

// synchronize discards tokens until a statement boundary (a just-consumed
// semicolon, or a statement-starting keyword ahead) is found, so that one
// mistake does not cascade into spurious follow-on errors, per spec.md
// §4.2/§7.
func (p *parser) synchronize() {
	p.panicMode = false

	for p.current.Kind != token.EOF {
		if p.previous.Kind == token.SEMICOLON {
			return
		}
		switch p.current.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}
