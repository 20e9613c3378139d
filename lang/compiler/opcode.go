// Package compiler implements the single-pass Pratt parser and statement
// compiler described in spec.md §4.2: one forward pass over the token
// stream emits bytecode directly into an object.Chunk, with no
// intermediate AST. It also defines the instruction set (spec.md §4.4)
// and a disassembler for debugging and tests.
package compiler

// Opcode identifies a bytecode instruction. The "stack picture" comment on
// each one follows the convention from crafting-interpreters-style VMs:
// "x y OP z" means the instruction pops x and y (in that stack order, x
// pushed first) and pushes z.
type Opcode uint8

//nolint:revive
const (
	CONSTANT     Opcode = iota // - CONSTANT<idx> value
	NIL                        // - NIL nil
	TRUE                       // - TRUE true
	FALSE                      // - FALSE false
	POP                        // x POP -

	GET_LOCAL  // - GET_LOCAL<slot> x
	SET_LOCAL  // x SET_LOCAL<slot> x
	GET_GLOBAL // - GET_GLOBAL<name> x
	SET_GLOBAL // x SET_GLOBAL<name> x

	DEFINE_GLOBAL // x DEFINE_GLOBAL<name> -

	GET_UPVALUE   // - GET_UPVALUE<idx> x
	SET_UPVALUE   // x SET_UPVALUE<idx> x
	CLOSE_UPVALUE // x CLOSE_UPVALUE -

	GET_PROPERTY // inst GET_PROPERTY<name> x
	SET_PROPERTY // inst x SET_PROPERTY<name> x
	GET_SUPER    // inst super GET_SUPER<name> x

	EQUAL    // x y EQUAL bool
	GREATER  // x y GREATER bool
	LESS     // x y LESS bool
	ADD      // x y ADD z
	SUBTRACT // x y SUBTRACT z
	MULTIPLY // x y MULTIPLY z
	DIVIDE   // x y DIVIDE z
	NOT      // x NOT bool
	NEGATE   // x NEGATE -x

	PRINT // x PRINT -

	JUMP          // - JUMP<addr> -
	JUMP_IF_FALSE // cond JUMP_IF_FALSE<addr> cond (peeks, does not pop)
	LOOP          // - LOOP<addr> - (backward jump)

	CALL         // fn arg1..argn CALL<argc> result
	INVOKE       // inst arg1..argn INVOKE<name,argc> result
	SUPER_INVOKE // inst arg1..argn super SUPER_INVOKE<name,argc> result
	CLOSURE      // - CLOSURE<fnconst>{(islocal,idx)*n} closure
	RETURN       // x RETURN - (pops the frame)

	CLASS   // - CLASS<name> class
	INHERIT // super sub INHERIT super
	METHOD  // class closure METHOD<name> class
)

var opcodeNames = map[Opcode]string{
	CONSTANT:      "CONSTANT",
	NIL:           "NIL",
	TRUE:          "TRUE",
	FALSE:         "FALSE",
	POP:           "POP",
	GET_LOCAL:     "GET_LOCAL",
	SET_LOCAL:     "SET_LOCAL",
	GET_GLOBAL:    "GET_GLOBAL",
	SET_GLOBAL:    "SET_GLOBAL",
	DEFINE_GLOBAL: "DEFINE_GLOBAL",
	GET_UPVALUE:   "GET_UPVALUE",
	SET_UPVALUE:   "SET_UPVALUE",
	CLOSE_UPVALUE: "CLOSE_UPVALUE",
	GET_PROPERTY:  "GET_PROPERTY",
	SET_PROPERTY:  "SET_PROPERTY",
	GET_SUPER:     "GET_SUPER",
	EQUAL:         "EQUAL",
	GREATER:       "GREATER",
	LESS:          "LESS",
	ADD:           "ADD",
	SUBTRACT:      "SUBTRACT",
	MULTIPLY:      "MULTIPLY",
	DIVIDE:        "DIVIDE",
	NOT:           "NOT",
	NEGATE:        "NEGATE",
	PRINT:         "PRINT",
	JUMP:          "JUMP",
	JUMP_IF_FALSE: "JUMP_IF_FALSE",
	LOOP:          "LOOP",
	CALL:          "CALL",
	INVOKE:        "INVOKE",
	SUPER_INVOKE:  "SUPER_INVOKE",
	CLOSURE:       "CLOSURE",
	RETURN:        "RETURN",
	CLASS:         "CLASS",
	INHERIT:       "INHERIT",
	METHOD:        "METHOD",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
