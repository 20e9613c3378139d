package compiler

import (
	"fmt"
	"strings"
)

// CompileError is one positioned diagnostic produced while scanning or
// compiling, formatted the way spec.md §4.2 and §7 require:
// "[line N] Error at '<lexeme>': <message>" (or "at end" for EOF, or no
// location suffix for a scanner-reported ILLEGAL token, whose message
// already describes the problem).
type CompileError struct {
	Line    int
	Where   string // "" (use Message only), "end", or "'<lexeme>'"
	Message string
}

func (e *CompileError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at %s: %s", e.Line, e.Where, e.Message)
}

// ErrorList collects every CompileError reported during a compile. A
// single source file can report more than one: the compiler keeps going
// past an error, suppressing further reports until synchronize() finds a
// statement boundary, so that one `interpret` call surfaces as many
// mistakes as possible (spec.md §7).
type ErrorList []*CompileError

func (el ErrorList) Error() string {
	msgs := make([]string, len(el))
	for i, e := range el {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns el as an error, or nil if it is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}
