package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/loxvm/lang/scanner"
	"github.com/loxlang/loxvm/lang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	s := scanner.New([]byte(src))
	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){},.-+;/*!!====<<=>>=")
	require.True(t, len(toks) > 1)
	assert.Equal(t, []token.Kind{
		token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
		token.COMMA, token.DOT, token.MINUS, token.PLUS, token.SEMICOLON,
		token.SLASH, token.STAR, token.BANG, token.BANG_EQUAL, token.EQUAL_EQUAL,
		token.EQUAL, token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL,
		token.EOF,
	}, kinds(toks))
}

func TestScanKeywordsAndIdentifiersAreDistinguished(t *testing.T) {
	toks := scanAll(t, "var class orchard")
	require.Len(t, toks, 4)
	assert.Equal(t, token.VAR, toks[0].Kind)
	assert.Equal(t, token.CLASS, toks[1].Kind)
	assert.Equal(t, token.IDENT, toks[2].Kind, "'orchard' must not be split into the keyword 'or'")
}

func TestScanNumberLiteral(t *testing.T) {
	toks := scanAll(t, "123 45.67")
	require.Len(t, toks, 3)
	assert.Equal(t, token.NUMBER, toks[0].Kind)
	assert.Equal(t, "123", toks[0].Lexeme([]byte("123 45.67")))
	assert.Equal(t, token.NUMBER, toks[1].Kind)
}

func TestScanStringLiteralTracksLines(t *testing.T) {
	src := "\"line one\nstill going\""
	toks := scanAll(t, src)
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, 2, toks[0].Line, "the string's closing quote is on line 2")
}

func TestScanUnterminatedStringIsIllegal(t *testing.T) {
	toks := scanAll(t, "\"oops")
	require.Len(t, toks, 2)
	assert.Equal(t, token.ILLEGAL, toks[0].Kind)
	assert.NotEmpty(t, toks[0].Message)
}

func TestScanSkipsLineComments(t *testing.T) {
	toks := scanAll(t, "// a whole comment\nvar")
	require.Len(t, toks, 2)
	assert.Equal(t, token.VAR, toks[0].Kind)
	assert.Equal(t, 2, toks[0].Line)
}
