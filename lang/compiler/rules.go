package compiler

import "github.com/loxlang/loxvm/lang/token"

// precedence orders binding power from loosest to tightest, per spec.md
// §4.2's Pratt-parser table.
type precedence int

const (
	PREC_NONE       precedence = iota
	PREC_ASSIGNMENT            // =
	PREC_OR                    // or
	PREC_AND                   // and
	PREC_EQUALITY              // == !=
	PREC_COMPARISON            // < > <= >=
	PREC_TERM                  // + -
	PREC_FACTOR                // * /
	PREC_UNARY                 // ! - (prefix)
	PREC_CALL                  // . ()
	PREC_PRIMARY
)

type parseFn func(c *compiler, canAssign bool)

type rule struct {
	prefix, infix parseFn
	prec          precedence
}

// rules is the Pratt parse table, grounded on the same token-kind-keyed
// rule-table shape as the teacher's expression compiler, one row per
// token.Kind that can appear in an expression.
var rules map[token.Kind]rule

func init() {
	rules = map[token.Kind]rule{
		token.LEFT_PAREN:  {prefix: (*compiler).grouping, infix: (*compiler).call, prec: PREC_CALL},
		token.DOT:         {infix: (*compiler).dot, prec: PREC_CALL},
		token.MINUS:       {prefix: (*compiler).unary, infix: (*compiler).binary, prec: PREC_TERM},
		token.PLUS:        {infix: (*compiler).binary, prec: PREC_TERM},
		token.SLASH:       {infix: (*compiler).binary, prec: PREC_FACTOR},
		token.STAR:        {infix: (*compiler).binary, prec: PREC_FACTOR},
		token.BANG:        {prefix: (*compiler).unary},
		token.BANG_EQUAL:  {infix: (*compiler).binary, prec: PREC_EQUALITY},
		token.EQUAL_EQUAL: {infix: (*compiler).binary, prec: PREC_EQUALITY},
		token.GREATER:         {infix: (*compiler).binary, prec: PREC_COMPARISON},
		token.GREATER_EQUAL:   {infix: (*compiler).binary, prec: PREC_COMPARISON},
		token.LESS:            {infix: (*compiler).binary, prec: PREC_COMPARISON},
		token.LESS_EQUAL:      {infix: (*compiler).binary, prec: PREC_COMPARISON},
		token.IDENT:  {prefix: (*compiler).variable},
		token.STRING: {prefix: (*compiler).string},
		token.NUMBER: {prefix: (*compiler).number},
		token.AND:    {infix: (*compiler).and_, prec: PREC_AND},
		token.OR:     {infix: (*compiler).or_, prec: PREC_OR},
		token.FALSE:  {prefix: (*compiler).literal},
		token.NIL:    {prefix: (*compiler).literal},
		token.TRUE:   {prefix: (*compiler).literal},
		token.THIS:   {prefix: (*compiler).this},
		token.SUPER:  {prefix: (*compiler).super},
	}
}

func getRule(k token.Kind) rule { return rules[k] }
