package rex

import (
	"slices"
	"strings"
)

// Expression is an immutable token sequence together with the stack of
// character classes that are still open. Every mutating operation returns a
// new expression and leaves the receiver untouched, so expressions can be
// shared freely; the cost is one copy of both slices per operation.
type Expression struct {
	tokens   []Token
	brackets []Token
}

// NewExpression returns an expression holding the given tokens, with
// bracket tokens tracked as if appended one by one.
func NewExpression(tokens ...Token) *Expression {
	e := &Expression{}
	return e.Append(tokens...)
}

// cloneWith copies the expression, inserting head before the existing
// tokens and appending tail after them. Appended open brackets push the
// bracket stack and appended close brackets pop it; head tokens are taken
// verbatim because prepended syntax is always already balanced.
func (e *Expression) cloneWith(head, tail []Token) *Expression {
	c := &Expression{
		tokens:   make([]Token, 0, len(head)+len(e.tokens)+len(tail)),
		brackets: slices.Clone(e.brackets),
	}

	c.tokens = append(c.tokens, head...)
	c.tokens = append(c.tokens, e.tokens...)

	for _, t := range tail {
		switch t.op {
		case opOpenBracket:
			c.brackets = append(c.brackets, t)
		case opCloseBracket:
			if len(c.brackets) == 0 {
				panic(&InvariantViolationError{Reason: "closing a bracket without an open one"})
			}
			if top := c.brackets[len(c.brackets)-1]; top.op != opOpenBracket {
				// The stack only ever holds open brackets; anything else
				// means the builder state is corrupted.
				panic(&InvariantViolationError{Reason: "bracket stack holds a non-bracket token"})
			}
			c.brackets = c.brackets[:len(c.brackets)-1]
		}

		c.tokens = append(c.tokens, t)
	}

	return c
}

// Append returns a copy of the expression with the tokens added at the end.
// Appending CloseBracket while no class is open is a programming error and
// panics with an InvariantViolationError; use CloseBracket for a safe close.
func (e *Expression) Append(tokens ...Token) *Expression {
	return e.cloneWith(nil, tokens)
}

// Prepend returns a copy of the expression with the tokens inserted at the
// front, without touching the bracket stack.
func (e *Expression) Prepend(tokens ...Token) *Expression {
	return e.cloneWith(tokens, nil)
}

// HasOpenBracket reports whether a character class is still open.
func (e *Expression) HasOpenBracket() bool {
	if len(e.brackets) == 0 {
		return false
	}

	return e.brackets[len(e.brackets)-1].op == opOpenBracket
}

// openClassNegated reports whether the currently open character class was
// opened with a leading negation. False when no class is open.
func (e *Expression) openClassNegated() bool {
	depth := 0
	for i := len(e.tokens) - 1; i >= 0; i-- {
		switch e.tokens[i].op {
		case opCloseBracket:
			depth++
		case opOpenBracket:
			if depth == 0 {
				return i+1 < len(e.tokens) && e.tokens[i+1] == Text("^")
			}
			depth--
		}
	}

	return false
}

// CloseBracket closes the most recently opened character class and returns
// the result. When no class is open, the expression is returned unchanged.
func (e *Expression) CloseBracket() *Expression {
	if !e.HasOpenBracket() {
		return e
	}

	return e.Append(CloseBracket)
}

// closeAll closes every class still open.
func (e *Expression) closeAll() *Expression {
	c := e
	for c.HasOpenBracket() {
		c = c.CloseBracket()
	}

	return c
}

// Build closes all open character classes and renders the token sequence.
// The receiver is not modified; building twice yields the same string.
func (e *Expression) Build() string {
	c := e.closeAll()

	var b strings.Builder
	for _, t := range c.tokens {
		b.WriteString(t.String())
	}

	return b.String()
}

// Concat returns an expression holding the receiver's tokens followed by
// the other expression's tokens. Classes the other expression left open are
// closed first; classes open on the receiver stay open, so the combined
// bracket stack is the receiver's.
func (e *Expression) Concat(other *Expression) *Expression {
	return e.Append(other.closeAll().tokens...)
}

// Tokens returns a copy of the token sequence.
func (e *Expression) Tokens() []Token {
	return slices.Clone(e.tokens)
}

// Len returns the number of tokens.
func (e *Expression) Len() int {
	return len(e.tokens)
}

// Equal reports whether both expressions hold the same token sequence.
func (e *Expression) Equal(other *Expression) bool {
	return slices.Equal(e.tokens, other.tokens)
}
