package rex

import (
	"errors"
	"testing"
)

func TestExpressionBuild(t *testing.T) {
	e := NewExpression(Text("foo"), Text(`\.`), Text("bar"))

	if got := e.Build(); got != `foo\.bar` {
		t.Errorf("Build() = %q, want %q", got, `foo\.bar`)
	}
}

func TestExpressionBrackets(t *testing.T) {
	e := NewExpression().Append(Text("x"), OpenBracket, Text("a-z"))

	if !e.HasOpenBracket() {
		t.Fatal("expected an open bracket")
	}

	if got := e.Build(); got != "x[a-z]" {
		t.Errorf("Build() = %q, want %q", got, "x[a-z]")
	}

	closed := e.CloseBracket()
	if closed.HasOpenBracket() {
		t.Error("expected the bracket to be closed")
	}

	if got := closed.Build(); got != "x[a-z]" {
		t.Errorf("Build() = %q, want %q", got, "x[a-z]")
	}
}

func TestExpressionBuildIdempotent(t *testing.T) {
	e := NewExpression().Append(OpenBracket, Text("0-9"))

	first := e.Build()
	second := e.Build()

	if first != second {
		t.Errorf("Build() = %q, then %q", first, second)
	}

	// Building must not close the expression's own bracket.
	if !e.HasOpenBracket() {
		t.Error("Build() modified the expression")
	}

	if got := e.Append(Text("a-f")).Build(); got != "[0-9a-f]" {
		t.Errorf("Build() after further append = %q, want %q", got, "[0-9a-f]")
	}
}

func TestExpressionBuildClosesAllBrackets(t *testing.T) {
	e := NewExpression().Append(OpenBracket, Text("a"), OpenBracket, Text("b"))

	// One closing bracket per outstanding open one, nothing more.
	if got := e.Build(); got != "[a[b]]" {
		t.Errorf("Build() = %q, want %q", got, "[a[b]]")
	}
}

func TestExpressionCloseBracketWithoutOpen(t *testing.T) {
	e := NewExpression(Text("abc"))

	closed := e.CloseBracket()
	if got := closed.Build(); got != "abc" {
		t.Errorf("Build() = %q, want %q", got, "abc")
	}
}

func TestExpressionPrependKeepsBrackets(t *testing.T) {
	e := NewExpression().Append(OpenBracket, Text("a-z")).Prepend(Text("("))

	// Prepending must not touch the bracket stack.
	if !e.HasOpenBracket() {
		t.Fatal("expected the bracket to stay open")
	}

	if got := e.Append(Text("0-9")).CloseBracket().Append(Text(")")).Build(); got != "([a-z0-9])" {
		t.Errorf("Build() = %q, want %q", got, "([a-z0-9])")
	}
}

func TestExpressionConcat(t *testing.T) {
	a := NewExpression(Text("foo"))
	b := NewExpression().Append(OpenBracket, Text("0-9"))

	joined := a.Concat(b)

	if got := joined.Build(); got != "foo[0-9]" {
		t.Errorf("Build() = %q, want %q", got, "foo[0-9]")
	}

	// The other side must not be modified.
	if !b.HasOpenBracket() {
		t.Error("Concat modified the other expression")
	}
}

func TestExpressionConcatKeepsReceiverBracket(t *testing.T) {
	a := NewExpression().Append(OpenBracket, Text("a-z"))
	b := NewExpression(Text("!"))

	joined := a.Concat(b)

	if !joined.HasOpenBracket() {
		t.Error("expected the receiver's bracket to stay open")
	}

	if got := joined.Build(); got != "[a-z!]" {
		t.Errorf("Build() = %q, want %q", got, "[a-z!]")
	}
}

func TestExpressionUnmatchedClose(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}

		err, ok := r.(error)
		if !ok {
			t.Fatalf("recovered %v, want an error", r)
		}

		var iv *InvariantViolationError
		if !errors.As(err, &iv) {
			t.Fatalf("recovered %v, want an InvariantViolationError", err)
		}
	}()

	NewExpression().Append(CloseBracket)
}

func TestExpressionEqual(t *testing.T) {
	a := NewExpression(Text("a"), Text("b"))
	b := NewExpression(Text("a")).Append(Text("b"))
	c := NewExpression(Text("ab"))

	if !a.Equal(b) {
		t.Error("expected equal expressions")
	}

	// Token boundaries matter, not only the serialized form.
	if a.Equal(c) {
		t.Error("expected different expressions")
	}
}

func TestExpressionTokensCopy(t *testing.T) {
	e := NewExpression(Text("a"), Text("b"))

	tokens := e.Tokens()
	tokens[0] = Text("x")

	if got := e.Build(); got != "ab" {
		t.Errorf("Build() = %q after modifying the returned tokens, want %q", got, "ab")
	}
}
