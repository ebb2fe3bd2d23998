package rex

import (
	"math"
	"strconv"
	"strings"

	"github.com/magnetde/rex/engine"
)

// Unbounded marks a quantifier without an upper limit.
const Unbounded = math.MaxInt

// Fragment is a raw piece of character class syntax. Fragments are passed
// into classes verbatim, unlike plain strings, which are escaped.
type Fragment string

// Ready-made fragments for AnyOf and NoneOf.
const (
	AnyDigit      Fragment = "0-9"
	AnyASCIILower Fragment = "a-z"
	AnyASCIIUpper Fragment = "A-Z"
	AnySpace      Fragment = `\s`
	NoSpace       Fragment = `\S`
)

// Pattern is a fluent, immutable builder for expressions. Every operation
// returns a new pattern; the receiver never changes, so intermediate
// patterns can be kept and extended in different directions.
//
// Patterns are safe to share between goroutines as long as extensions are
// not invoked concurrently; Ext caches bound callables on the instance.
type Pattern struct {
	expr  *Expression
	flags FlagSet

	registry *Registry
	bound    map[string]Func // bound extensions; never carried to clones
}

// New returns an empty pattern bound to the default extension registry.
func New() *Pattern {
	return NewWithRegistry(DefaultRegistry)
}

// NewWithRegistry returns an empty pattern resolving extensions against the
// given registry.
func NewWithRegistry(registry *Registry) *Pattern {
	return &Pattern{
		expr:     &Expression{},
		registry: registry,
	}
}

// clone copies the pattern. Extension bindings are dropped, so extensions
// rebind against the copy on their next use.
func (p *Pattern) clone() *Pattern {
	return &Pattern{
		expr:     p.expr,
		flags:    p.flags,
		registry: p.registry,
	}
}

func (p *Pattern) withExpr(e *Expression) *Pattern {
	c := p.clone()
	c.expr = e

	return c
}

func (p *Pattern) withFlag(flag int, enabled bool) *Pattern {
	c := p.clone()

	if enabled {
		c.flags = c.flags.Enable(flag)
	} else {
		c.flags = c.flags.Disable(flag)
	}

	return c
}

// Expression returns the pattern's expression.
func (p *Pattern) Expression() *Expression {
	return p.expr
}

// Flags returns the pattern's flag set.
func (p *Pattern) Flags() FlagSet {
	return p.flags
}

// Literal appends text that matches itself; every metacharacter is escaped.
func (p *Pattern) Literal(s string) *Pattern {
	return p.withExpr(p.expr.Append(Text(Escape(s))))
}

// Raw appends expression syntax verbatim.
func (p *Pattern) Raw(s string) *Pattern {
	return p.withExpr(p.expr.Append(Text(s)))
}

// Whitespace matches a single whitespace character.
func (p *Pattern) Whitespace() *Pattern {
	return p.Raw(`\s`)
}

// NoWhitespace matches a single character that is not whitespace.
func (p *Pattern) NoWhitespace() *Pattern {
	return p.Raw(`\S`)
}

// Wildcard matches any single character.
func (p *Pattern) Wildcard() *Pattern {
	return p.Raw(".")
}

// MatchAll matches one or more arbitrary characters.
func (p *Pattern) MatchAll() *Pattern {
	return p.Raw(".+")
}

// StartAnchor anchors the expression at the start of the input (or line,
// in multiline mode).
func (p *Pattern) StartAnchor() *Pattern {
	return p.Raw("^")
}

// EndAnchor anchors the expression at the end of the input (or line).
func (p *Pattern) EndAnchor() *Pattern {
	return p.Raw("$")
}

// appendClass appends raw text inside a character class, opening a class
// first when none is open. The class is left open so further members can
// join it; it is closed by CloseBracket, Quantify, Group or Build.
func (p *Pattern) appendClass(s string) *Pattern {
	e := p.expr
	if !e.HasOpenBracket() {
		e = e.Append(OpenBracket)
	}

	return p.withExpr(e.Append(Text(s)))
}

// LowercaseASCIILetters matches a single lowercase ASCII letter.
func (p *Pattern) LowercaseASCIILetters() *Pattern {
	return p.appendClass(string(AnyASCIILower))
}

// UppercaseASCIILetters matches a single uppercase ASCII letter.
func (p *Pattern) UppercaseASCIILetters() *Pattern {
	return p.appendClass(string(AnyASCIIUpper))
}

// ASCIILetters is an alias for LowercaseASCIILetters; the lowercase variant
// sees the most use, usually combined with the case insensitive flag.
func (p *Pattern) ASCIILetters() *Pattern {
	return p.LowercaseASCIILetters()
}

// AnyNumberBetween matches a single digit in the inclusive range.
// The range must satisfy 0 <= minimum < maximum <= 9; anything else fails
// with an InvalidRangeError at call time, not at compile time.
func (p *Pattern) AnyNumberBetween(minimum, maximum int) (*Pattern, error) {
	if minimum >= maximum || minimum < 0 || maximum > 9 {
		return nil, &InvalidRangeError{Min: minimum, Max: maximum}
	}

	return p.appendClass(strconv.Itoa(minimum) + "-" + strconv.Itoa(maximum)), nil
}

// AnyNumber matches a single decimal digit.
func (p *Pattern) AnyNumber() *Pattern {
	return p.appendClass(string(AnyDigit))
}

// memberText renders a class or alternation member. Plain strings are
// escaped; fragments and patterns are taken as they are.
func memberText(m any) (string, error) {
	switch v := m.(type) {
	case string:
		return Escape(v), nil
	case Fragment:
		return string(v), nil
	case *Pattern:
		return v.expr.Build(), nil
	default:
		return "", &UnsupportedMemberError{Value: m}
	}
}

// AnyOf matches a single occurrence of any of the given members.
// The class is left open, so chained calls extend the same class; an open
// negated class is closed first.
func (p *Pattern) AnyOf(members ...any) (*Pattern, error) {
	return p.anyClass(members, false)
}

// NoneOf matches a single character not covered by any of the members.
// Chained calls extend the same negated class; an open positive class is
// closed first, so the negation never spills over onto its members.
func (p *Pattern) NoneOf(members ...any) (*Pattern, error) {
	return p.anyClass(members, true)
}

func (p *Pattern) anyClass(members []any, negate bool) (*Pattern, error) {
	e := p.expr

	// Members only merge into an open class of the same polarity. Joining
	// a negated class with a positive one would flip the meaning of the
	// members already in it, so the open class is closed instead.
	if e.HasOpenBracket() && e.openClassNegated() != negate {
		e = e.CloseBracket()
	}

	if !e.HasOpenBracket() {
		e = e.Append(OpenBracket)
		if negate {
			e = e.Append(Text("^"))
		}
	}

	for _, m := range members {
		text, err := memberText(m)
		if err != nil {
			return nil, err
		}

		e = e.Append(Text(text))
	}

	return p.withExpr(e), nil
}

// CloseBracket closes the currently open character class, if any.
func (p *Pattern) CloseBracket() *Pattern {
	return p.withExpr(p.expr.CloseBracket())
}

// Quantify repeats the preceding unit between minimum and maximum times.
// Open classes are closed first, since a quantifier applies to the class as
// a whole. The quantifier is chosen by the first matching rule:
//
//	minimum=0, maximum=Unbounded  ->  *
//	minimum=0, maximum=1          ->  ?
//	minimum=1, maximum=Unbounded  ->  +
//	minimum=maximum               ->  {minimum}
//	minimum>1, maximum=Unbounded  ->  {minimum,}
//	otherwise                     ->  {minimum,maximum}
//
// Values are not validated beyond this mapping; an impossible pair like
// (5,2) surfaces as a CompileError later.
func (p *Pattern) Quantify(minimum, maximum int) *Pattern {
	var q string

	switch {
	case minimum == 0 && maximum == Unbounded:
		q = "*"
	case minimum == 0 && maximum == 1:
		q = "?"
	case minimum == 1 && maximum == Unbounded:
		q = "+"
	case minimum == maximum:
		q = "{" + strconv.Itoa(minimum) + "}"
	case minimum > 1 && maximum == Unbounded:
		q = "{" + strconv.Itoa(minimum) + ",}"
	default:
		q = "{" + strconv.Itoa(minimum) + "," + strconv.Itoa(maximum) + "}"
	}

	return p.withExpr(p.expr.CloseBracket().Append(Text(q)))
}

// AtLeastOne repeats the preceding unit one or more times.
func (p *Pattern) AtLeastOne() *Pattern {
	return p.Quantify(1, Unbounded)
}

// Exactly repeats the preceding unit exactly the given number of times.
func (p *Pattern) Exactly(times int) *Pattern {
	return p.Quantify(times, times)
}

// groupWith closes any open class and wraps the whole expression in
// parentheses, inserting the marker right after the opening one.
func (p *Pattern) groupWith(marker string, optional bool) *Pattern {
	head := []Token{Text("(")}
	if marker != "" {
		head = append(head, Text(marker))
	}

	tail := []Token{Text(")")}
	if optional {
		tail = append(tail, Text("?"))
	}

	return p.withExpr(p.expr.closeAll().cloneWith(head, tail))
}

// Group wraps the expression in a capturing group, optionally making the
// whole group optional.
func (p *Pattern) Group(optional bool) *Pattern {
	return p.groupWith("", optional)
}

// NamedGroup wraps the expression in a named capturing group of the form
// (?P<name>...). The name is not validated here; an invalid name fails at
// compile time.
func (p *Pattern) NamedGroup(name string, optional bool) *Pattern {
	return p.groupWith("?P<"+name+">", optional)
}

// nonCapturing wraps the expression in a non-capturing group, keeping
// alternation precedence without shifting group numbers.
func (p *Pattern) nonCapturing() *Pattern {
	return p.groupWith("?:", false)
}

// Or combines the pattern with an alternative. The result is wrapped in a
// non-capturing group, so later concatenation or quantification applies to
// the alternation as a whole. Flags of both sides are combined.
func (p *Pattern) Or(other *Pattern) *Pattern {
	return p.withExpr(p.expr.Append(Alternation)).Concat(other).nonCapturing()
}

// MatchAny matches any one of the given members: strings match literally,
// patterns and fragments by their syntax. The members are joined into a
// single non-capturing alternation group.
func (p *Pattern) MatchAny(members ...any) (*Pattern, error) {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		text, err := memberText(m)
		if err != nil {
			return nil, err
		}

		parts = append(parts, text)
	}

	alt := NewWithRegistry(p.registry).Raw(strings.Join(parts, "|")).nonCapturing()

	return p.withExpr(p.expr.Append(Text(alt.expr.Build()))), nil
}

// Concat returns the concatenation of both patterns: the receiver's tokens
// followed by the other pattern's tokens, with the other pattern's open
// classes closed first. The flag sets are combined; the receiver's registry
// carries over.
func (p *Pattern) Concat(other *Pattern) *Pattern {
	c := p.withExpr(p.expr.Concat(other.expr))
	c.flags = FlagSet{mask: p.flags.mask | other.flags.mask}

	return c
}

// Join concatenates the subpatterns with the delimiter pattern between each
// adjacent pair.
func Join(delimiter *Pattern, subpatterns []*Pattern) *Pattern {
	if len(subpatterns) == 0 {
		return New()
	}

	joined := subpatterns[0]
	for _, p := range subpatterns[1:] {
		joined = joined.Concat(delimiter).Concat(p)
	}

	return joined
}

// CaseInsensitive enables or disables case insensitive matching.
func (p *Pattern) CaseInsensitive(enabled bool) *Pattern {
	return p.withFlag(engine.FlagIgnoreCase, enabled)
}

// Multiline enables or disables multiline mode, where anchors match at
// line boundaries.
func (p *Pattern) Multiline(enabled bool) *Pattern {
	return p.withFlag(engine.FlagMultiline, enabled)
}

// DotMatchesNewline enables or disables newline matching for the wildcard.
func (p *Pattern) DotMatchesNewline(enabled bool) *Pattern {
	return p.withFlag(engine.FlagDotAll, enabled)
}

// ASCIIOnly enables or disables the ASCII flag. Both host engines treat
// classes like \w and \s as ASCII already; the flag is carried in the mask
// for callers reading it and clears the fallback engine's Unicode option
// when the pattern compiles there.
func (p *Pattern) ASCIIOnly(enabled bool) *Pattern {
	return p.withFlag(engine.FlagASCII, enabled)
}

// Build serializes the expression, closing any open character classes.
// Build is pure: calling it repeatedly yields the same string and never
// modifies the pattern.
func (p *Pattern) Build() string {
	return p.expr.Build()
}

// Compile builds the expression and compiles it against the host engine
// with the pattern's flags. Failures are wrapped in a CompileError carrying
// the serialized text.
func (p *Pattern) Compile() (*engine.Pattern, error) {
	expr := p.Build()

	cp, err := engine.Compile(expr, p.flags.Mask())
	if err != nil {
		return nil, &CompileError{Expr: expr, Err: err}
	}

	return cp, nil
}

// Test compiles the pattern and matches it against the start of the sample.
// A failed match returns a NoMatchError carrying the serialized pattern and
// the sample.
func (p *Pattern) Test(sample string) (*engine.Match, error) {
	cp, err := p.Compile()
	if err != nil {
		return nil, err
	}

	m := cp.MatchAt(sample, 0)
	if m == nil {
		return nil, &NoMatchError{Pattern: cp.Expr(), Sample: sample}
	}

	return m, nil
}

// Equal reports whether both patterns hold the same token sequence and the
// same flags. How either was built does not matter.
func (p *Pattern) Equal(other *Pattern) bool {
	return p.flags.Equal(other.flags) && p.expr.Equal(other.expr)
}

func (p *Pattern) String() string {
	var b strings.Builder

	b.WriteByte('/')
	b.WriteString(p.Build())
	b.WriteByte('/')

	if p.flags.Mask() != 0 {
		b.WriteByte(' ')
		b.WriteString(p.flags.String())
	}

	return b.String()
}
