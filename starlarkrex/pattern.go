package starlarkrex

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/magnetde/rex"
)

// fragmentValue is raw character class syntax. Unlike strings, fragments
// enter classes and alternations without escaping.
type fragmentValue string

var _ starlark.Value = fragmentValue("")

func (f fragmentValue) String() string        { return fmt.Sprintf("fragment(%q)", string(f)) }
func (f fragmentValue) Type() string          { return "fragment" }
func (f fragmentValue) Freeze()               {}
func (f fragmentValue) Truth() starlark.Bool  { return len(f) > 0 }
func (f fragmentValue) Hash() (uint32, error) { return starlark.String(f).Hash() }

// patternValue wraps an immutable pattern. Every builder method returns a
// new value; `p + q` concatenates and `p | q` builds an alternation.
type patternValue struct {
	m *Module
	p *rex.Pattern
}

var (
	_ starlark.Value      = (*patternValue)(nil)
	_ starlark.HasAttrs   = (*patternValue)(nil)
	_ starlark.Comparable = (*patternValue)(nil)
	_ starlark.HasBinary  = (*patternValue)(nil)
)

func (p *patternValue) derive(q *rex.Pattern) *patternValue {
	return &patternValue{m: p.m, p: q}
}

func (p *patternValue) String() string       { return p.p.String() }
func (p *patternValue) Type() string         { return "pattern" }
func (p *patternValue) Freeze()              {}
func (p *patternValue) Truth() starlark.Bool { return true }

func (p *patternValue) Hash() (uint32, error) {
	return starlark.String(p.p.String()).Hash()
}

// CompareSameType implements == and != over the token sequence and flags.
func (p *patternValue) CompareSameType(op syntax.Token, y starlark.Value, depth int) (bool, error) {
	other := y.(*patternValue)

	switch op {
	case syntax.EQL:
		return p.p.Equal(other.p), nil
	case syntax.NEQ:
		return !p.p.Equal(other.p), nil
	default:
		return false, fmt.Errorf("%s %s %s not implemented", p.Type(), op, other.Type())
	}
}

// Binary implements `+` for concatenation and `|` for alternation. The
// other operand may be a pattern or a string, which matches literally.
func (p *patternValue) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	if op != syntax.PLUS && op != syntax.PIPE {
		return nil, nil
	}

	other, err := asPattern(y)
	if err != nil {
		return nil, nil
	}

	x := p.p
	if side == starlark.Right {
		x, other = other, x
	}

	switch op {
	case syntax.PLUS:
		return p.derive(x.Concat(other)), nil
	default:
		return p.derive(x.Or(other)), nil
	}
}

func (p *patternValue) Attr(name string) (starlark.Value, error) {
	if name == "flags" {
		return starlark.MakeInt(p.p.Flags().Mask()), nil
	}

	return builtinAttr(p, name, patternMethods)
}

func (p *patternValue) AttrNames() []string {
	names := append(builtinAttrNames(patternMethods), "flags")
	sort.Strings(names)

	return names
}

var patternMethods = map[string]builtinFunc{
	"literal":                 patternLiteral,
	"raw":                     patternRaw,
	"whitespace":              patternWhitespace,
	"no_whitespace":           patternNoWhitespace,
	"wildcard":                patternWildcard,
	"match_all":               patternMatchAll,
	"lowercase_ascii_letters": patternLowercase,
	"uppercase_ascii_letters": patternUppercase,
	"ascii_letters":           patternLowercase,
	"any_number":              patternAnyNumber,
	"any_number_between":      patternAnyNumberBetween,
	"any_of":                  patternAnyOf,
	"none_of":                 patternNoneOf,
	"match_any":               patternMatchAny,
	"close_bracket":           patternCloseBracket,
	"quantify":                patternQuantify,
	"at_least_one":            patternAtLeastOne,
	"exactly":                 patternExactly,
	"group":                   patternGroup,
	"start_anchor":            patternStartAnchor,
	"end_anchor":              patternEndAnchor,
	"case_insensitive":        patternCaseInsensitive,
	"multiline":               patternMultiline,
	"dot_matches_newline":     patternDotMatchesNewline,
	"ascii_only":              patternASCIIOnly,
	"build":                   patternBuild,
	"test":                    patternTest,
	"ext":                     patternExt,
}

// textMethod unpacks a single text argument and applies fn.
func textMethod(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, fn func(*rex.Pattern, string) *rex.Pattern) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}

	return recv.derive(fn(recv.p, text)), nil
}

// plainMethod rejects all arguments and applies fn.
func plainMethod(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, fn func(*rex.Pattern) *rex.Pattern) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	return recv.derive(fn(recv.p)), nil
}

// flagMethod unpacks the optional enabled argument and applies fn.
func flagMethod(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, fn func(*rex.Pattern, bool) *rex.Pattern) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	enabled := true
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "enabled?", &enabled); err != nil {
		return nil, err
	}

	return recv.derive(fn(recv.p, enabled)), nil
}

func patternLiteral(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return textMethod(b, args, kwargs, (*rex.Pattern).Literal)
}

func patternRaw(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return textMethod(b, args, kwargs, (*rex.Pattern).Raw)
}

func patternWhitespace(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).Whitespace)
}

func patternNoWhitespace(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).NoWhitespace)
}

func patternWildcard(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).Wildcard)
}

func patternMatchAll(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).MatchAll)
}

func patternLowercase(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).LowercaseASCIILetters)
}

func patternUppercase(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).UppercaseASCIILetters)
}

func patternAnyNumber(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).AnyNumber)
}

func patternAnyNumberBetween(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	var minimum, maximum int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "minimum", &minimum, "maximum", &maximum); err != nil {
		return nil, err
	}

	q, err := recv.p.AnyNumberBetween(minimum, maximum)
	if err != nil {
		return nil, err
	}

	return recv.derive(q), nil
}

// classMembers converts positional arguments to class members.
func classMembers(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) ([]any, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: got 0 arguments, want at least 1", b.Name())
	}

	members := make([]any, len(args))
	for i, a := range args {
		m, err := asMember(a)
		if err != nil {
			return nil, fmt.Errorf("%s: for element %d: %w", b.Name(), i, err)
		}

		members[i] = m
	}

	return members, nil
}

func patternAnyOf(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	members, err := classMembers(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	q, err := recv.p.AnyOf(members...)
	if err != nil {
		return nil, err
	}

	return recv.derive(q), nil
}

func patternNoneOf(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	members, err := classMembers(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	q, err := recv.p.NoneOf(members...)
	if err != nil {
		return nil, err
	}

	return recv.derive(q), nil
}

func patternMatchAny(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	members, err := classMembers(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	q, err := recv.p.MatchAny(members...)
	if err != nil {
		return nil, err
	}

	return recv.derive(q), nil
}

func patternCloseBracket(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).CloseBracket)
}

func patternQuantify(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	var (
		minimum int
		maximum starlark.Value
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "minimum?", &minimum, "maximum?", &maximum); err != nil {
		return nil, err
	}

	upper := rex.Unbounded
	if maximum != nil && maximum != starlark.None {
		i, err := starlark.AsInt32(maximum)
		if err != nil {
			return nil, fmt.Errorf("%s: for parameter maximum: %w", b.Name(), err)
		}

		upper = i
	}

	return recv.derive(recv.p.Quantify(minimum, upper)), nil
}

func patternAtLeastOne(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).AtLeastOne)
}

func patternExactly(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	var times int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "times", &times); err != nil {
		return nil, err
	}

	return recv.derive(recv.p.Exactly(times)), nil
}

func patternGroup(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	var (
		name     starlark.Value
		optional bool
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name?", &name, "optional?", &optional); err != nil {
		return nil, err
	}

	if name == nil || name == starlark.None {
		return recv.derive(recv.p.Group(optional)), nil
	}

	s, ok := starlark.AsString(name)
	if !ok {
		return nil, fmt.Errorf("%s: for parameter name: got %s, want string", b.Name(), name.Type())
	}

	return recv.derive(recv.p.NamedGroup(s, optional)), nil
}

func patternStartAnchor(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).StartAnchor)
}

func patternEndAnchor(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plainMethod(b, args, kwargs, (*rex.Pattern).EndAnchor)
}

func patternCaseInsensitive(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return flagMethod(b, args, kwargs, (*rex.Pattern).CaseInsensitive)
}

func patternMultiline(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return flagMethod(b, args, kwargs, (*rex.Pattern).Multiline)
}

func patternDotMatchesNewline(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return flagMethod(b, args, kwargs, (*rex.Pattern).DotMatchesNewline)
}

func patternASCIIOnly(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return flagMethod(b, args, kwargs, (*rex.Pattern).ASCIIOnly)
}

func patternBuild(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	return starlark.String(recv.p.Build()), nil
}

func patternTest(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	var sample string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "sample", &sample); err != nil {
		return nil, err
	}

	cp, err := recv.m.compile(recv.p)
	if err != nil {
		return nil, err
	}

	mt := cp.MatchAt(sample, 0)
	if mt == nil {
		return nil, &rex.NoMatchError{Pattern: cp.Expr(), Sample: sample}
	}

	return &matchValue{m: mt}, nil
}

// patternExt dispatches to a script-defined extension: fn(base, *args).
// The callable must return a pattern distinct from its base.
func patternExt(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*patternValue)

	if len(args) < 1 {
		return nil, fmt.Errorf("%s: got %d arguments, want at least 1", b.Name(), len(args))
	}

	name, ok := starlark.AsString(args[0])
	if !ok {
		return nil, fmt.Errorf("%s: for parameter name: got %s, want string", b.Name(), args[0].Type())
	}

	fn, found := recv.m.lookupExtension(name)
	if !found {
		return nil, fmt.Errorf("unknown extension %q", name)
	}

	callArgs := append(starlark.Tuple{recv}, args[1:]...)

	res, err := starlark.Call(thread, fn, callArgs, kwargs)
	if err != nil {
		return nil, err
	}

	result, ok := res.(*patternValue)
	if !ok {
		if res == starlark.None {
			return nil, &rex.ContractViolationError{Extension: name, Reason: "extension returned no pattern"}
		}

		return nil, fmt.Errorf("extension %q returned %s, want pattern", name, res.Type())
	}

	if result.p == recv.p {
		return nil, &rex.ContractViolationError{Extension: name, Reason: "extension returned the bound pattern instance"}
	}

	return result, nil
}
