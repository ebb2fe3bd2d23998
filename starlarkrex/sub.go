package starlarkrex

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"

	"github.com/magnetde/rex"
)

// substitutionValue accumulates a replacement template. It is the one
// mutable value of this module: add and backreference modify the receiver
// and return it, so calls chain without reassignment.
type substitutionValue struct {
	m      *Module
	s      *rex.Substitution
	frozen bool
}

var (
	_ starlark.Value    = (*substitutionValue)(nil)
	_ starlark.HasAttrs = (*substitutionValue)(nil)
)

func (s *substitutionValue) String() string {
	return fmt.Sprintf("substitution(%q)", s.s.Template())
}

func (s *substitutionValue) Type() string          { return "substitution" }
func (s *substitutionValue) Freeze()               { s.frozen = true }
func (s *substitutionValue) Truth() starlark.Bool  { return true }
func (s *substitutionValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", s.Type()) }

func (s *substitutionValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "template":
		return starlark.String(s.s.Template()), nil
	case "pattern":
		return &patternValue{m: s.m, p: s.s.Pattern()}, nil
	}

	return builtinAttr(s, name, substitutionMethods)
}

func (s *substitutionValue) AttrNames() []string {
	names := append(builtinAttrNames(substitutionMethods), "template", "pattern")
	sort.Strings(names)

	return names
}

var substitutionMethods = map[string]builtinFunc{
	"add":           substitutionAdd,
	"backreference": substitutionBackreference,
	"replace":       substitutionReplace,
}

func (s *substitutionValue) checkMutable(b *starlark.Builtin) error {
	if s.frozen {
		return fmt.Errorf("%s: cannot modify frozen substitution", b.Name())
	}

	return nil
}

// substitutionAdd implements substitution.add(text): it appends text to the
// template and returns the substitution itself.
func substitutionAdd(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*substitutionValue)

	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}

	if err := recv.checkMutable(b); err != nil {
		return nil, err
	}

	recv.s.Add(text)

	return recv, nil
}

// substitutionBackreference implements substitution.backreference(group)
// for numbered and named groups.
func substitutionBackreference(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*substitutionValue)

	var group starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "group", &group); err != nil {
		return nil, err
	}

	if err := recv.checkMutable(b); err != nil {
		return nil, err
	}

	switch g := group.(type) {
	case starlark.Int:
		i, err := starlark.AsInt32(g)
		if err != nil {
			return nil, err
		}

		recv.s.Backreference(i)
	case starlark.String:
		recv.s.NamedBackreference(string(g))
	default:
		return nil, fmt.Errorf("%s: for parameter group: got %s, want int or string", b.Name(), group.Type())
	}

	return recv, nil
}

// substitutionReplace implements substitution.replace(text, count=0).
func substitutionReplace(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*substitutionValue)

	var (
		text  string
		count int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text, "count?", &count); err != nil {
		return nil, err
	}

	out, err := recv.s.Replace(text, count)
	if err != nil {
		return nil, err
	}

	return starlark.String(out), nil
}
