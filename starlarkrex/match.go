package starlarkrex

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"

	"github.com/magnetde/rex/engine"
)

// matchValue wraps a single match result.
type matchValue struct {
	m *engine.Match
}

var (
	_ starlark.Value    = (*matchValue)(nil)
	_ starlark.HasAttrs = (*matchValue)(nil)
)

func (m *matchValue) String() string {
	s := m.m.Span(0)
	return fmt.Sprintf("<match span=(%d, %d) text=%q>", s.Start, s.End, m.m.Text())
}

func (m *matchValue) Type() string          { return "match" }
func (m *matchValue) Freeze()               {}
func (m *matchValue) Truth() starlark.Bool  { return true }
func (m *matchValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", m.Type()) }

func (m *matchValue) Attr(name string) (starlark.Value, error) {
	if name == "string" {
		return starlark.String(m.m.Input()), nil
	}

	return builtinAttr(m, name, matchMethods)
}

func (m *matchValue) AttrNames() []string {
	names := append(builtinAttrNames(matchMethods), "string")
	sort.Strings(names)

	return names
}

var matchMethods = map[string]builtinFunc{
	"group":     matchGroup,
	"groups":    matchGroups,
	"groupdict": matchGroupDict,
	"start":     matchStart,
	"end":       matchEnd,
	"span":      matchSpan,
}

// resolveGroup maps a group argument, either an index or a name, to the
// group's position. A missing argument selects the whole match.
func (m *matchValue) resolveGroup(b *starlark.Builtin, v starlark.Value) (int, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case starlark.Int:
		i, err := starlark.AsInt32(v)
		if err != nil {
			return 0, err
		}
		if i < 0 || i > m.m.NumGroups() {
			return 0, fmt.Errorf("%s: no such group: %d", b.Name(), i)
		}

		return i, nil
	case starlark.String:
		i := m.m.Pattern().GroupIndex(string(v))
		if i < 0 {
			return 0, fmt.Errorf("%s: unknown group name %q", b.Name(), string(v))
		}

		return i, nil
	default:
		return 0, fmt.Errorf("%s: for parameter group: got %s, want int or string", b.Name(), v.Type())
	}
}

// matchGroup implements match.group([group]): the text of the group, or
// None if the group did not take part in the match.
func matchGroup(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*matchValue)

	var group starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "group?", &group); err != nil {
		return nil, err
	}

	i, err := recv.resolveGroup(b, group)
	if err != nil {
		return nil, err
	}

	text, ok := recv.m.Group(i)
	if !ok {
		return starlark.None, nil
	}

	return starlark.String(text), nil
}

// matchGroups implements match.groups(default=None).
func matchGroups(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*matchValue)

	var def starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "default?", &def); err != nil {
		return nil, err
	}
	if def == nil {
		def = starlark.None
	}

	n := recv.m.NumGroups()

	elems := make([]starlark.Value, n)
	for i := 1; i <= n; i++ {
		if text, ok := recv.m.Group(i); ok {
			elems[i-1] = starlark.String(text)
		} else {
			elems[i-1] = def
		}
	}

	return starlark.Tuple(elems), nil
}

// matchGroupDict implements match.groupdict(default=None) over the named
// groups.
func matchGroupDict(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*matchValue)

	var def starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "default?", &def); err != nil {
		return nil, err
	}
	if def == nil {
		def = starlark.None
	}

	d := starlark.NewDict(recv.m.NumGroups())

	for _, name := range recv.m.Pattern().GroupNames() {
		if name == "" {
			continue
		}

		var v starlark.Value = def
		if text, ok := recv.m.GroupByName(name); ok {
			v = starlark.String(text)
		}

		if err := d.SetKey(starlark.String(name), v); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func matchStart(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	span, err := spanOf(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	return starlark.MakeInt(span.Start), nil
}

func matchEnd(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	span, err := spanOf(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	return starlark.MakeInt(span.End), nil
}

func matchSpan(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	span, err := spanOf(b, args, kwargs)
	if err != nil {
		return nil, err
	}

	return starlark.Tuple{starlark.MakeInt(span.Start), starlark.MakeInt(span.End)}, nil
}

// spanOf resolves the optional group argument of start, end and span.
// Groups that did not take part in the match yield (-1, -1).
func spanOf(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (engine.Span, error) {
	recv := b.Receiver().(*matchValue)

	var group starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "group?", &group); err != nil {
		return engine.Span{}, err
	}

	i, err := recv.resolveGroup(b, group)
	if err != nil {
		return engine.Span{}, err
	}

	return recv.m.Span(i), nil
}
