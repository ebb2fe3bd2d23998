package starlarkrex

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"

	"github.com/magnetde/rex"
)

// finderValue runs a pattern against inputs. The pattern is compiled on
// first use through the module's pattern cache; anchored matches go through
// the process-wide match cache.
type finderValue struct {
	m *Module
	p *rex.Pattern
	f *rex.Finder
}

var (
	_ starlark.Value    = (*finderValue)(nil)
	_ starlark.HasAttrs = (*finderValue)(nil)
)

func (f *finderValue) String() string        { return fmt.Sprintf("finder(%s)", f.p.String()) }
func (f *finderValue) Type() string          { return "finder" }
func (f *finderValue) Freeze()               {}
func (f *finderValue) Truth() starlark.Bool  { return true }
func (f *finderValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", f.Type()) }

func (f *finderValue) Attr(name string) (starlark.Value, error) {
	if name == "pattern" {
		return &patternValue{m: f.m, p: f.p}, nil
	}

	return builtinAttr(f, name, finderMethods)
}

func (f *finderValue) AttrNames() []string {
	names := append(builtinAttrNames(finderMethods), "pattern")
	sort.Strings(names)

	return names
}

var finderMethods = map[string]builtinFunc{
	"match":   finderMatch,
	"find":    finderFind,
	"findall": finderFindAll,
	"split":   finderSplit,
}

func (f *finderValue) finder() (*rex.Finder, error) {
	if f.f == nil {
		cp, err := f.m.compile(f.p)
		if err != nil {
			return nil, err
		}

		f.f = rex.NewCompiledFinder(cp)
	}

	return f.f, nil
}

// finderMatch implements finder.match(text): a match value when the pattern
// matches at the start of the text, otherwise None.
func finderMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*finderValue)

	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}

	fd, err := recv.finder()
	if err != nil {
		return nil, err
	}

	m, err := fd.Match(text)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return starlark.None, nil
	}

	return &matchValue{m: m}, nil
}

// finderFind implements finder.find(text): the text matched at the start of
// the input, or the empty string.
func finderFind(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*finderValue)

	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}

	fd, err := recv.finder()
	if err != nil {
		return nil, err
	}

	found, err := fd.Find(text)
	if err != nil {
		return nil, err
	}

	return starlark.String(found), nil
}

// finderFindAll implements finder.findall(text, count=0). Results follow
// the usual findall shaping: full matches without groups, the group text
// with a single group, and tuples with several groups; absent groups yield
// empty strings.
func finderFindAll(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*finderValue)

	var (
		text  string
		count int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text, "count?", &count); err != nil {
		return nil, err
	}

	fd, err := recv.finder()
	if err != nil {
		return nil, err
	}

	ms, err := fd.Matches(text, count)
	if err != nil {
		return nil, err
	}

	cp, err := fd.Compiled()
	if err != nil {
		return nil, err
	}
	n := cp.NumGroups()

	elems := make([]starlark.Value, len(ms))
	for i, m := range ms {
		switch n {
		case 0:
			elems[i] = starlark.String(m.Text())
		case 1:
			single, _ := m.Group(1)
			elems[i] = starlark.String(single)
		default:
			groups := make([]starlark.Value, n)
			for g := 1; g <= n; g++ {
				part, _ := m.Group(g)
				groups[g-1] = starlark.String(part)
			}

			elems[i] = starlark.Tuple(groups)
		}
	}

	return starlark.NewList(elems), nil
}

// finderSplit implements finder.split(text, maxsplit=0).
func finderSplit(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	recv := b.Receiver().(*finderValue)

	var (
		text     string
		maxSplit int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text, "maxsplit?", &maxSplit); err != nil {
		return nil, err
	}

	fd, err := recv.finder()
	if err != nil {
		return nil, err
	}

	parts, err := fd.Split(text, maxSplit)
	if err != nil {
		return nil, err
	}

	elems := make([]starlark.Value, len(parts))
	for i, part := range parts {
		elems[i] = starlark.String(part)
	}

	return starlark.NewList(elems), nil
}
