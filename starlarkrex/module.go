// Package starlarkrex exposes the pattern builder to Starlark scripts.
// The module value returned by NewModule provides builder entry points,
// finders and substitutions, script-defined extensions and a bounded cache
// of compiled patterns.
package starlarkrex

import (
	"fmt"
	"sort"
	"sync"

	"go.starlark.net/starlark"

	"github.com/magnetde/rex"
	"github.com/magnetde/rex/engine"
)

// DefaultPatternCacheSize bounds the module's compiled pattern cache.
const DefaultPatternCacheSize = 64

// patternKey identifies a compiled pattern in the module cache.
type patternKey struct {
	expr  string
	flags int
}

// Module is the Starlark module value. A single module is safe for use from
// concurrently running threads.
type Module struct {
	patterns *rex.Cache[patternKey, *engine.Pattern]

	mu         sync.Mutex
	extensions map[string]starlark.Callable
}

var (
	_ starlark.Value    = (*Module)(nil)
	_ starlark.HasAttrs = (*Module)(nil)
)

// NewModule creates a module with a compiled pattern cache of the given
// size. A non-positive size falls back to DefaultPatternCacheSize.
func NewModule(cacheSize int) *Module {
	if cacheSize <= 0 {
		cacheSize = DefaultPatternCacheSize
	}

	return &Module{
		patterns:   rex.NewCache[patternKey, *engine.Pattern](cacheSize),
		extensions: make(map[string]starlark.Callable),
	}
}

func (m *Module) String() string        { return "<module rex>" }
func (m *Module) Type() string          { return "module" }
func (m *Module) Freeze()               {}
func (m *Module) Truth() starlark.Bool  { return true }
func (m *Module) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", m.Type()) }

type builtinFunc = func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error)

// moduleMembers maps attribute names to either a builtin implementation or
// a constant value.
type moduleMember struct {
	fn    func(*Module) builtinFunc
	value starlark.Value
}

var moduleMembers = map[string]moduleMember{
	"pattern":        {fn: func(m *Module) builtinFunc { return m.patternFn }},
	"fragment":       {fn: func(m *Module) builtinFunc { return m.fragmentFn }},
	"escape":         {fn: func(m *Module) builtinFunc { return m.escapeFn }},
	"join":           {fn: func(m *Module) builtinFunc { return m.joinFn }},
	"finder":         {fn: func(m *Module) builtinFunc { return m.finderFn }},
	"substitution":   {fn: func(m *Module) builtinFunc { return m.substitutionFn }},
	"register":       {fn: func(m *Module) builtinFunc { return m.registerFn }},
	"unregister_all": {fn: func(m *Module) builtinFunc { return m.unregisterAllFn }},
	"purge":          {fn: func(m *Module) builtinFunc { return m.purgeFn }},
	"cache_stats":    {fn: func(m *Module) builtinFunc { return m.cacheStatsFn }},

	"NOFLAG":     {value: starlark.MakeInt(0)},
	"I":          {value: starlark.MakeInt(engine.FlagIgnoreCase)},
	"IGNORECASE": {value: starlark.MakeInt(engine.FlagIgnoreCase)},
	"M":          {value: starlark.MakeInt(engine.FlagMultiline)},
	"MULTILINE":  {value: starlark.MakeInt(engine.FlagMultiline)},
	"S":          {value: starlark.MakeInt(engine.FlagDotAll)},
	"DOTALL":     {value: starlark.MakeInt(engine.FlagDotAll)},
	"A":          {value: starlark.MakeInt(engine.FlagASCII)},
	"ASCII":      {value: starlark.MakeInt(engine.FlagASCII)},

	"ANY_NUMBER":      {value: fragmentValue(rex.AnyDigit)},
	"ANY_ASCII_LOWER": {value: fragmentValue(rex.AnyASCIILower)},
	"ANY_ASCII_UPPER": {value: fragmentValue(rex.AnyASCIIUpper)},
	"ANY_WHITESPACE":  {value: fragmentValue(rex.AnySpace)},
	"NO_WHITESPACE":   {value: fragmentValue(rex.NoSpace)},
}

// Attr returns the module member with the given name.
func (m *Module) Attr(name string) (starlark.Value, error) {
	member, ok := moduleMembers[name]
	if !ok {
		return nil, nil
	}

	if member.fn != nil {
		return starlark.NewBuiltin("rex."+name, member.fn(m)), nil
	}

	return member.value, nil
}

// AttrNames returns all module member names, sorted.
func (m *Module) AttrNames() []string {
	names := make([]string, 0, len(moduleMembers))
	for name := range moduleMembers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// compile returns the compiled form of the pattern, consulting the module
// cache first.
func (m *Module) compile(p *rex.Pattern) (*engine.Pattern, error) {
	key := patternKey{expr: p.Build(), flags: p.Flags().Mask()}

	if cp, ok := m.patterns.Get(key); ok {
		return cp, nil
	}

	cp, err := p.Compile()
	if err != nil {
		return nil, err
	}

	m.patterns.Add(key, cp)

	return cp, nil
}

// lookupExtension returns the registered extension callable.
func (m *Module) lookupExtension(name string) (starlark.Callable, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn, ok := m.extensions[name]

	return fn, ok
}

// patternFn implements rex.pattern([text]). Without arguments it returns an
// empty pattern; a text argument seeds the pattern with the escaped text.
func (m *Module) patternFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text?", &text); err != nil {
		return nil, err
	}

	p := rex.New()
	if text != "" {
		p = p.Literal(text)
	}

	return &patternValue{m: m, p: p}, nil
}

// fragmentFn implements rex.fragment(text): raw class syntax that is passed
// into classes verbatim instead of being escaped.
func (m *Module) fragmentFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}

	return fragmentValue(text), nil
}

// escapeFn implements rex.escape(text).
func (m *Module) escapeFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}

	return starlark.String(rex.Escape(text)), nil
}

// joinFn implements rex.join(delimiter, patterns).
func (m *Module) joinFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		delimiter starlark.Value
		patterns  starlark.Iterable
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "delimiter", &delimiter, "patterns", &patterns); err != nil {
		return nil, err
	}

	delim, err := asPattern(delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: for parameter delimiter: %w", b.Name(), err)
	}

	var subpatterns []*rex.Pattern

	iter := patterns.Iterate()
	defer iter.Done()

	var v starlark.Value
	for iter.Next(&v) {
		p, err := asPattern(v)
		if err != nil {
			return nil, fmt.Errorf("%s: for element %d: %w", b.Name(), len(subpatterns), err)
		}

		subpatterns = append(subpatterns, p)
	}

	return &patternValue{m: m, p: rex.Join(delim, subpatterns)}, nil
}

// finderFn implements rex.finder(pattern).
func (m *Module) finderFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern); err != nil {
		return nil, err
	}

	p, err := asPattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: for parameter pattern: %w", b.Name(), err)
	}

	return &finderValue{m: m, p: p}, nil
}

// substitutionFn implements rex.substitution(pattern).
func (m *Module) substitutionFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern); err != nil {
		return nil, err
	}

	p, err := asPattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: for parameter pattern: %w", b.Name(), err)
	}

	return &substitutionValue{m: m, s: rex.NewSubstitution(p)}, nil
}

// registerFn implements rex.register(name, fn). The callable is invoked as
// fn(base, *args) and must return a pattern distinct from base.
func (m *Module) registerFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		name string
		fn   starlark.Callable
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "fn", &fn); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.extensions[name] = fn

	return starlark.None, nil
}

// unregisterAllFn implements rex.unregister_all().
func (m *Module) unregisterAllFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.extensions)

	return starlark.None, nil
}

// purgeFn implements rex.purge(): it drops all compiled patterns of this
// module and all match results of the process-wide match cache.
func (m *Module) purgeFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	m.patterns.Clear()
	rex.ClearMatchCache()

	return starlark.None, nil
}

// cacheStatsFn implements rex.cache_stats(), returning a dict with the
// hits, misses and evictions of the compiled pattern cache.
func (m *Module) cacheStatsFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}

	stats := m.patterns.Stats()

	d := starlark.NewDict(3)
	_ = d.SetKey(starlark.String("hits"), starlark.MakeUint64(stats.Hits))
	_ = d.SetKey(starlark.String("misses"), starlark.MakeUint64(stats.Misses))
	_ = d.SetKey(starlark.String("evictions"), starlark.MakeUint64(stats.Evictions))

	return d, nil
}

// asPattern coerces a Starlark value to a pattern: pattern values are taken
// as they are, strings become literal patterns.
func asPattern(v starlark.Value) (*rex.Pattern, error) {
	switch v := v.(type) {
	case *patternValue:
		return v.p, nil
	case starlark.String:
		return rex.New().Literal(string(v)), nil
	default:
		return nil, fmt.Errorf("got %s, want pattern or string", v.Type())
	}
}

// asMember converts a Starlark value to a class or alternation member.
func asMember(v starlark.Value) (any, error) {
	switch v := v.(type) {
	case starlark.String:
		return string(v), nil
	case fragmentValue:
		return rex.Fragment(v), nil
	case *patternValue:
		return v.p, nil
	default:
		return nil, fmt.Errorf("got %s, want string, fragment or pattern", v.Type())
	}
}

// builtinAttr binds a method from the given table to the receiver.
func builtinAttr(recv starlark.Value, name string, methods map[string]builtinFunc) (starlark.Value, error) {
	fn, ok := methods[name]
	if !ok {
		return nil, nil
	}

	return starlark.NewBuiltin(name, fn).BindReceiver(recv), nil
}

// builtinAttrNames returns the sorted method names of a method table.
func builtinAttrNames(methods map[string]builtinFunc) []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
